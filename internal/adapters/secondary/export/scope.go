package export

import (
	"regexp"
	"strings"
)

var (
	htmlSelRe  = regexp.MustCompile(`(?i)^html\b\s*`)
	bodySelRe  = regexp.MustCompile(`(?i)^body\b\s*`)
	rootSelRe  = regexp.MustCompile(`(?i)^(html|body)\b`)
	mediaRuleRe = regexp.MustCompile(`(?i)@media\b`)
)

// ScopeCSS prefixes every selector in cssText with scopeSelector so the rules
// apply only inside one slide's subtree. Bare html/body selectors are remapped
// onto the scope root itself. At-rules pass through untouched, except @media,
// whose inner rules are scoped recursively. The splitting is approximate by
// design: the input CSS is editor-generated and simple. Any failure returns
// the input unscoped; this runs per slide inside export paths that must
// degrade gracefully.
func ScopeCSS(cssText, scopeSelector string) (out string) {
	out = cssText
	defer func() {
		if recover() != nil {
			out = cssText
		}
	}()
	out = scopeBlock(cssText, scopeSelector)
	return out
}

// scopeBlock scopes a run of CSS, lifting out balanced @media blocks so their
// bodies can be scoped recursively without the brace-naive splitter tearing
// them apart.
func scopeBlock(css, scope string) string {
	var b strings.Builder
	rest := css
	for {
		loc := mediaRuleRe.FindStringIndex(rest)
		if loc == nil {
			b.WriteString(scopeSimpleRules(rest, scope))
			break
		}

		b.WriteString(scopeSimpleRules(rest[:loc[0]], scope))

		open := strings.Index(rest[loc[0]:], "{")
		if open == -1 {
			b.WriteString(rest[loc[0]:])
			break
		}
		start := loc[0] + open

		end := matchingBrace(rest, start)
		if end == -1 {
			b.WriteString(rest[loc[0]:])
			break
		}

		prelude := strings.TrimSpace(rest[loc[0]:start])
		inner := rest[start+1 : end]
		b.WriteString(prelude)
		b.WriteString("{")
		b.WriteString(scopeBlock(inner, scope))
		b.WriteString("}\n")

		rest = rest[end+1:]
	}
	return b.String()
}

// matchingBrace returns the index of the brace closing the one at open, or -1.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// scopeSimpleRules scopes flat rules by splitting on closing braces. At-rules
// other than @media (handled by the caller) pass through unscoped.
func scopeSimpleRules(css, scope string) string {
	chunks := strings.Split(css, "}")
	var rules []string
	for _, chunk := range chunks {
		rule := strings.TrimSpace(chunk)
		if rule == "" {
			continue
		}

		idx := strings.Index(rule, "{")
		if idx == -1 {
			rules = append(rules, rule+"}")
			continue
		}

		sel := strings.TrimSpace(rule[:idx])
		body := rule[idx+1:]

		if strings.HasPrefix(sel, "@") {
			rules = append(rules, sel+"{"+body+"}")
			continue
		}

		rules = append(rules, scopeSelectorList(sel, scope)+"{"+body+"}")
	}
	return strings.Join(rules, "\n")
}

// scopeSelectorList prefixes each comma-separated selector with the scope.
func scopeSelectorList(sel, scope string) string {
	parts := strings.Split(sel, ",")
	scoped := make([]string, 0, len(parts))
	for _, part := range parts {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		if rootSelRe.MatchString(s) {
			// html/body map onto the scope root itself, no joining space.
			s = htmlSelRe.ReplaceAllString(s, "")
			s = bodySelRe.ReplaceAllString(s, "")
			if s == "" {
				scoped = append(scoped, scope)
			} else {
				scoped = append(scoped, scope+" "+s)
			}
			continue
		}
		scoped = append(scoped, scope+" "+s)
	}
	return strings.Join(scoped, ", ")
}
