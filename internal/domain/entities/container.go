package entities

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
)

// ContainerMarker is the attribute that identifies the slide container
// envelope wrapping a page's authored HTML.
const ContainerMarker = "data-slide-container"

// The container codec is intentionally regex-based: the CSS it touches is
// machine-generated by the editor and known to be simple. Malformed input is
// passed through untouched, never rejected.
var (
	containerTagRe = regexp.MustCompile(`(?is)<div[^>]*data-slide-container[^>]*>`)
	styleBlockRe   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	formatIDAttrRe = regexp.MustCompile(`(?i)data-slide-format-id="([^"]*)"`)
	widthDeclRe    = regexp.MustCompile(`(?i)width\s*:\s*\d+px`)
	heightDeclRe   = regexp.MustCompile(`(?i)(min-)?height\s*:\s*\d+px`)
)

// WrapSlideContent wraps authored HTML in the slide container envelope: a
// dimensioned container div followed by a style block sizing the slide root
// (body equivalent) to the deck's format. The content is treated as opaque
// text.
func WrapSlideContent(content string, format SlideFormat, overrides map[string]string) string {
	containerStyles := map[string]string{
		"position":         "absolute",
		"top":              "0",
		"left":             "0",
		"width":            fmt.Sprintf("%dpx", format.Width),
		"height":           fmt.Sprintf("%dpx", format.Height),
		"background-color": "white",
		"overflow":         "visible",
	}
	for k, v := range overrides {
		containerStyles[k] = v
	}

	bodyStyles := map[string]string{
		"margin":     "0",
		"padding":    "0",
		"position":   "relative",
		"width":      fmt.Sprintf("%dpx", format.Width),
		"min-height": fmt.Sprintf("%dpx", format.Height),
		"background": "#f3f4f6",
		"overflow":   "hidden",
	}

	return fmt.Sprintf(
		`<div data-slide-container="true" data-slide-format-id=%q draggable="false" style=%q>%s</div>`+
			"\n<style>body { %s }</style>",
		format.ID, styleString(containerStyles), content, styleString(bodyStyles),
	)
}

// UnwrapSlideContent returns the inner HTML of the first container-marked
// element. Unmarked content is treated as already unwrapped and returned as
// is; exactly one layer is stripped.
func UnwrapSlideContent(html string) string {
	_, inner, ok := SplitSlideContainer(html)
	if !ok {
		return html
	}
	return inner
}

// SplitSlideContainer locates the first container envelope and returns its
// open tag and inner HTML. The scan balances nested divs, so authored content
// containing div elements survives intact. ok is false when no complete
// envelope is present.
func SplitSlideContainer(html string) (openTag, inner string, ok bool) {
	loc := containerTagRe.FindStringIndex(html)
	if loc == nil {
		return "", "", false
	}

	lower := strings.ToLower(html)
	depth := 1
	for i := loc[1]; i < len(lower); {
		next := strings.IndexByte(lower[i:], '<')
		if next < 0 {
			break
		}
		i += next
		switch {
		case strings.HasPrefix(lower[i:], "</div>"):
			depth--
			if depth == 0 {
				return html[loc[0]:loc[1]], html[loc[1]:i], true
			}
			i += len("</div>")
		case strings.HasPrefix(lower[i:], "<div") && isDivTagBoundary(lower, i+len("<div")):
			depth++
			i += len("<div")
		default:
			i++
		}
	}
	// Unbalanced markup: no closing tag for the envelope.
	return "", "", false
}

// isDivTagBoundary distinguishes <div ...> from tags that merely start with
// the same letters.
func isDivTagBoundary(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	switch s[i] {
	case '>', ' ', '\t', '\n', '\r', '/':
		return true
	}
	return false
}

// IsCompleteContainer reports whether the HTML already carries the container
// envelope or an embedded style block. Write paths use this to decide between
// wrapping fresh content and normalizing existing dimensions.
func IsCompleteContainer(html string) bool {
	if strings.Contains(strings.ToLower(html), ContainerMarker) {
		return true
	}
	return styleBlockRe.MatchString(html)
}

// EnforceContainerDimensions rewrites the container's own width/height pixel
// declarations to match the deck format, leaving nested element dimensions
// untouched. Best effort: on any failure the input is returned unchanged.
func EnforceContainerDimensions(html string, format SlideFormat) (out string) {
	out = html
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN] [container] dimension enforcement failed: %v", r)
			out = html
		}
	}()

	loc := containerTagRe.FindStringIndex(html)
	if loc == nil {
		return html
	}

	tag := html[loc[0]:loc[1]]
	fixed := widthDeclRe.ReplaceAllString(tag, fmt.Sprintf("width: %dpx", format.Width))
	fixed = heightDeclRe.ReplaceAllStringFunc(fixed, func(decl string) string {
		if strings.HasPrefix(strings.ToLower(decl), "min-") {
			return fmt.Sprintf("min-height: %dpx", format.Height)
		}
		return fmt.Sprintf("height: %dpx", format.Height)
	})

	out = html[:loc[0]] + fixed + html[loc[1]:]

	// The trailing style block sizes the slide root; keep it in step.
	out = styleBlockRe.ReplaceAllStringFunc(out, func(block string) string {
		if !strings.Contains(block, "body") {
			return block
		}
		b := widthDeclRe.ReplaceAllString(block, fmt.Sprintf("width: %dpx", format.Width))
		return heightDeclRe.ReplaceAllStringFunc(b, func(decl string) string {
			if strings.HasPrefix(strings.ToLower(decl), "min-") {
				return fmt.Sprintf("min-height: %dpx", format.Height)
			}
			return fmt.Sprintf("height: %dpx", format.Height)
		})
	})

	return out
}

// ContainerFormatID reads the slide format ID stamped on a container
// envelope, if any.
func ContainerFormatID(html string) (string, bool) {
	m := formatIDAttrRe.FindStringSubmatch(html)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// ExtractStyleBlocks splits a page's HTML into markup and CSS: the returned
// HTML has every <style> block removed, and the blocks' inner CSS comes back
// in document order.
func ExtractStyleBlocks(html string) (string, []string) {
	var styles []string
	cleaned := styleBlockRe.ReplaceAllStringFunc(html, func(block string) string {
		inner := block
		if open := strings.Index(inner, ">"); open >= 0 {
			inner = inner[open+1:]
		}
		if close := strings.LastIndex(strings.ToLower(inner), "</style>"); close >= 0 {
			inner = inner[:close]
		}
		if css := strings.TrimSpace(inner); css != "" {
			styles = append(styles, css)
		}
		return ""
	})
	return cleaned, styles
}

// styleString renders a declaration map as CSS text in deterministic order.
func styleString(styles map[string]string) string {
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+styles[k])
	}
	return strings.Join(parts, ";")
}
