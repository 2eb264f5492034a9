package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/chalktalk/studio/internal/domain/ports"
)

// builtinThemes ship with the binary so exports work with no themes directory
// configured. The variables follow the reveal.js theme contract.
var builtinThemes = map[string]string{
	"white": `:root {
  --r-background-color: #fff;
  --r-main-color: #191919;
  --r-heading-color: #191919;
  --r-link-color: #2a76dd;
}
.reveal { font-family: system-ui, sans-serif; color: var(--r-main-color); }
.reveal .slides { background: var(--r-background-color); }
.reveal h1, .reveal h2, .reveal h3 { color: var(--r-heading-color); }
.reveal a { color: var(--r-link-color); }`,

	"black": `:root {
  --r-background-color: #191919;
  --r-main-color: #fff;
  --r-heading-color: #fff;
  --r-link-color: #42affa;
}
.reveal { font-family: system-ui, sans-serif; color: var(--r-main-color); }
.reveal .slides { background: var(--r-background-color); }
.reveal h1, .reveal h2, .reveal h3 { color: var(--r-heading-color); }
.reveal a { color: var(--r-link-color); }`,
}

var themeNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Provider resolves export themes: CSS files in a configured directory first,
// built-ins second. Loaded files are cached for the process lifetime.
type Provider struct {
	dir string

	mu    sync.RWMutex
	cache map[string]string
}

// NewProvider creates a theme provider. dir may be empty, leaving only the
// built-in themes.
func NewProvider(dir string) *Provider {
	return &Provider{
		dir:   dir,
		cache: make(map[string]string),
	}
}

// CSS returns the named theme's stylesheet.
func (p *Provider) CSS(name string) (string, error) {
	if !themeNameRe.MatchString(name) {
		return "", fmt.Errorf("invalid theme name %q", name)
	}

	p.mu.RLock()
	css, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return css, nil
	}

	if p.dir != "" {
		data, err := os.ReadFile(filepath.Join(p.dir, name+".css")) // #nosec G304 - name is validated
		if err == nil {
			p.mu.Lock()
			p.cache[name] = string(data)
			p.mu.Unlock()
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading theme %s: %w", name, err)
		}
	}

	if css, ok := builtinThemes[name]; ok {
		return css, nil
	}
	return "", fmt.Errorf("theme %q not found", name)
}

// Names lists the available theme names, directory themes included.
func (p *Provider) Names() []string {
	seen := make(map[string]struct{})
	for name := range builtinThemes {
		seen[name] = struct{}{}
	}

	if p.dir != "" {
		if entries, err := os.ReadDir(p.dir); err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				name := entry.Name()
				if filepath.Ext(name) != ".css" {
					continue
				}
				base := name[:len(name)-len(".css")]
				if themeNameRe.MatchString(base) {
					seen[base] = struct{}{}
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ensure Provider implements ports.ThemeProvider
var _ ports.ThemeProvider = (*Provider)(nil)
