package export

import (
	"regexp"
	"sort"
	"strings"

	"github.com/chalktalk/studio/internal/domain/entities"
)

// RevealSlide is one slide prepared for presentation export: inner HTML with
// the container envelope stripped, the page's CSS split out, and the
// container's inline style normalized for centering inside a reveal section.
type RevealSlide struct {
	Name           string
	HTML           string
	CSS            []string
	ContainerStyle string
}

var styleAttrRe = regexp.MustCompile(`(?i)style\s*=\s*"([^"]*)"`)
var globalSelectorRe = regexp.MustCompile(`(?i)^\s*(body|html)\s*[,{]`)

// ExtractRevealSlides converts a document model into export-ready slides, one
// per page in presentation order. A page whose content fails to parse yields
// an empty slide rather than aborting the export.
func ExtractRevealSlides(doc *entities.DocumentModel) []RevealSlide {
	if doc == nil {
		return nil
	}

	slides := make([]RevealSlide, 0, doc.PageCount())
	for i := range doc.Pages {
		page := &doc.Pages[i]
		raw := page.Component.ToHTML()

		cleaned, styles := entities.ExtractStyleBlocks(raw)
		inner, containerStyle := extractSlideContainer(cleaned)

		slides = append(slides, RevealSlide{
			Name:           page.Name,
			HTML:           inner,
			CSS:            filterGlobalStyles(styles),
			ContainerStyle: normalizeContainerStyle(containerStyle),
		})
	}
	return slides
}

// extractSlideContainer returns the container's inner HTML and its inline
// style attribute. Content without a container comes back whole.
func extractSlideContainer(html string) (inner, style string) {
	openTag, body, ok := entities.SplitSlideContainer(html)
	if !ok {
		return html, ""
	}
	if sm := styleAttrRe.FindStringSubmatch(openTag); sm != nil {
		style = sm[1]
	}
	return body, style
}

// normalizeContainerStyle rewrites the container's inline style for export:
// relative positioning so absolutely placed children stay inside, top/left
// dropped so reveal can center the slide, and auto horizontal margins.
func normalizeContainerStyle(style string) string {
	if style == "" {
		return ""
	}

	decls := make(map[string]string)
	for _, pair := range strings.Split(style, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.Index(pair, ":")
		if idx == -1 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(pair[:idx]))
		decls[key] = strings.TrimSpace(pair[idx+1:])
	}

	decls["position"] = "relative"
	delete(decls, "top")
	delete(decls, "left")
	decls["margin"] = "0 auto"

	keys := make([]string, 0, len(decls))
	for k := range decls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+decls[k])
	}
	return strings.Join(parts, ";")
}

// filterGlobalStyles drops rule blocks whose selector is a bare body or html
// from each extracted sheet. Those rules come from the container envelope and
// would restyle the whole export document; scoped page rules pass through.
// Sheets left with nothing are dropped.
func filterGlobalStyles(styles []string) []string {
	out := make([]string, 0, len(styles))
	for _, sheet := range styles {
		var kept []string
		for _, block := range strings.Split(sheet, "}") {
			if strings.TrimSpace(block) == "" {
				continue
			}
			if globalSelectorRe.MatchString(block) {
				continue
			}
			kept = append(kept, strings.TrimSpace(block)+"}")
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, strings.Join(kept, "\n"))
	}
	return out
}
