package narration

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// HTMLFragmentExtractor finds narration text in slide HTML. Elements carrying
// a data-tts attribute each yield one fragment; an optional
// data-fragment-index orders them, with unindexed elements sorting after
// indexed ones in document order. A slide with no narration attributes but
// visible text yields a single fragment of the flattened text.
type HTMLFragmentExtractor struct{}

// NewHTMLFragmentExtractor creates a fragment extractor.
func NewHTMLFragmentExtractor() *HTMLFragmentExtractor {
	return &HTMLFragmentExtractor{}
}

type ttsEntry struct {
	text  string
	order int
	index int
}

// Extract returns the slide's fragments in playback order.
func (e *HTMLFragmentExtractor) Extract(slideHTML string, slideIndex int) ([]entities.Fragment, error) {
	doc, err := html.Parse(strings.NewReader(slideHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing slide %d HTML: %w", slideIndex, err)
	}

	var entries []ttsEntry
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		text, ok := attr(n, entities.NarrationAttr)
		if !ok || text == "" {
			return
		}
		index := math.MaxInt32
		if raw, ok := attr(n, "data-fragment-index"); ok {
			if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				index = parsed
			}
		}
		entries = append(entries, ttsEntry{text: text, order: len(entries), index: index})
	})

	if len(entries) == 0 {
		text := flattenText(doc)
		if text == "" {
			return nil, nil
		}
		return []entities.Fragment{{SlideIndex: slideIndex, FragmentIndex: 0, Text: text}}, nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})

	fragments := make([]entities.Fragment, 0, len(entries))
	for i, entry := range entries {
		fragments = append(fragments, entities.Fragment{
			SlideIndex:    slideIndex,
			FragmentIndex: i,
			Text:          entry.text,
		})
	}
	return fragments, nil
}

// flattenText collapses a parsed document's visible text into one
// whitespace-normalized string.
func flattenText(doc *html.Node) string {
	var b strings.Builder
	walk(doc, func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// walk visits every node in document order. Script and style subtrees are
// skipped.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// attr returns the value of the named attribute.
func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// Ensure HTMLFragmentExtractor implements ports.FragmentExtractor
var _ ports.FragmentExtractor = (*HTMLFragmentExtractor)(nil)
