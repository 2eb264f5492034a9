package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// Deck is a persisted presentation, keyed by an externally generated project
// ID. Project holds the serialized DocumentModel and must round-trip through
// JSON exactly; callers that fail to parse it keep the raw record instead of
// failing (see Document).
type Deck struct {
	// ProjectID uniquely identifies the deck
	ProjectID string `json:"projectId"`

	// Title is the optional display title
	Title string `json:"title,omitempty"`

	// OwnerID identifies the owning principal
	OwnerID string `json:"ownerId"`

	// Project is the JSON-serialized DocumentModel
	Project string `json:"project"`

	// CreatedAt is when the deck was first saved
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the deck was last saved
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate ensures the deck has the required identifying fields.
func (d *Deck) Validate() error {
	if strings.TrimSpace(d.ProjectID) == "" {
		return errors.New("deck project ID is required")
	}
	if strings.TrimSpace(d.OwnerID) == "" {
		return errors.New("deck owner ID is required")
	}
	return nil
}

// Document parses the serialized document model. A parse failure is returned
// to the caller, which is expected to degrade to the raw record rather than
// abort; the deck itself is never mutated here.
func (d *Deck) Document() (*DocumentModel, error) {
	if strings.TrimSpace(d.Project) == "" {
		return &DocumentModel{}, nil
	}
	var doc DocumentModel
	if err := json.Unmarshal([]byte(d.Project), &doc); err != nil {
		return nil, fmt.Errorf("parsing deck %s document: %w", d.ProjectID, err)
	}
	return &doc, nil
}

// SetDocument serializes the document model back onto the deck.
func (d *Deck) SetDocument(doc *DocumentModel) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializing deck %s document: %w", d.ProjectID, err)
	}
	d.Project = string(data)
	return nil
}

// DocumentModel is the canonical in-memory form of a deck: ordered pages in
// presentation order. Page index is the addressing scheme used by every tool
// operation; indices are positions, not stable IDs.
type DocumentModel struct {
	Pages []Page `json:"pages"`
}

// PageByIndex returns the page at the given 0-based index.
func (m *DocumentModel) PageByIndex(index int) (*Page, error) {
	if index < 0 || index >= len(m.Pages) {
		return nil, &SlideNotFoundError{Index: index}
	}
	return &m.Pages[index], nil
}

// PageCount returns the number of pages in the document.
func (m *DocumentModel) PageCount() int {
	return len(m.Pages)
}

// InsertPage inserts a page at the given index, or appends when index is nil
// or out of range. It returns the index the page landed at.
func (m *DocumentModel) InsertPage(page Page, at *int) int {
	if at == nil || *at < 0 || *at >= len(m.Pages) {
		m.Pages = append(m.Pages, page)
		return len(m.Pages) - 1
	}
	idx := *at
	m.Pages = append(m.Pages[:idx], append([]Page{page}, m.Pages[idx:]...)...)
	return idx
}

// RemovePage removes the page at the given index.
func (m *DocumentModel) RemovePage(index int) error {
	if index < 0 || index >= len(m.Pages) {
		return &SlideNotFoundError{Index: index}
	}
	m.Pages = append(m.Pages[:index], m.Pages[index+1:]...)
	return nil
}

// Page is one ordered element of a deck. Component is a tagged variant:
// canonical raw HTML, or the legacy structured tree maintained for content
// authored in the older structured-editing mode.
type Page struct {
	Name      string      `json:"name,omitempty"`
	Component PageContent `json:"component"`
}

// PageContent holds exactly one of an HTML string (canonical) or a legacy
// component tree. Downstream consumers depend only on ToHTML.
type PageContent struct {
	HTML string
	Tree *LegacyComponent
}

// NewHTMLContent returns page content backed by a raw HTML string.
func NewHTMLContent(html string) PageContent {
	return PageContent{HTML: html}
}

// IsLegacy reports whether the content is the legacy structured variant.
func (c PageContent) IsLegacy() bool {
	return c.Tree != nil
}

// ToHTML flattens the content to raw HTML. Legacy trees are serialized with
// a minimal recursive renderer; a malformed tree yields empty HTML for the
// page rather than an error, so one bad page cannot abort a full export.
func (c PageContent) ToHTML() string {
	if c.Tree == nil {
		return c.HTML
	}
	return c.Tree.render(0)
}

// UnmarshalJSON accepts either a bare string or a legacy tree object.
func (c *PageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.HTML = s
		c.Tree = nil
		return nil
	}
	var tree LegacyComponent
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("page component is neither string nor component tree: %w", err)
	}
	c.HTML = ""
	c.Tree = &tree
	return nil
}

// MarshalJSON writes the variant back in its original shape.
func (c PageContent) MarshalJSON() ([]byte, error) {
	if c.Tree != nil {
		return json.Marshal(c.Tree)
	}
	return json.Marshal(c.HTML)
}

// maxLegacyDepth bounds legacy tree rendering; trees deeper than this are
// treated as malformed.
const maxLegacyDepth = 64

// LegacyComponent is a node of the legacy structured component tree.
type LegacyComponent struct {
	Type       string                 `json:"type,omitempty"`
	TagName    string                 `json:"tagName,omitempty"`
	Classes    []string               `json:"classes,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Components []LegacyComponent      `json:"components,omitempty"`
	Content    string                 `json:"content,omitempty"`
}

// render serializes the node: text nodes HTML-escaped, element nodes as
// <tag attrs>children</tag>, unknown node types defaulting to div.
func (n *LegacyComponent) render(depth int) string {
	if n == nil || depth > maxLegacyDepth {
		return ""
	}
	if n.Type == "textnode" {
		return html.EscapeString(n.Content)
	}

	tag := n.tag()
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	b.WriteString(n.attrString())
	b.WriteString(">")
	for i := range n.Components {
		b.WriteString(n.Components[i].render(depth + 1))
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b.String()
}

func (n *LegacyComponent) tag() string {
	if n.TagName != "" {
		return n.TagName
	}
	switch n.Type {
	case "heading":
		return "h1"
	case "text":
		return "p"
	default:
		return "div"
	}
}

// attrString renders attributes in deterministic key order with class
// handling folded in; class/className keys in the attribute map are ignored
// in favor of the Classes slice.
func (n *LegacyComponent) attrString() string {
	var parts []string

	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "class" || k == "className" {
			continue
		}
		v := n.Attributes[k]
		if v == nil {
			continue
		}
		s := fmt.Sprintf("%v", v)
		if s == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%q", k, html.EscapeString(s)))
	}

	var classes []string
	for _, cls := range n.Classes {
		if cls != "" {
			classes = append(classes, cls)
		}
	}
	if len(classes) > 0 {
		parts = append(parts, fmt.Sprintf("class=%q", html.EscapeString(strings.Join(classes, " "))))
	}

	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
