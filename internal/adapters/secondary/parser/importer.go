package parser

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// MarkdownImporter builds decks from markdown documents: optional YAML
// frontmatter, slides separated by --- rules, each slide rendered to HTML,
// sanitized, and wrapped in the slide container envelope. The returned deck
// is not persisted; the caller saves it.
type MarkdownImporter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	format entities.SlideFormat
	caser  cases.Caser
}

// NewMarkdownImporter creates an importer producing decks in the given slide
// format.
func NewMarkdownImporter(format entities.SlideFormat) *MarkdownImporter {
	if format.Validate() != nil {
		format = entities.DefaultSlideFormat
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			gparser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			ghtml.WithUnsafe(), // raw HTML passes through, the sanitizer gates it
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("style").Globally()
	policy.AllowAttrs(entities.NarrationAttr, "data-fragment-index").Globally()

	return &MarkdownImporter{
		md:     md,
		policy: policy,
		format: format,
		caser:  cases.Title(language.English),
	}
}

type frontmatter struct {
	Title string `yaml:"title"`
}

// Import parses markdown content into a deck owned by ownerID.
func (m *MarkdownImporter) Import(ctx context.Context, content []byte, ownerID string) (*entities.Deck, error) {
	fm, body := extractFrontmatter(content)

	slides := splitSlides(body)
	if len(slides) == 0 {
		return nil, fmt.Errorf("markdown document contains no slides")
	}

	pages := make([]entities.Page, 0, len(slides))
	for i, slide := range slides {
		var rendered bytes.Buffer
		if err := m.md.Convert(slide, &rendered); err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", i+1, err)
		}

		clean := m.policy.SanitizeBytes(rendered.Bytes())
		wrapped := entities.WrapSlideContent(strings.TrimSpace(string(clean)), m.format, nil)

		name := firstHeading(slide)
		if name == "" {
			name = fmt.Sprintf("Slide %d", i+1)
		}
		pages = append(pages, entities.Page{
			Name:      name,
			Component: entities.NewHTMLContent(wrapped),
		})
	}

	title := fm.Title
	if title == "" {
		if heading := firstHeading(slides[0]); heading != "" {
			title = m.caser.String(strings.ToLower(heading))
		} else {
			title = "Imported Presentation"
		}
	}

	now := time.Now().UTC()
	deck := &entities.Deck{
		ProjectID: uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := deck.SetDocument(&entities.DocumentModel{Pages: pages}); err != nil {
		return nil, err
	}
	return deck, nil
}

// extractFrontmatter parses a leading YAML frontmatter block.
func extractFrontmatter(content []byte) (frontmatter, []byte) {
	var fm frontmatter
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return fm, content
	}

	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			endIndex = i
			break
		}
	}
	if endIndex == -1 {
		return fm, content
	}

	block := bytes.Join(lines[1:endIndex], []byte("\n"))
	if err := yaml.Unmarshal(block, &fm); err != nil {
		// Malformed frontmatter is treated as body content.
		return frontmatter{}, content
	}
	return fm, bytes.Join(lines[endIndex+1:], []byte("\n"))
}

var slideDelimiterRe = regexp.MustCompile(`(?m)^---\s*$`)

// splitSlides splits the body on horizontal-rule delimiters, dropping empty
// slides.
func splitSlides(body []byte) [][]byte {
	parts := slideDelimiterRe.Split(string(body), -1)
	slides := make([][]byte, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		slides = append(slides, []byte(strings.TrimSpace(part)))
	}
	return slides
}

var headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)

// firstHeading returns the text of the slide's first markdown heading.
func firstHeading(slide []byte) string {
	m := headingRe.FindSubmatch(slide)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(m[1]))
}

// Ensure MarkdownImporter implements ports.DeckImporter
var _ ports.DeckImporter = (*MarkdownImporter)(nil)
