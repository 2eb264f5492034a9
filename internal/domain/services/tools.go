package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// ToolService resolves assistant tool calls against persisted decks. Read
// tools answer directly from the deck's document model; write tools validate
// and normalize their input, then emit a declarative command for the executor.
// No tool call mutates a deck here.
type ToolService struct {
	decks  ports.DeckRepository
	format entities.SlideFormat
}

// NewToolService creates a tool service that falls back to the given slide
// format when a deck carries no format of its own.
func NewToolService(decks ports.DeckRepository, format entities.SlideFormat) *ToolService {
	if format.Validate() != nil {
		format = entities.DefaultSlideFormat
	}
	return &ToolService{
		decks:  decks,
		format: format,
	}
}

// Execute resolves one tool call. Failures of any kind come back inside the
// result, never as a raised error: the caller is a model, and it needs a
// resolvable payload to reason about.
func (s *ToolService) Execute(ctx context.Context, call ports.ToolCall) (res ports.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] [tools] panic resolving %s: %v", call.Tool, r)
			res = errorResult(fmt.Sprintf("Internal error: %v", r))
		}
	}()

	deck, err := s.decks.Get(ctx, call.ProjectID)
	if err != nil {
		if errors.Is(err, entities.ErrDeckNotFound) {
			return errorResult("Project not found")
		}
		log.Printf("[ERROR] [tools] loading project %s: %v", call.ProjectID, err)
		return errorResult("Failed to load project")
	}
	if call.OwnerID != "" && deck.OwnerID != "" && deck.OwnerID != call.OwnerID {
		return errorResult("Unauthorized to access this project")
	}

	doc, err := deck.Document()
	if err != nil {
		log.Printf("[WARN] [tools] project %s has unparseable document: %v", call.ProjectID, err)
		return errorResult("Invalid project data format")
	}

	switch call.Tool {
	case ports.ToolReadDeck:
		return s.readDeck(doc, call.Params)
	case ports.ToolReadSlide:
		return s.readSlide(doc, call.Params)
	case ports.ToolCreateSlide:
		return s.createSlide(doc, call.Params)
	case ports.ToolReplaceSlide:
		return s.replaceSlide(doc, call.Params)
	case ports.ToolDeleteSlide:
		return s.deleteSlide(doc, call.Params)
	default:
		return errorResult("Unknown tool: " + call.Tool)
	}
}

func (s *ToolService) readDeck(doc *entities.DocumentModel, params map[string]interface{}) ports.ToolResult {
	includeNames := boolParam(params, true, "includeNames")

	readout := ports.DeckReadout{
		TotalSlides: doc.PageCount(),
		Slides:      make([]ports.SlideReadout, 0, doc.PageCount()),
	}
	for i := range doc.Pages {
		html, css := slideView(&doc.Pages[i])
		slide := ports.SlideReadout{Index: i, HTML: html, CSS: css}
		if includeNames {
			slide.Name = pageName(&doc.Pages[i], i)
		}
		readout.Slides = append(readout.Slides, slide)
	}

	return ports.ToolResult{Success: true, Data: readout}
}

func (s *ToolService) readSlide(doc *entities.DocumentModel, params map[string]interface{}) ports.ToolResult {
	idx, ok := intParam(params, "slideIndex", "index")
	if !ok {
		return errorResult("slideIndex is required")
	}
	page, err := doc.PageByIndex(idx)
	if err != nil {
		return errorResult(err.Error())
	}

	html, css := slideView(page)
	return ports.ToolResult{Success: true, Data: ports.SlideDetail{
		SlideIndex: idx,
		SlideName:  pageName(page, idx),
		HTML:       html,
		CSS:        css,
	}}
}

func (s *ToolService) createSlide(doc *entities.DocumentModel, params map[string]interface{}) ports.ToolResult {
	input, err := entities.NormalizeSlideInput(params)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := input.Validate(); err != nil {
		return errorResult(err.Error())
	}

	content := s.normalizeContent(input.Content, doc)
	return ports.ToolResult{
		Success: true,
		Command: entities.CommandAddSlide,
		Data: entities.CommandData{
			Name:          input.Name,
			Content:       content,
			InsertAtIndex: input.InsertAtIndex,
		},
	}
}

func (s *ToolService) replaceSlide(doc *entities.DocumentModel, params map[string]interface{}) ports.ToolResult {
	idx, ok := intParam(params, "slideIndex", "index")
	if !ok {
		return errorResult("slideIndex is required")
	}
	if _, err := doc.PageByIndex(idx); err != nil {
		return errorResult(err.Error())
	}

	input, err := entities.NormalizeSlideInput(params)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := input.Validate(); err != nil {
		return errorResult(err.Error())
	}

	content := s.normalizeContent(input.Content, doc)
	return ports.ToolResult{
		Success: true,
		Command: entities.CommandReplaceSlide,
		Data: entities.CommandData{
			SlideIndex: &idx,
			NewContent: content,
			NewName:    input.Name,
		},
	}
}

func (s *ToolService) deleteSlide(doc *entities.DocumentModel, params map[string]interface{}) ports.ToolResult {
	idx, ok := intParam(params, "slideIndex", "index")
	if !ok {
		return errorResult("slideIndex is required")
	}
	if _, err := doc.PageByIndex(idx); err != nil {
		return errorResult(err.Error())
	}

	return ports.ToolResult{
		Success: true,
		Command: entities.CommandDeleteSlide,
		Data:    entities.CommandData{SlideIndex: &idx},
	}
}

// normalizeContent guarantees authored content leaves here wrapped in a
// dimensioned container envelope: fresh fragments get wrapped, content that
// already carries an envelope gets its dimensions re-enforced.
func (s *ToolService) normalizeContent(content string, doc *entities.DocumentModel) string {
	format := s.deckFormat(doc)
	if entities.IsCompleteContainer(content) {
		return entities.EnforceContainerDimensions(content, format)
	}
	return entities.WrapSlideContent(content, format, nil)
}

// deckFormat resolves the deck's slide format from the first page's container
// envelope, falling back to the service default.
func (s *ToolService) deckFormat(doc *entities.DocumentModel) entities.SlideFormat {
	for i := range doc.Pages {
		if id, ok := entities.ContainerFormatID(doc.Pages[i].Component.ToHTML()); ok {
			if format, err := entities.FormatByID(id); err == nil {
				return format
			}
		}
		break
	}
	return s.format
}

// slideView renders a page the way the tools expose it: inner HTML with the
// container stripped, and the page's CSS split out of its style blocks.
func slideView(page *entities.Page) (html, css string) {
	raw := page.Component.ToHTML()
	cleaned, styles := entities.ExtractStyleBlocks(raw)
	return strings.TrimSpace(entities.UnwrapSlideContent(cleaned)), strings.Join(styles, "\n")
}

func pageName(page *entities.Page, index int) string {
	if page.Name != "" {
		return page.Name
	}
	return fmt.Sprintf("Slide %d", index+1)
}

func errorResult(msg string) ports.ToolResult {
	return ports.ToolResult{Error: msg}
}

func intParam(params map[string]interface{}, keys ...string) (int, bool) {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		}
	}
	return 0, false
}

func boolParam(params map[string]interface{}, def bool, keys ...string) bool {
	for _, k := range keys {
		if v, ok := params[k]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return def
}

// Ensure ToolService implements ports.ToolService
var _ ports.ToolService = (*ToolService)(nil)
