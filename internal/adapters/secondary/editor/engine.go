package editor

import (
	"fmt"
	"strings"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

const (
	defaultZoom = 100.0
	minZoom     = 10.0
	maxZoom     = 400.0

	// maxHistory bounds the undo stack; the oldest snapshot falls off.
	maxHistory = 100
)

// Engine is an in-memory editor over a document model. It implements the
// editing surface the command executor drives: indexed slide mutations with
// snapshot-based undo. Not safe for concurrent use; one engine belongs to one
// session goroutine.
type Engine struct {
	doc      entities.DocumentModel
	selected int
	zoom     float64
	undo     []snapshot
	redo     []snapshot
}

type snapshot struct {
	pages    []entities.Page
	selected int
}

// NewEngine creates an engine over an empty document.
func NewEngine() *Engine {
	return &Engine{
		selected: -1,
		zoom:     defaultZoom,
	}
}

// AddSlide inserts a page at insertAt (nil appends) and selects it.
func (e *Engine) AddSlide(name, content string, insertAt *int) bool {
	if name == "" {
		name = fmt.Sprintf("Slide %d", e.doc.PageCount()+1)
	}

	e.pushUndo()
	idx := e.doc.InsertPage(entities.Page{
		Name:      name,
		Component: entities.NewHTMLContent(content),
	}, insertAt)
	e.selected = idx
	return true
}

// ReplaceSlide replaces the page at index, optionally renaming it.
func (e *Engine) ReplaceSlide(index int, content, name string) bool {
	page, err := e.doc.PageByIndex(index)
	if err != nil {
		return false
	}

	e.pushUndo()
	page, _ = e.doc.PageByIndex(index) // re-resolve after snapshot copy
	page.Component = entities.NewHTMLContent(content)
	if name != "" {
		page.Name = name
	}
	e.selected = index
	return true
}

// DeleteSlide removes the page at index.
func (e *Engine) DeleteSlide(index int) bool {
	if index < 0 || index >= e.doc.PageCount() {
		return false
	}

	e.pushUndo()
	_ = e.doc.RemovePage(index)
	if e.selected >= e.doc.PageCount() {
		e.selected = e.doc.PageCount() - 1
	}
	return true
}

// SelectSlide makes the page at index the active one.
func (e *Engine) SelectSlide(index int) bool {
	if index < 0 || index >= e.doc.PageCount() {
		return false
	}
	e.selected = index
	return true
}

// SelectedIndex returns the active page index, -1 when the document is empty.
func (e *Engine) SelectedIndex() int {
	if e.doc.PageCount() == 0 {
		return -1
	}
	if e.selected < 0 || e.selected >= e.doc.PageCount() {
		return 0
	}
	return e.selected
}

// SlideHTML returns the page's HTML with style blocks removed.
func (e *Engine) SlideHTML(index int) (string, bool) {
	page, err := e.doc.PageByIndex(index)
	if err != nil {
		return "", false
	}
	cleaned, _ := entities.ExtractStyleBlocks(page.Component.ToHTML())
	return strings.TrimSpace(cleaned), true
}

// SlideCSS returns the CSS extracted from the page's style blocks.
func (e *Engine) SlideCSS(index int) (string, bool) {
	page, err := e.doc.PageByIndex(index)
	if err != nil {
		return "", false
	}
	_, styles := entities.ExtractStyleBlocks(page.Component.ToHTML())
	return strings.Join(styles, "\n"), true
}

// Slide returns the page at index in editor form.
func (e *Engine) Slide(index int) (ports.EditorSlide, bool) {
	page, err := e.doc.PageByIndex(index)
	if err != nil {
		return ports.EditorSlide{}, false
	}
	return e.editorSlide(index, page), true
}

// AllSlides returns every page in editor form, in presentation order.
func (e *Engine) AllSlides() []ports.EditorSlide {
	slides := make([]ports.EditorSlide, 0, e.doc.PageCount())
	for i := range e.doc.Pages {
		slides = append(slides, e.editorSlide(i, &e.doc.Pages[i]))
	}
	return slides
}

// SlideCount returns the number of pages.
func (e *Engine) SlideCount() int {
	return e.doc.PageCount()
}

// Zoom returns the canvas zoom percentage.
func (e *Engine) Zoom() float64 {
	return e.zoom
}

// SetZoom sets the canvas zoom percentage, clamped to the supported range.
func (e *Engine) SetZoom(zoom float64) {
	switch {
	case zoom < minZoom:
		e.zoom = minZoom
	case zoom > maxZoom:
		e.zoom = maxZoom
	default:
		e.zoom = zoom
	}
}

// Undo reverts the last mutation.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	e.redo = append(e.redo, e.snapshot())
	e.restore(e.undo[len(e.undo)-1])
	e.undo = e.undo[:len(e.undo)-1]
	return true
}

// Redo re-applies the last undone mutation.
func (e *Engine) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	e.undo = append(e.undo, e.snapshot())
	e.restore(e.redo[len(e.redo)-1])
	e.redo = e.redo[:len(e.redo)-1]
	return true
}

// Document snapshots the current state as a document model.
func (e *Engine) Document() *entities.DocumentModel {
	return &entities.DocumentModel{Pages: copyPages(e.doc.Pages)}
}

// LoadDocument replaces the editor state with the given document and clears
// the history.
func (e *Engine) LoadDocument(doc *entities.DocumentModel) {
	if doc == nil {
		e.doc = entities.DocumentModel{}
	} else {
		e.doc = entities.DocumentModel{Pages: copyPages(doc.Pages)}
	}
	e.undo = nil
	e.redo = nil
	if e.doc.PageCount() == 0 {
		e.selected = -1
	} else {
		e.selected = 0
	}
}

func (e *Engine) editorSlide(index int, page *entities.Page) ports.EditorSlide {
	raw := page.Component.ToHTML()
	cleaned, styles := entities.ExtractStyleBlocks(raw)

	name := page.Name
	if name == "" {
		name = fmt.Sprintf("Slide %d", index+1)
	}
	return ports.EditorSlide{
		Index: index,
		Name:  name,
		HTML:  strings.TrimSpace(cleaned),
		CSS:   strings.Join(styles, "\n"),
	}
}

func (e *Engine) pushUndo() {
	e.undo = append(e.undo, e.snapshot())
	if len(e.undo) > maxHistory {
		e.undo = e.undo[1:]
	}
	// A fresh mutation invalidates the redo branch.
	e.redo = nil
}

func (e *Engine) snapshot() snapshot {
	return snapshot{
		pages:    copyPages(e.doc.Pages),
		selected: e.selected,
	}
}

func (e *Engine) restore(s snapshot) {
	e.doc = entities.DocumentModel{Pages: copyPages(s.pages)}
	e.selected = s.selected
}

func copyPages(pages []entities.Page) []entities.Page {
	if len(pages) == 0 {
		return nil
	}
	out := make([]entities.Page, len(pages))
	copy(out, pages)
	return out
}

// Ensure Engine implements ports.EditorEngine
var _ ports.EditorEngine = (*Engine)(nil)
