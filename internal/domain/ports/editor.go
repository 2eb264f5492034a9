package ports

import "github.com/chalktalk/studio/internal/domain/entities"

// EditorSlide is one slide as the live editor sees it: the page's HTML with
// style blocks split out as CSS.
type EditorSlide struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	HTML  string `json:"html"`
	CSS   string `json:"css"`
}

// EditorEngine is the capability interface of the live editor instance. It is
// an explicit dependency of whatever owns the editing session, never ambient
// state. One engine is bound to one session and is mutated only from that
// session's goroutine.
type EditorEngine interface {
	// AddSlide inserts a new page at insertAt (nil appends) and selects it
	AddSlide(name, content string, insertAt *int) bool

	// ReplaceSlide replaces the page at index, optionally renaming it
	ReplaceSlide(index int, content, name string) bool

	// DeleteSlide removes the page at index
	DeleteSlide(index int) bool

	// SelectSlide makes the page at index the active one
	SelectSlide(index int) bool

	// SelectedIndex returns the active page index, -1 when empty
	SelectedIndex() int

	// SlideHTML returns the page's HTML with style blocks removed
	SlideHTML(index int) (string, bool)

	// SlideCSS returns the CSS extracted from the page's style blocks
	SlideCSS(index int) (string, bool)

	// Slide returns the page at index in editor form
	Slide(index int) (EditorSlide, bool)

	// AllSlides returns every page in editor form, in presentation order
	AllSlides() []EditorSlide

	// SlideCount returns the number of pages
	SlideCount() int

	// Zoom returns the canvas zoom percentage
	Zoom() float64

	// SetZoom sets the canvas zoom percentage
	SetZoom(zoom float64)

	// Undo reverts the last mutation; returns false when the history is empty
	Undo() bool

	// Redo re-applies the last undone mutation
	Redo() bool

	// Document snapshots the current state as a document model
	Document() *entities.DocumentModel

	// LoadDocument replaces the editor state with the given document
	LoadDocument(doc *entities.DocumentModel)
}
