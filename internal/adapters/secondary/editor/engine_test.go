package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalktalk/studio/internal/domain/entities"
)

func TestEngineAddSlide(t *testing.T) {
	t.Run("appends and selects", func(t *testing.T) {
		e := NewEngine()

		assert.True(t, e.AddSlide("Intro", "<h1>Hi</h1>", nil))
		assert.True(t, e.AddSlide("Detail", "<p>More</p>", nil))

		assert.Equal(t, 2, e.SlideCount())
		assert.Equal(t, 1, e.SelectedIndex())

		html, ok := e.SlideHTML(0)
		require.True(t, ok)
		assert.Equal(t, "<h1>Hi</h1>", html)
	})

	t.Run("inserts at index", func(t *testing.T) {
		e := NewEngine()
		e.AddSlide("A", "<p>a</p>", nil)
		e.AddSlide("C", "<p>c</p>", nil)

		at := 1
		assert.True(t, e.AddSlide("B", "<p>b</p>", &at))

		slides := e.AllSlides()
		require.Len(t, slides, 3)
		assert.Equal(t, []string{"A", "B", "C"}, []string{slides[0].Name, slides[1].Name, slides[2].Name})
		assert.Equal(t, 1, e.SelectedIndex())
	})

	t.Run("empty name gets a positional default", func(t *testing.T) {
		e := NewEngine()
		e.AddSlide("", "<p>x</p>", nil)

		slide, ok := e.Slide(0)
		require.True(t, ok)
		assert.Equal(t, "Slide 1", slide.Name)
	})
}

func TestEngineReplaceSlide(t *testing.T) {
	e := NewEngine()
	e.AddSlide("A", "<p>old</p>", nil)

	t.Run("replaces content and keeps the name", func(t *testing.T) {
		assert.True(t, e.ReplaceSlide(0, "<p>new</p>", ""))

		slide, ok := e.Slide(0)
		require.True(t, ok)
		assert.Equal(t, "A", slide.Name)
		assert.Equal(t, "<p>new</p>", slide.HTML)
	})

	t.Run("renames when a name is given", func(t *testing.T) {
		assert.True(t, e.ReplaceSlide(0, "<p>newer</p>", "Renamed"))

		slide, _ := e.Slide(0)
		assert.Equal(t, "Renamed", slide.Name)
	})

	t.Run("out of range", func(t *testing.T) {
		assert.False(t, e.ReplaceSlide(5, "<p>x</p>", ""))
		assert.False(t, e.ReplaceSlide(-1, "<p>x</p>", ""))
	})
}

func TestEngineDeleteSlide(t *testing.T) {
	e := NewEngine()
	e.AddSlide("A", "<p>a</p>", nil)
	e.AddSlide("B", "<p>b</p>", nil)
	e.AddSlide("C", "<p>c</p>", nil)

	assert.True(t, e.DeleteSlide(1))
	assert.Equal(t, 2, e.SlideCount())

	slides := e.AllSlides()
	assert.Equal(t, "A", slides[0].Name)
	assert.Equal(t, "C", slides[1].Name)

	// Selection clamps when the tail is deleted
	e.SelectSlide(1)
	assert.True(t, e.DeleteSlide(1))
	assert.Equal(t, 0, e.SelectedIndex())

	assert.False(t, e.DeleteSlide(5))
}

func TestEngineSelection(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, -1, e.SelectedIndex())
	assert.False(t, e.SelectSlide(0))

	e.AddSlide("A", "<p>a</p>", nil)
	e.AddSlide("B", "<p>b</p>", nil)

	assert.True(t, e.SelectSlide(0))
	assert.Equal(t, 0, e.SelectedIndex())
	assert.False(t, e.SelectSlide(2))
	assert.Equal(t, 0, e.SelectedIndex())
}

func TestEngineZoom(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 100.0, e.Zoom())

	e.SetZoom(150)
	assert.Equal(t, 150.0, e.Zoom())

	e.SetZoom(5)
	assert.Equal(t, 10.0, e.Zoom())

	e.SetZoom(1000)
	assert.Equal(t, 400.0, e.Zoom())
}

func TestEngineStyleSplit(t *testing.T) {
	e := NewEngine()
	e.AddSlide("A", "<h1>Hi</h1>\n<style>h1 { color: red }</style>", nil)

	html, ok := e.SlideHTML(0)
	require.True(t, ok)
	assert.Equal(t, "<h1>Hi</h1>", html)

	css, ok := e.SlideCSS(0)
	require.True(t, ok)
	assert.Equal(t, "h1 { color: red }", css)
}

func TestEngineUndoRedo(t *testing.T) {
	t.Run("undo reverts the last mutation", func(t *testing.T) {
		e := NewEngine()
		e.AddSlide("A", "<p>a</p>", nil)
		e.AddSlide("B", "<p>b</p>", nil)

		assert.True(t, e.Undo())
		assert.Equal(t, 1, e.SlideCount())

		assert.True(t, e.Undo())
		assert.Equal(t, 0, e.SlideCount())

		assert.False(t, e.Undo())
	})

	t.Run("redo re-applies an undone mutation", func(t *testing.T) {
		e := NewEngine()
		e.AddSlide("A", "<p>a</p>", nil)
		e.ReplaceSlide(0, "<p>changed</p>", "")

		require.True(t, e.Undo())
		html, _ := e.SlideHTML(0)
		assert.Equal(t, "<p>a</p>", html)

		require.True(t, e.Redo())
		html, _ = e.SlideHTML(0)
		assert.Equal(t, "<p>changed</p>", html)
	})

	t.Run("a new mutation clears the redo branch", func(t *testing.T) {
		e := NewEngine()
		e.AddSlide("A", "<p>a</p>", nil)
		e.AddSlide("B", "<p>b</p>", nil)

		require.True(t, e.Undo())
		e.AddSlide("C", "<p>c</p>", nil)

		assert.False(t, e.Redo())
	})
}

func TestEngineLoadDocument(t *testing.T) {
	e := NewEngine()
	e.AddSlide("Old", "<p>old</p>", nil)

	e.LoadDocument(&entities.DocumentModel{Pages: []entities.Page{
		{Name: "One", Component: entities.NewHTMLContent("<p>1</p>")},
		{Name: "Two", Component: entities.NewHTMLContent("<p>2</p>")},
	}})

	assert.Equal(t, 2, e.SlideCount())
	assert.Equal(t, 0, e.SelectedIndex())
	assert.False(t, e.Undo())

	t.Run("document snapshot is detached", func(t *testing.T) {
		doc := e.Document()
		doc.Pages[0].Name = "Mutated"

		slide, _ := e.Slide(0)
		assert.Equal(t, "One", slide.Name)
	})

	t.Run("nil resets to empty", func(t *testing.T) {
		e.LoadDocument(nil)
		assert.Equal(t, 0, e.SlideCount())
		assert.Equal(t, -1, e.SelectedIndex())
	})
}
