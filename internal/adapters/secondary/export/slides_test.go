package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalktalk/studio/internal/domain/entities"
)

func TestExtractRevealSlides(t *testing.T) {
	t.Run("one slide per page in order", func(t *testing.T) {
		doc := &entities.DocumentModel{Pages: []entities.Page{
			{Name: "Intro", Component: entities.NewHTMLContent(
				entities.WrapSlideContent("<h1>Intro</h1>", entities.DefaultSlideFormat, nil))},
			{Name: "Detail", Component: entities.NewHTMLContent(
				entities.WrapSlideContent("<p>Detail</p>", entities.DefaultSlideFormat, nil))},
		}}

		slides := ExtractRevealSlides(doc)
		require.Len(t, slides, 2)
		assert.Equal(t, "Intro", slides[0].Name)
		assert.Contains(t, slides[0].HTML, "<h1>Intro</h1>")
		assert.Equal(t, "Detail", slides[1].Name)
		assert.Contains(t, slides[1].HTML, "<p>Detail</p>")
	})

	t.Run("strips the container envelope", func(t *testing.T) {
		doc := &entities.DocumentModel{Pages: []entities.Page{
			{Component: entities.NewHTMLContent(
				entities.WrapSlideContent("<h1>Hi</h1>", entities.DefaultSlideFormat, nil))},
		}}

		slides := ExtractRevealSlides(doc)
		require.Len(t, slides, 1)
		assert.NotContains(t, slides[0].HTML, "data-slide-container")
		assert.NotContains(t, slides[0].HTML, "<style>")
	})

	t.Run("drops the envelope's bare body rule", func(t *testing.T) {
		doc := &entities.DocumentModel{Pages: []entities.Page{
			{Component: entities.NewHTMLContent(
				entities.WrapSlideContent("<h1>Hi</h1>", entities.DefaultSlideFormat, nil))},
		}}

		slides := ExtractRevealSlides(doc)
		require.Len(t, slides, 1)
		assert.Empty(t, slides[0].CSS)
	})

	t.Run("keeps scoped page CSS", func(t *testing.T) {
		doc := &entities.DocumentModel{Pages: []entities.Page{
			{Component: entities.NewHTMLContent(
				`<h1>Hi</h1><style>.title { color: red }</style>`)},
		}}

		slides := ExtractRevealSlides(doc)
		require.Len(t, slides, 1)
		require.Len(t, slides[0].CSS, 1)
		assert.Contains(t, slides[0].CSS[0], ".title")
		assert.Contains(t, slides[0].CSS[0], "color: red")
	})

	t.Run("filters body and html rules out of mixed sheets", func(t *testing.T) {
		doc := &entities.DocumentModel{Pages: []entities.Page{
			{Component: entities.NewHTMLContent(
				`<p>x</p><style>body { margin: 0 } .note { top: 4px } html { padding: 0 }</style>`)},
		}}

		slides := ExtractRevealSlides(doc)
		require.Len(t, slides, 1)
		require.Len(t, slides[0].CSS, 1)
		assert.Contains(t, slides[0].CSS[0], ".note")
		assert.NotContains(t, slides[0].CSS[0], "margin: 0")
		assert.NotContains(t, slides[0].CSS[0], "padding: 0")
	})

	t.Run("normalizes the container style", func(t *testing.T) {
		doc := &entities.DocumentModel{Pages: []entities.Page{
			{Component: entities.NewHTMLContent(
				entities.WrapSlideContent("<h1>Hi</h1>", entities.DefaultSlideFormat, nil))},
		}}

		slides := ExtractRevealSlides(doc)
		require.Len(t, slides, 1)
		style := slides[0].ContainerStyle
		assert.Contains(t, style, "position:relative")
		assert.Contains(t, style, "margin:0 auto")
		assert.Contains(t, style, "width:1920px")
		assert.NotContains(t, style, "top:")
		assert.NotContains(t, style, "left:")
	})

	t.Run("page without a container passes through whole", func(t *testing.T) {
		doc := &entities.DocumentModel{Pages: []entities.Page{
			{Component: entities.NewHTMLContent("<h1>Bare</h1>")},
		}}

		slides := ExtractRevealSlides(doc)
		require.Len(t, slides, 1)
		assert.Equal(t, "<h1>Bare</h1>", slides[0].HTML)
		assert.Empty(t, slides[0].ContainerStyle)
	})

	t.Run("nil document", func(t *testing.T) {
		assert.Nil(t, ExtractRevealSlides(nil))
	})
}

func TestExtractSlideContainer(t *testing.T) {
	t.Run("returns inner HTML and style attribute", func(t *testing.T) {
		html := `<div data-slide-container="true" style="width:100px;top:0"><p>x</p></div>`
		inner, style := extractSlideContainer(html)
		assert.Equal(t, "<p>x</p>", inner)
		assert.Equal(t, "width:100px;top:0", style)
	})

	t.Run("container without style", func(t *testing.T) {
		inner, style := extractSlideContainer(`<div data-slide-container="true"><p>x</p></div>`)
		assert.Equal(t, "<p>x</p>", inner)
		assert.Empty(t, style)
	})

	t.Run("no container", func(t *testing.T) {
		inner, style := extractSlideContainer("<p>x</p>")
		assert.Equal(t, "<p>x</p>", inner)
		assert.Empty(t, style)
	})

	t.Run("keeps nested divs intact", func(t *testing.T) {
		html := `<div data-slide-container="true"><div class="box">hello</div><p>tail</p></div>`
		inner, _ := extractSlideContainer(html)
		assert.Equal(t, `<div class="box">hello</div><p>tail</p>`, inner)
	})
}

func TestNormalizeContainerStyle(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  string
	}{
		{
			name:  "forces relative positioning and auto margins",
			style: "position:absolute;top:0;left:0;width:1920px",
			want:  "margin:0 auto;position:relative;width:1920px",
		},
		{
			name:  "overrides an existing margin",
			style: "margin:10px;width:100px",
			want:  "margin:0 auto;position:relative;width:100px",
		},
		{
			name:  "normalizes whitespace and key case",
			style: " Width : 100px ; HEIGHT:50px ",
			want:  "height:50px;margin:0 auto;position:relative;width:100px",
		},
		{
			name:  "ignores malformed declarations",
			style: "width:100px;nonsense;height:50px",
			want:  "height:50px;margin:0 auto;position:relative;width:100px",
		},
		{
			name:  "empty style stays empty",
			style: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeContainerStyle(tt.style))
		})
	}
}
