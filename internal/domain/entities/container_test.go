package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapSlideContent(t *testing.T) {
	t.Run("wraps content in dimensioned container", func(t *testing.T) {
		wrapped := WrapSlideContent("<h1>Hello</h1>", Format16x9, nil)

		assert.Contains(t, wrapped, `data-slide-container="true"`)
		assert.Contains(t, wrapped, `data-slide-format-id="16:9"`)
		assert.Contains(t, wrapped, "<h1>Hello</h1>")
		assert.Contains(t, wrapped, "width:1920px")
		assert.Contains(t, wrapped, "height:1080px")
		assert.Contains(t, wrapped, "<style>body {")
	})

	t.Run("applies style overrides", func(t *testing.T) {
		wrapped := WrapSlideContent("<p>x</p>", Format720p, map[string]string{
			"background-color": "black",
		})

		assert.Contains(t, wrapped, "background-color:black")
		assert.Contains(t, wrapped, "width:1280px")
	})

	t.Run("round-trips through unwrap", func(t *testing.T) {
		content := "<h1>Title</h1><p>Body text</p>"
		wrapped := WrapSlideContent(content, Format16x9, nil)

		assert.Equal(t, content, UnwrapSlideContent(wrapped))
	})

	t.Run("round-trips content with nested divs", func(t *testing.T) {
		content := `<div class="box"><div class="inner">hello</div></div><p>tail</p>`
		wrapped := WrapSlideContent(content, Format16x9, nil)

		assert.Equal(t, content, UnwrapSlideContent(wrapped))
	})
}

func TestUnwrapSlideContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "unmarked content passes through",
			input:    "<h1>Plain</h1>",
			expected: "<h1>Plain</h1>",
		},
		{
			name:     "strips exactly one container layer",
			input:    `<div data-slide-container="true"><div data-slide-container="true"><p>x</p></div></div>`,
			expected: `<div data-slide-container="true"><p>x</p></div>`,
		},
		{
			name:     "keeps the closing tags of nested divs",
			input:    `<div data-slide-container="true"><div class="box">hello</div></div>`,
			expected: `<div class="box">hello</div>`,
		},
		{
			name:     "ignores tags that merely start with div",
			input:    `<div data-slide-container="true"><divider>x</divider></div>`,
			expected: `<divider>x</divider>`,
		},
		{
			name:     "container without a closing tag passes through",
			input:    `<div data-slide-container="true"><p>x</p>`,
			expected: `<div data-slide-container="true"><p>x</p>`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnwrapSlideContent(tt.input))
		})
	}
}

func TestIsCompleteContainer(t *testing.T) {
	assert.True(t, IsCompleteContainer(`<div data-slide-container="true"><p>x</p></div>`))
	assert.True(t, IsCompleteContainer(`<p>x</p><style>p { color: red; }</style>`))
	assert.True(t, IsCompleteContainer(`<div DATA-SLIDE-CONTAINER="true"></div>`))
	assert.False(t, IsCompleteContainer(`<h1>just markup</h1>`))
	assert.False(t, IsCompleteContainer(""))
}

func TestEnforceContainerDimensions(t *testing.T) {
	t.Run("rewrites container dimensions to format", func(t *testing.T) {
		input := WrapSlideContent("<p>x</p>", Format720p, nil)

		out := EnforceContainerDimensions(input, Format16x9)

		assert.Contains(t, out, "width: 1920px")
		assert.Contains(t, out, "height: 1080px")
		assert.NotContains(t, out, "1280px")
	})

	t.Run("leaves nested element dimensions alone", func(t *testing.T) {
		input := `<div data-slide-container="true" style="width: 1280px; height: 720px"><div style="width: 300px"></div></div>`

		out := EnforceContainerDimensions(input, Format16x9)

		assert.Contains(t, out, "width: 1920px")
		assert.Contains(t, out, "width: 300px")
	})

	t.Run("preserves min-height declarations", func(t *testing.T) {
		input := `<div data-slide-container="true" style="width: 1280px"></div><style>body { min-height: 720px; width: 1280px }</style>`

		out := EnforceContainerDimensions(input, Format16x9)

		assert.Contains(t, out, "min-height: 1080px")
	})

	t.Run("no container returns input unchanged", func(t *testing.T) {
		input := "<p>no container here, width: 100px</p>"
		assert.Equal(t, input, EnforceContainerDimensions(input, Format16x9))
	})
}

func TestContainerFormatID(t *testing.T) {
	t.Run("reads stamped format", func(t *testing.T) {
		wrapped := WrapSlideContent("<p>x</p>", Format4x3, nil)

		id, ok := ContainerFormatID(wrapped)
		require.True(t, ok)
		assert.Equal(t, "4:3", id)
	})

	t.Run("missing attribute", func(t *testing.T) {
		_, ok := ContainerFormatID(`<div data-slide-container="true"></div>`)
		assert.False(t, ok)
	})

	t.Run("empty attribute", func(t *testing.T) {
		_, ok := ContainerFormatID(`<div data-slide-format-id=""></div>`)
		assert.False(t, ok)
	})
}

func TestExtractStyleBlocks(t *testing.T) {
	t.Run("splits markup and css", func(t *testing.T) {
		input := `<h1>Title</h1><style>h1 { color: red; }</style><p>Body</p><style>p { margin: 0; }</style>`

		html, styles := ExtractStyleBlocks(input)

		assert.Equal(t, "<h1>Title</h1><p>Body</p>", html)
		require.Len(t, styles, 2)
		assert.Equal(t, "h1 { color: red; }", styles[0])
		assert.Equal(t, "p { margin: 0; }", styles[1])
	})

	t.Run("no style blocks", func(t *testing.T) {
		html, styles := ExtractStyleBlocks("<p>plain</p>")
		assert.Equal(t, "<p>plain</p>", html)
		assert.Empty(t, styles)
	})

	t.Run("empty style blocks are dropped", func(t *testing.T) {
		html, styles := ExtractStyleBlocks("<p>x</p><style>  </style>")
		assert.Equal(t, "<p>x</p>", html)
		assert.Empty(t, styles)
	})

	t.Run("style tags with attributes", func(t *testing.T) {
		_, styles := ExtractStyleBlocks(`<style type="text/css">a { b: c }</style>`)
		require.Len(t, styles, 1)
		assert.Equal(t, "a { b: c }", styles[0])
	})
}

func TestStyleString(t *testing.T) {
	s := styleString(map[string]string{"width": "10px", "height": "20px", "color": "red"})

	// Deterministic key order
	assert.Equal(t, "color:red;height:20px;width:10px", s)
	assert.False(t, strings.HasSuffix(s, ";"))
}
