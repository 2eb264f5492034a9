package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
	"github.com/chalktalk/studio/internal/test/builders"
)

func toolDeck(t *testing.T) *entities.Deck {
	t.Helper()
	return builders.NewDeckBuilder().
		WithProjectID("proj-1").
		WithOwner("alice").
		WithPage(builders.NewPageBuilder().WithName("Intro").WithBody("<h1>Intro slide</h1>").Build()).
		WithPage(builders.NewPageBuilder().WithName("").WithBody("<h2>Second slide</h2>").Build()).
		Build()
}

func TestToolServiceExecute_Access(t *testing.T) {
	svc := NewToolService(newFakeDeckRepo(toolDeck(t)), entities.DefaultSlideFormat)

	t.Run("unknown project", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadDeck, ProjectID: "nope", OwnerID: "alice",
		})
		assert.False(t, res.Success)
		assert.Equal(t, "Project not found", res.Error)
	})

	t.Run("wrong owner", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadDeck, ProjectID: "proj-1", OwnerID: "mallory",
		})
		assert.Equal(t, "Unauthorized to access this project", res.Error)
	})

	t.Run("unparseable document", func(t *testing.T) {
		broken := builders.NewDeckBuilder().
			WithProjectID("broken").WithOwner("alice").
			WithRawProject("{oops").Build()
		svc := NewToolService(newFakeDeckRepo(broken), entities.DefaultSlideFormat)

		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadDeck, ProjectID: "broken", OwnerID: "alice",
		})
		assert.Equal(t, "Invalid project data format", res.Error)
	})

	t.Run("unknown tool", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: "mystery", ProjectID: "proj-1", OwnerID: "alice",
		})
		assert.Equal(t, "Unknown tool: mystery", res.Error)
	})
}

func TestToolServiceReadDeck(t *testing.T) {
	svc := NewToolService(newFakeDeckRepo(toolDeck(t)), entities.DefaultSlideFormat)

	t.Run("reads all slides with names", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadDeck, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{},
		})
		require.True(t, res.Success)

		readout, ok := res.Data.(ports.DeckReadout)
		require.True(t, ok)
		assert.Equal(t, 2, readout.TotalSlides)
		require.Len(t, readout.Slides, 2)
		assert.Equal(t, "Intro", readout.Slides[0].Name)
		assert.Equal(t, "Slide 2", readout.Slides[1].Name)
		assert.Equal(t, "<h1>Intro slide</h1>", readout.Slides[0].HTML)
		assert.Contains(t, readout.Slides[0].CSS, "body {")
	})

	t.Run("includeNames false omits names", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadDeck, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{"includeNames": false},
		})
		require.True(t, res.Success)
		readout := res.Data.(ports.DeckReadout)
		assert.Empty(t, readout.Slides[0].Name)
	})
}

func TestToolServiceReadSlide(t *testing.T) {
	svc := NewToolService(newFakeDeckRepo(toolDeck(t)), entities.DefaultSlideFormat)

	t.Run("reads one slide", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{"slideIndex": float64(1)},
		})
		require.True(t, res.Success)

		detail, ok := res.Data.(ports.SlideDetail)
		require.True(t, ok)
		assert.Equal(t, 1, detail.SlideIndex)
		assert.Equal(t, "Slide 2", detail.SlideName)
		assert.Equal(t, "<h2>Second slide</h2>", detail.HTML)
	})

	t.Run("out of range", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{"slideIndex": float64(7)},
		})
		assert.Equal(t, "Slide 7 not found", res.Error)
	})

	t.Run("missing index", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReadSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{},
		})
		assert.Equal(t, "slideIndex is required", res.Error)
	})
}

func TestToolServiceCreateSlide(t *testing.T) {
	svc := NewToolService(newFakeDeckRepo(toolDeck(t)), entities.DefaultSlideFormat)

	t.Run("emits addSlide command with wrapped content", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolCreateSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{
				"content":       "<h1>Fresh slide content</h1>",
				"name":          "Fresh",
				"insertAtIndex": float64(1),
			},
		})
		require.True(t, res.Success)
		assert.Equal(t, entities.CommandAddSlide, res.Command)

		data, ok := res.Data.(entities.CommandData)
		require.True(t, ok)
		assert.Equal(t, "Fresh", data.Name)
		assert.Contains(t, data.Content, "data-slide-container")
		assert.Contains(t, data.Content, "<h1>Fresh slide content</h1>")
		require.NotNil(t, data.InsertAtIndex)
		assert.Equal(t, 1, *data.InsertAtIndex)
	})

	t.Run("already wrapped content gets dimensions enforced, not rewrapped", func(t *testing.T) {
		wrapped := entities.WrapSlideContent("<p>existing body</p>", entities.Format720p, nil)
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolCreateSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{"content": wrapped},
		})
		require.True(t, res.Success)

		data := res.Data.(entities.CommandData)
		// Exactly one container layer
		assert.Equal(t, 1, strings.Count(data.Content, "data-slide-container"))
		assert.Contains(t, data.Content, "width: 1920px")
	})

	t.Run("content too short", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolCreateSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{"content": "<p></p>"},
		})
		assert.False(t, res.Success)
		assert.Equal(t, "slide content is empty or too short", res.Error)
	})
}

func TestToolServiceReplaceSlide(t *testing.T) {
	svc := NewToolService(newFakeDeckRepo(toolDeck(t)), entities.DefaultSlideFormat)

	t.Run("emits replaceSlide command", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReplaceSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{
				"slideIndex": float64(0),
				"content":    "<h1>Replacement content</h1>",
				"name":       "Renamed",
			},
		})
		require.True(t, res.Success)
		assert.Equal(t, entities.CommandReplaceSlide, res.Command)

		data := res.Data.(entities.CommandData)
		require.NotNil(t, data.SlideIndex)
		assert.Equal(t, 0, *data.SlideIndex)
		assert.Equal(t, "Renamed", data.NewName)
		assert.Contains(t, data.NewContent, "<h1>Replacement content</h1>")
	})

	t.Run("target slide must exist", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolReplaceSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{
				"slideIndex": float64(4),
				"content":    "<h1>Replacement content</h1>",
			},
		})
		assert.Equal(t, "Slide 4 not found", res.Error)
	})
}

func TestToolServiceDeleteSlide(t *testing.T) {
	svc := NewToolService(newFakeDeckRepo(toolDeck(t)), entities.DefaultSlideFormat)

	t.Run("emits deleteSlide command", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolDeleteSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{"slideIndex": float64(1)},
		})
		require.True(t, res.Success)
		assert.Equal(t, entities.CommandDeleteSlide, res.Command)

		data := res.Data.(entities.CommandData)
		require.NotNil(t, data.SlideIndex)
		assert.Equal(t, 1, *data.SlideIndex)
	})

	t.Run("target slide must exist", func(t *testing.T) {
		res := svc.Execute(context.Background(), ports.ToolCall{
			Tool: ports.ToolDeleteSlide, ProjectID: "proj-1", OwnerID: "alice",
			Params: map[string]interface{}{"slideIndex": float64(9)},
		})
		assert.Equal(t, "Slide 9 not found", res.Error)
	})
}

func TestToolServiceDeckFormat(t *testing.T) {
	// Deck authored in 720p keeps emitting 720p dimensions
	deck := builders.NewDeckBuilder().
		WithProjectID("proj-720").
		WithOwner("alice").
		WithPage(builders.NewPageBuilder().WithFormat(entities.Format720p).WithBody("<h1>Old deck</h1>").Build()).
		Build()
	svc := NewToolService(newFakeDeckRepo(deck), entities.DefaultSlideFormat)

	res := svc.Execute(context.Background(), ports.ToolCall{
		Tool: ports.ToolCreateSlide, ProjectID: "proj-720", OwnerID: "alice",
		Params: map[string]interface{}{"content": "<h1>New slide here</h1>"},
	})
	require.True(t, res.Success)

	data := res.Data.(entities.CommandData)
	assert.Contains(t, data.Content, `data-slide-format-id="16:9-720"`)
	assert.Contains(t, data.Content, "width:1280px")
}
