package builders

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chalktalk/studio/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck  *entities.Deck
	pages []entities.Page
}

// NewDeckBuilder creates a new deck builder with sensible defaults
func NewDeckBuilder() *DeckBuilder {
	now := time.Now().UTC()
	return &DeckBuilder{
		deck: &entities.Deck{
			ProjectID: uuid.NewString(),
			Title:     "Test Presentation",
			OwnerID:   "test-owner",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// WithProjectID sets the deck project ID
func (b *DeckBuilder) WithProjectID(id string) *DeckBuilder {
	b.deck.ProjectID = id
	return b
}

// WithTitle sets the deck title
func (b *DeckBuilder) WithTitle(title string) *DeckBuilder {
	b.deck.Title = title
	return b
}

// WithOwner sets the deck owner
func (b *DeckBuilder) WithOwner(ownerID string) *DeckBuilder {
	b.deck.OwnerID = ownerID
	return b
}

// WithPage adds a page to the deck document
func (b *DeckBuilder) WithPage(page entities.Page) *DeckBuilder {
	b.pages = append(b.pages, page)
	return b
}

// WithSlideCount adds the specified number of container-wrapped slides
func (b *DeckBuilder) WithSlideCount(count int) *DeckBuilder {
	for i := 0; i < count; i++ {
		b.pages = append(b.pages, NewPageBuilder().
			WithName(fmt.Sprintf("Slide %d", i+1)).
			WithBody(fmt.Sprintf("<h1>Slide %d</h1>", i+1)).
			Build())
	}
	return b
}

// WithRawProject sets the serialized document verbatim, bypassing the page
// builders. Useful for malformed-document tests.
func (b *DeckBuilder) WithRawProject(project string) *DeckBuilder {
	b.deck.Project = project
	b.pages = nil
	return b
}

// Build creates the final Deck entity
func (b *DeckBuilder) Build() *entities.Deck {
	deck := *b.deck
	if b.pages != nil {
		if err := deck.SetDocument(&entities.DocumentModel{Pages: b.pages}); err != nil {
			panic(err)
		}
	}
	return &deck
}

// PageBuilder helps build Page entities for testing
type PageBuilder struct {
	name   string
	body   string
	format entities.SlideFormat
	raw    string
}

// NewPageBuilder creates a new page builder with sensible defaults
func NewPageBuilder() *PageBuilder {
	return &PageBuilder{
		name:   "Test Slide",
		body:   "<h1>Test Slide</h1>",
		format: entities.DefaultSlideFormat,
	}
}

// WithName sets the page name
func (b *PageBuilder) WithName(name string) *PageBuilder {
	b.name = name
	return b
}

// WithBody sets the inner HTML that gets container-wrapped
func (b *PageBuilder) WithBody(body string) *PageBuilder {
	b.body = body
	return b
}

// WithFormat sets the slide format used for wrapping
func (b *PageBuilder) WithFormat(format entities.SlideFormat) *PageBuilder {
	b.format = format
	return b
}

// WithRawHTML sets the page HTML verbatim, skipping container wrapping
func (b *PageBuilder) WithRawHTML(html string) *PageBuilder {
	b.raw = html
	return b
}

// Build creates the final Page entity
func (b *PageBuilder) Build() entities.Page {
	html := b.raw
	if html == "" {
		html = entities.WrapSlideContent(b.body, b.format, nil)
	}
	return entities.Page{
		Name:      b.name,
		Component: entities.NewHTMLContent(html),
	}
}

// AudioCacheBuilder helps build AudioCache values for testing
type AudioCacheBuilder struct {
	cache entities.AudioCache
}

// NewAudioCacheBuilder creates an empty audio cache builder
func NewAudioCacheBuilder() *AudioCacheBuilder {
	return &AudioCacheBuilder{cache: entities.AudioCache{}}
}

// WithEntry appends a cache entry for the given slide
func (b *AudioCacheBuilder) WithEntry(slideIndex int, text, ref string, durationMS int) *AudioCacheBuilder {
	b.cache[slideIndex] = append(b.cache[slideIndex], entities.AudioCacheEntry{
		TTSText:      text,
		AudioFileRef: ref,
		DurationMS:   durationMS,
	})
	return b
}

// Build creates the final AudioCache
func (b *AudioCacheBuilder) Build() entities.AudioCache {
	out := make(entities.AudioCache, len(b.cache))
	for idx, entries := range b.cache {
		out[idx] = append([]entities.AudioCacheEntry(nil), entries...)
	}
	return out
}

// Common decks for testing

// MinimalDeck creates a single-slide deck for basic tests
func MinimalDeck() *entities.Deck {
	return NewDeckBuilder().
		WithTitle("Minimal").
		WithSlideCount(1).
		Build()
}

// LargeDeck creates a deck with many slides for pagination and perf tests
func LargeDeck() *entities.Deck {
	return NewDeckBuilder().
		WithTitle("Large Presentation").
		WithSlideCount(50).
		Build()
}
