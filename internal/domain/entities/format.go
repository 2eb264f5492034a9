package entities

import "fmt"

// SlideFormat describes the fixed pixel dimensions of a deck's slides.
type SlideFormat struct {
	// ID is the stable identifier stored on slide containers
	ID string `json:"id" toml:"id"`

	// Name is the human-readable format name
	Name string `json:"name" toml:"name"`

	// Width is the slide width in pixels
	Width int `json:"width" toml:"width"`

	// Height is the slide height in pixels
	Height int `json:"height" toml:"height"`
}

// Built-in slide formats. Format16x9 is the default for new decks; the
// compact 720p variant exists for decks authored before the canvas was
// upsized.
var (
	Format16x9 = SlideFormat{
		ID:     "16:9",
		Name:   "Presentation (16:9)",
		Width:  1920,
		Height: 1080,
	}

	Format4x3 = SlideFormat{
		ID:     "4:3",
		Name:   "Presentation (4:3)",
		Width:  1024,
		Height: 768,
	}

	Format720p = SlideFormat{
		ID:     "16:9-720",
		Name:   "Presentation (16:9, 720p)",
		Width:  1280,
		Height: 720,
	}
)

// DefaultSlideFormat is applied whenever a deck does not specify a format.
var DefaultSlideFormat = Format16x9

// FormatByID returns the built-in format with the given ID.
func FormatByID(id string) (SlideFormat, error) {
	for _, f := range []SlideFormat{Format16x9, Format4x3, Format720p} {
		if f.ID == id {
			return f, nil
		}
	}
	return SlideFormat{}, fmt.Errorf("unknown slide format: %s", id)
}

// Validate ensures the format has usable dimensions.
func (f SlideFormat) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("slide format %q must have positive dimensions", f.ID)
	}
	return nil
}
