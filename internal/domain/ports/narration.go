package ports

import "github.com/chalktalk/studio/internal/domain/entities"

// FragmentExtractor finds narration-bearing elements in slide HTML.
type FragmentExtractor interface {
	// Extract returns the slide's fragments in document order. A slide with
	// no narration attributes but non-empty text yields exactly one fragment
	// holding the flattened text.
	Extract(slideHTML string, slideIndex int) ([]entities.Fragment, error)
}

// AlignedAudio is one fragment's audio as the aligner consumes it.
type AlignedAudio struct {
	Src        string
	FileRef    string
	TTSText    string
	DurationMS int
}

// PlaybackAligner rewrites slide HTML for narrated playback: lead-in
// fragment on non-first slides, fragment wrappers, auto-advance timings, and
// embedded audio elements.
type PlaybackAligner interface {
	Align(slideHTML string, slideIndex int, audio []AlignedAudio) (string, error)
}
