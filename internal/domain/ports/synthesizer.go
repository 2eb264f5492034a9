package ports

import "context"

// SpeechSynthesizer converts narration text to audio.
type SpeechSynthesizer interface {
	// Synthesize returns encoded audio for the given text
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// DurationProber computes the playback duration of encoded audio.
type DurationProber interface {
	// DurationMS returns the duration in milliseconds
	DurationMS(audio []byte) (int, error)
}
