package speech

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/tcolgate/mp3"

	"github.com/chalktalk/studio/internal/domain/ports"
)

// MP3DurationProber computes playback duration by walking MP3 frames.
type MP3DurationProber struct{}

// NewMP3DurationProber creates a duration prober.
func NewMP3DurationProber() *MP3DurationProber {
	return &MP3DurationProber{}
}

// DurationMS returns the audio duration in milliseconds, rounded.
func (p *MP3DurationProber) DurationMS(audio []byte) (int, error) {
	decoder := mp3.NewDecoder(bytes.NewReader(audio))

	var total time.Duration
	var frame mp3.Frame
	skipped := 0
	for {
		err := decoder.Decode(&frame, &skipped)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A truncated tail frame still leaves a usable total.
			if total > 0 {
				break
			}
			return 0, err
		}
		total += frame.Duration()
	}

	if total <= 0 {
		return 0, errors.New("no decodable MP3 frames")
	}
	return int(total.Round(time.Millisecond) / time.Millisecond), nil
}

// Ensure MP3DurationProber implements ports.DurationProber
var _ ports.DurationProber = (*MP3DurationProber)(nil)
