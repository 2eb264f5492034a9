package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// maxErrorBody caps how much of a provider error response gets read back.
const maxErrorBody = 2048

// ElevenLabsClient synthesizes speech through the ElevenLabs HTTP API.
type ElevenLabsClient struct {
	client *http.Client
	cfg    entities.TTSConfig
}

// NewElevenLabsClient creates a synthesizer client from TTS configuration.
func NewElevenLabsClient(cfg entities.TTSConfig) *ElevenLabsClient {
	return &ElevenLabsClient{
		client: &http.Client{Timeout: 60 * time.Second},
		cfg:    cfg,
	}
}

type synthesisRequest struct {
	Text                     string `json:"text"`
	ModelID                  string `json:"model_id"`
	OptimizeStreamingLatency int    `json:"optimize_streaming_latency"`
}

// Synthesize returns MP3 audio for the given text.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.New("missing ElevenLabs API key")
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s",
		c.cfg.GetEndpoint(), url.PathEscape(c.cfg.GetVoiceID()))

	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.cfg.GetModel(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building synthesis request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &entities.UpstreamError{Op: "elevenlabs request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &entities.UpstreamError{
			Op:  "elevenlabs synthesis",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entities.UpstreamError{Op: "reading synthesis response", Err: err}
	}
	if len(audio) == 0 {
		return nil, &entities.UpstreamError{Op: "elevenlabs synthesis", Err: errors.New("empty audio response")}
	}
	return audio, nil
}

// Ensure ElevenLabsClient implements ports.SpeechSynthesizer
var _ ports.SpeechSynthesizer = (*ElevenLabsClient)(nil)
