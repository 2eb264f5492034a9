package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// fallbackThemeCSS keeps exports usable when no theme file can be read.
const fallbackThemeCSS = ":root { --r-background-color: #fff; --r-main-color: #000; }"

// Service renders decks into self-contained presentation documents.
type Service struct {
	decks   ports.DeckRepository
	audio   ports.AudioCacheRepository
	blobs   ports.BlobStore
	themes  ports.ThemeProvider
	aligner ports.PlaybackAligner
	cfg     entities.ExportConfig
	format  entities.SlideFormat
}

// NewService wires the export service. format is the fallback slide format
// for decks that carry none.
func NewService(
	decks ports.DeckRepository,
	audio ports.AudioCacheRepository,
	blobs ports.BlobStore,
	themes ports.ThemeProvider,
	aligner ports.PlaybackAligner,
	cfg entities.ExportConfig,
	format entities.SlideFormat,
) *Service {
	if format.Validate() != nil {
		format = entities.DefaultSlideFormat
	}
	return &Service{
		decks:   decks,
		audio:   audio,
		blobs:   blobs,
		themes:  themes,
		aligner: aligner,
		cfg:     cfg,
		format:  format,
	}
}

// RevealHTML renders the plain presentation document.
func (s *Service) RevealHTML(ctx context.Context, projectID, theme string) ([]byte, error) {
	deck, doc, err := s.loadDeck(ctx, projectID)
	if err != nil {
		return nil, err
	}

	slides := ExtractRevealSlides(doc)
	format := s.deckFormat(doc)

	return renderPlainDocument(documentData{
		Title:     deckTitle(deck),
		ThemeCSS:  s.themeCSS(theme),
		Sections:  renderSections(slides, false),
		Width:     format.Width,
		Height:    format.Height,
		ProjectID: projectID,
	})
}

// VoiceHTML renders the narrated presentation document. Slides with cached
// narration get playback structure injected; slides without any stay plain.
func (s *Service) VoiceHTML(ctx context.Context, projectID, theme string) ([]byte, error) {
	deck, doc, err := s.loadDeck(ctx, projectID)
	if err != nil {
		return nil, err
	}

	slides := ExtractRevealSlides(doc)
	format := s.deckFormat(doc)

	cache, err := s.audio.Get(ctx, projectID)
	if err != nil {
		log.Printf("[WARN] [export] loading audio cache for %s: %v", projectID, err)
		cache = entities.AudioCache{}
	}

	for i := range slides {
		entries := cache[i]
		if len(entries) == 0 {
			continue
		}

		audio := make([]ports.AlignedAudio, 0, len(entries))
		for _, entry := range entries {
			audio = append(audio, ports.AlignedAudio{
				Src:        s.blobs.URL(entry.AudioFileRef),
				FileRef:    entry.AudioFileRef,
				TTSText:    entry.TTSText,
				DurationMS: entry.DurationMS,
			})
		}

		aligned, err := s.aligner.Align(slides[i].HTML, i, audio)
		if err != nil {
			log.Printf("[WARN] [export] aligning slide %d of %s: %v", i, projectID, err)
			continue
		}
		slides[i].HTML = aligned
	}

	return renderVoiceDocument(documentData{
		Title:          deckTitle(deck),
		ThemeCSS:       s.themeCSS(theme),
		Sections:       renderSections(slides, true),
		Width:          format.Width,
		Height:         format.Height,
		ProjectID:      projectID,
		AudioCacheJSON: s.audioCacheJSON(cache),
	})
}

func (s *Service) loadDeck(ctx context.Context, projectID string) (*entities.Deck, *entities.DocumentModel, error) {
	deck, err := s.decks.Get(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := deck.Document()
	if err != nil {
		return nil, nil, err
	}
	return deck, doc, nil
}

// themeCSS resolves the requested theme, falling back to the configured
// default and then to a minimal built-in.
func (s *Service) themeCSS(theme string) string {
	if theme == "" {
		theme = s.cfg.GetDefaultTheme()
	}
	if css, err := s.themes.CSS(theme); err == nil {
		return css
	}
	if css, err := s.themes.CSS(s.cfg.GetDefaultTheme()); err == nil {
		return css
	}
	return fallbackThemeCSS
}

func (s *Service) deckFormat(doc *entities.DocumentModel) entities.SlideFormat {
	for i := range doc.Pages {
		if id, ok := entities.ContainerFormatID(doc.Pages[i].Component.ToHTML()); ok {
			if format, err := entities.FormatByID(id); err == nil {
				return format
			}
		}
		break
	}
	return s.format
}

type audioCacheItem struct {
	TTSText  string `json:"ttsText"`
	AudioURL string `json:"audioUrl"`
	Duration int    `json:"duration"`
}

// audioCacheJSON serializes the cache metadata embedded in the voice
// document for player-side inspection.
func (s *Service) audioCacheJSON(cache entities.AudioCache) string {
	if len(cache) == 0 {
		return ""
	}

	out := make(map[int][]audioCacheItem, len(cache))
	for slideIdx, entries := range cache {
		items := make([]audioCacheItem, 0, len(entries))
		for _, entry := range entries {
			items = append(items, audioCacheItem{
				TTSText:  entry.TTSText,
				AudioURL: s.blobs.URL(entry.AudioFileRef),
				Duration: entry.DurationMS,
			})
		}
		out[slideIdx] = items
	}

	data, err := json.Marshal(out)
	if err != nil {
		log.Printf("[WARN] [export] encoding audio cache: %v", err)
		return ""
	}
	return string(data)
}

func deckTitle(deck *entities.Deck) string {
	if deck.Title != "" {
		return deck.Title
	}
	return "Presentation"
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename derives the download filename for an exported deck.
func Filename(title, suffix string) string {
	if title == "" {
		title = "Presentation"
	}
	safe := strings.ToLower(unsafeFilenameRe.ReplaceAllString(title, "_"))
	return fmt.Sprintf("%s_%s.html", safe, suffix)
}

// Ensure Service implements ports.ExportService
var _ ports.ExportService = (*Service)(nil)
