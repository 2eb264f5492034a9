package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// NarrationService orchestrates narration generation: it re-derives fragments
// from the deck's current content, synthesizes audio in bounded-size parallel
// batches, and atomically swaps the project's audio cache. Any fragment
// failure fails the whole run; the prior cache is only replaced after every
// fragment has audio.
type NarrationService struct {
	decks     ports.DeckRepository
	cache     ports.AudioCacheRepository
	blobs     ports.BlobStore
	synth     ports.SpeechSynthesizer
	prober    ports.DurationProber
	extractor ports.FragmentExtractor
	cfg       entities.TTSConfig
}

// NewNarrationService wires the narration orchestrator.
func NewNarrationService(
	decks ports.DeckRepository,
	cache ports.AudioCacheRepository,
	blobs ports.BlobStore,
	synth ports.SpeechSynthesizer,
	prober ports.DurationProber,
	extractor ports.FragmentExtractor,
	cfg entities.TTSConfig,
) *NarrationService {
	return &NarrationService{
		decks:     decks,
		cache:     cache,
		blobs:     blobs,
		synth:     synth,
		prober:    prober,
		extractor: extractor,
		cfg:       cfg,
	}
}

type generatedFragment struct {
	slideIndex int
	entry      entities.AudioCacheEntry
}

// Generate runs a full narration generation pass for the project.
func (s *NarrationService) Generate(ctx context.Context, projectID, ownerID string) (*ports.GenerationSummary, error) {
	deck, err := s.decks.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if deck.OwnerID != "" && ownerID != "" && deck.OwnerID != ownerID {
		return nil, entities.ErrUnauthorized
	}

	doc, err := deck.Document()
	if err != nil {
		return nil, err
	}

	var tasks []entities.Fragment
	for i := range doc.Pages {
		raw := doc.Pages[i].Component.ToHTML()
		cleaned, _ := entities.ExtractStyleBlocks(raw)
		frags, err := s.extractor.Extract(entities.UnwrapSlideContent(cleaned), i)
		if err != nil {
			return nil, fmt.Errorf("extracting narration from slide %d: %w", i, err)
		}
		tasks = append(tasks, frags...)
	}

	results := make([]generatedFragment, len(tasks))
	written := make([]string, len(tasks))

	// Each run writes under its own prefix so discarding a failed run can
	// never touch blobs the live cache still references.
	runID := uuid.NewString()

	batch := s.cfg.GetBatchSize()
	for start := 0; start < len(tasks); start += batch {
		end := start + batch
		if end > len(tasks) {
			end = len(tasks)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			task := tasks[i]
			g.Go(func() error {
				audio, err := s.synth.Synthesize(gctx, task.Text)
				if err != nil {
					return &entities.UpstreamError{
						Op:  fmt.Sprintf("synthesizing slide %d fragment %d", task.SlideIndex, task.FragmentIndex),
						Err: err,
					}
				}

				dur, err := s.prober.DurationMS(audio)
				if err != nil || dur <= 0 {
					log.Printf("[WARN] [narration] probing duration for slide %d fragment %d: %v",
						task.SlideIndex, task.FragmentIndex, err)
					dur = s.cfg.GetDefaultDurationMS()
				}

				name := fmt.Sprintf("%s/%s/slide-%d-fragment-%d.mp3", projectID, runID, task.SlideIndex, task.FragmentIndex)
				ref, err := s.blobs.Put(gctx, name, audio)
				if err != nil {
					return fmt.Errorf("storing audio for slide %d fragment %d: %w",
						task.SlideIndex, task.FragmentIndex, err)
				}

				written[i] = ref
				results[i] = generatedFragment{
					slideIndex: task.SlideIndex,
					entry: entities.AudioCacheEntry{
						TTSText:      task.Text,
						AudioFileRef: ref,
						DurationMS:   dur,
					},
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			s.discardBlobs(written)
			return nil, fmt.Errorf("narration generation: %w", err)
		}
	}

	// Results retain extraction order, so per-slide entries land in fragment
	// order.
	cache := make(entities.AudioCache)
	for _, r := range results {
		cache[r.slideIndex] = append(cache[r.slideIndex], r.entry)
	}

	oldRefs, err := s.cache.Replace(ctx, projectID, cache)
	if err != nil {
		s.discardBlobs(written)
		return nil, fmt.Errorf("replacing audio cache: %w", err)
	}
	s.discardBlobs(oldRefs)

	return &ports.GenerationSummary{
		Slides:    len(cache),
		Fragments: len(tasks),
	}, nil
}

// Cache returns the project's cached narration.
func (s *NarrationService) Cache(ctx context.Context, projectID string) (entities.AudioCache, error) {
	return s.cache.Get(ctx, projectID)
}

// Clear drops the project's cache and the blobs behind it, returning how many
// entries were removed.
func (s *NarrationService) Clear(ctx context.Context, projectID string) (int, error) {
	refs, err := s.cache.Clear(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("clearing audio cache: %w", err)
	}
	s.discardBlobs(refs)
	return len(refs), nil
}

// discardBlobs best-effort deletes audio blobs that no cache entry points at
// anymore. Orphaned blobs are a cost, not a correctness problem.
func (s *NarrationService) discardBlobs(refs []string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := s.blobs.Delete(context.Background(), ref); err != nil {
			log.Printf("[WARN] [narration] deleting blob %s: %v", ref, err)
		}
	}
}

// Ensure NarrationService implements ports.NarrationService
var _ ports.NarrationService = (*NarrationService)(nil)
