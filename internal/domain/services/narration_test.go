package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/test/builders"
)

func narrationFixture(t *testing.T) (*NarrationService, *fakeCacheRepo, *fakeBlobStore, *fakeSynth) {
	t.Helper()

	deck := builders.NewDeckBuilder().
		WithProjectID("proj-1").
		WithOwner("alice").
		WithSlideCount(2).
		Build()

	extractor := &fakeExtractor{fragments: map[int][]entities.Fragment{
		0: {
			{SlideIndex: 0, FragmentIndex: 0, Text: "First point"},
			{SlideIndex: 0, FragmentIndex: 1, Text: "Second point"},
		},
		1: {
			{SlideIndex: 1, FragmentIndex: 0, Text: "Closing remarks"},
		},
	}}

	cache := newFakeCacheRepo()
	blobs := newFakeBlobStore()
	synth := newFakeSynth()

	svc := NewNarrationService(
		newFakeDeckRepo(deck), cache, blobs, synth,
		&fakeProber{duration: 1500}, extractor,
		entities.TTSConfig{BatchSize: 2},
	)
	return svc, cache, blobs, synth
}

func TestNarrationGenerate(t *testing.T) {
	t.Run("synthesizes every fragment and replaces the cache", func(t *testing.T) {
		svc, cacheRepo, blobs, synth := narrationFixture(t)

		summary, err := svc.Generate(context.Background(), "proj-1", "alice")
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Slides)
		assert.Equal(t, 3, summary.Fragments)
		assert.Len(t, synth.calls, 3)

		cache, err := cacheRepo.Get(context.Background(), "proj-1")
		require.NoError(t, err)
		require.Len(t, cache[0], 2)
		require.Len(t, cache[1], 1)
		assert.Equal(t, "First point", cache[0][0].TTSText)
		assert.Equal(t, "Second point", cache[0][1].TTSText)
		assert.Equal(t, 1500, cache[0][0].DurationMS)
		assert.Contains(t, cache[0][0].AudioFileRef, "proj-1/")
		assert.Contains(t, cache[0][0].AudioFileRef, "slide-0-fragment-0.mp3")

		// Blobs exist for every entry
		for _, entries := range cache {
			for _, entry := range entries {
				_, err := blobs.Get(context.Background(), entry.AudioFileRef)
				assert.NoError(t, err)
			}
		}
	})

	t.Run("any synthesis failure fails the run and keeps the old cache", func(t *testing.T) {
		svc, cacheRepo, blobs, synth := narrationFixture(t)

		// Seed a prior cache
		_, err := svc.Generate(context.Background(), "proj-1", "alice")
		require.NoError(t, err)
		before, err := cacheRepo.Get(context.Background(), "proj-1")
		require.NoError(t, err)

		synth.fail["Second point"] = errors.New("quota exceeded")

		_, err = svc.Generate(context.Background(), "proj-1", "alice")
		require.Error(t, err)
		var upstream *entities.UpstreamError
		assert.ErrorAs(t, err, &upstream)

		after, err := cacheRepo.Get(context.Background(), "proj-1")
		require.NoError(t, err)
		assert.Equal(t, before, after)

		// The failed run's partial blobs were discarded; the old cache's
		// blobs survive.
		for _, entries := range after {
			for _, entry := range entries {
				_, err := blobs.Get(context.Background(), entry.AudioFileRef)
				assert.NoError(t, err)
			}
		}
	})

	t.Run("regeneration discards the displaced blobs", func(t *testing.T) {
		svc, _, blobs, _ := narrationFixture(t)

		_, err := svc.Generate(context.Background(), "proj-1", "alice")
		require.NoError(t, err)
		_, err = svc.Generate(context.Background(), "proj-1", "alice")
		require.NoError(t, err)

		// Same refs were rewritten, so the discard list names them
		assert.NotEmpty(t, blobs.deleted)
	})

	t.Run("probe failure falls back to the default duration", func(t *testing.T) {
		deck := builders.NewDeckBuilder().
			WithProjectID("proj-1").WithOwner("alice").WithSlideCount(1).Build()
		extractor := &fakeExtractor{fragments: map[int][]entities.Fragment{
			0: {{SlideIndex: 0, FragmentIndex: 0, Text: "Only line"}},
		}}
		cacheRepo := newFakeCacheRepo()

		svc := NewNarrationService(
			newFakeDeckRepo(deck), cacheRepo, newFakeBlobStore(), newFakeSynth(),
			&fakeProber{err: errors.New("bad mp3")}, extractor,
			entities.TTSConfig{},
		)

		_, err := svc.Generate(context.Background(), "proj-1", "alice")
		require.NoError(t, err)

		cache, err := cacheRepo.Get(context.Background(), "proj-1")
		require.NoError(t, err)
		assert.Equal(t, 1000, cache[0][0].DurationMS)
	})

	t.Run("ownership is enforced", func(t *testing.T) {
		svc, _, _, _ := narrationFixture(t)
		_, err := svc.Generate(context.Background(), "proj-1", "mallory")
		assert.ErrorIs(t, err, entities.ErrUnauthorized)
	})

	t.Run("unknown project", func(t *testing.T) {
		svc, _, _, _ := narrationFixture(t)
		_, err := svc.Generate(context.Background(), "nope", "alice")
		assert.ErrorIs(t, err, entities.ErrDeckNotFound)
	})
}

func TestNarrationClear(t *testing.T) {
	svc, _, blobs, _ := narrationFixture(t)

	_, err := svc.Generate(context.Background(), "proj-1", "alice")
	require.NoError(t, err)

	cleared, err := svc.Clear(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 3, cleared)

	cache, err := svc.Cache(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Empty(t, cache)

	// All blobs gone
	assert.Len(t, blobs.deleted, 3)
}
