package ports

import (
	"context"

	"github.com/chalktalk/studio/internal/domain/entities"
)

// DeckRepository persists decks keyed by project ID. At most one deck exists
// per project ID; Save upserts.
type DeckRepository interface {
	// Save inserts or updates the deck for its project ID
	Save(ctx context.Context, deck *entities.Deck) error

	// Get returns the deck for a project ID, or entities.ErrDeckNotFound
	Get(ctx context.Context, projectID string) (*entities.Deck, error)

	// ListByOwner returns all decks owned by a principal, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Deck, error)

	// Delete removes the deck for a project ID
	Delete(ctx context.Context, projectID string) error
}

// AudioCacheRepository persists generated narration metadata per project.
// Replace swaps a project's whole cache in one transaction; partial caches
// are never observable.
type AudioCacheRepository interface {
	// Replace atomically replaces the project's cache entries, returning the
	// refs of the audio blobs the displaced entries pointed at
	Replace(ctx context.Context, projectID string, cache entities.AudioCache) ([]string, error)

	// Get returns the project's cache, ordered by fragment index per slide
	Get(ctx context.Context, projectID string) (entities.AudioCache, error)

	// Clear removes the project's cache entries, returning the refs of the
	// audio blobs that backed them
	Clear(ctx context.Context, projectID string) ([]string, error)
}

// BlobStore persists audio content addressed by opaque refs.
type BlobStore interface {
	// Put stores a blob and returns its ref
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get returns the blob for a ref
	Get(ctx context.Context, ref string) ([]byte, error)

	// Delete removes the blob for a ref
	Delete(ctx context.Context, ref string) error

	// URL returns the serving URL for a ref
	URL(ref string) string
}
