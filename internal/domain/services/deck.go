package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// welcomeSlideHTML is the authored content of the slide every new deck starts
// with, before container wrapping.
const welcomeSlideHTML = `<section style="display:flex;flex-direction:column;align-items:center;justify-content:center;height:100%;font-family:system-ui,sans-serif;text-align:center">
  <h1 style="font-size:72px;margin-bottom:24px">Welcome to your presentation</h1>
  <p style="font-size:32px;color:#6b7280">Ask the assistant to create your first slide, or start editing this one.</p>
</section>`

// DeckService implements deck lifecycle operations over a repository. Every
// operation targeting an existing deck verifies the caller owns it.
type DeckService struct {
	repo   ports.DeckRepository
	format entities.SlideFormat
}

// NewDeckService creates a deck service using the given slide format for new
// decks.
func NewDeckService(repo ports.DeckRepository, format entities.SlideFormat) *DeckService {
	if format.Validate() != nil {
		format = entities.DefaultSlideFormat
	}
	return &DeckService{
		repo:   repo,
		format: format,
	}
}

// CreateDeck creates and persists a deck seeded with the welcome slide.
func (s *DeckService) CreateDeck(ctx context.Context, ownerID, title string) (*entities.Deck, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, errors.New("owner ID is required")
	}
	if strings.TrimSpace(title) == "" {
		title = "Untitled presentation"
	}

	now := time.Now().UTC()
	deck := &entities.Deck{
		ProjectID: uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc := &entities.DocumentModel{Pages: []entities.Page{{
		Name:      "Slide 1",
		Component: entities.NewHTMLContent(entities.WrapSlideContent(welcomeSlideHTML, s.format, nil)),
	}}}
	if err := deck.SetDocument(doc); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, deck); err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}
	return deck, nil
}

// SaveDeck upserts a deck. Overwriting a deck owned by someone else is
// rejected.
func (s *DeckService) SaveDeck(ctx context.Context, deck *entities.Deck) error {
	if deck == nil {
		return errors.New("deck cannot be nil")
	}
	if err := deck.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, deck.ProjectID)
	switch {
	case err == nil:
		if existing.OwnerID != "" && existing.OwnerID != deck.OwnerID {
			return entities.ErrUnauthorized
		}
		deck.CreatedAt = existing.CreatedAt
	case errors.Is(err, entities.ErrDeckNotFound):
		if deck.CreatedAt.IsZero() {
			deck.CreatedAt = time.Now().UTC()
		}
	default:
		return fmt.Errorf("loading deck %s: %w", deck.ProjectID, err)
	}

	deck.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, deck); err != nil {
		return fmt.Errorf("saving deck %s: %w", deck.ProjectID, err)
	}
	return nil
}

// GetDeck returns the deck if the caller owns it.
func (s *DeckService) GetDeck(ctx context.Context, projectID, ownerID string) (*entities.Deck, error) {
	deck, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if deck.OwnerID != "" && ownerID != "" && deck.OwnerID != ownerID {
		return nil, entities.ErrUnauthorized
	}
	return deck, nil
}

// ListDecks returns the caller's decks, newest first.
func (s *DeckService) ListDecks(ctx context.Context, ownerID string) ([]*entities.Deck, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, errors.New("owner ID is required")
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// RenameDeck updates an owned deck's title.
func (s *DeckService) RenameDeck(ctx context.Context, projectID, ownerID, title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be empty")
	}
	deck, err := s.GetDeck(ctx, projectID, ownerID)
	if err != nil {
		return err
	}
	deck.Title = title
	deck.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, deck); err != nil {
		return fmt.Errorf("renaming deck %s: %w", projectID, err)
	}
	return nil
}

// DeleteDeck removes an owned deck.
func (s *DeckService) DeleteDeck(ctx context.Context, projectID, ownerID string) error {
	if _, err := s.GetDeck(ctx, projectID, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, projectID)
}

// DeleteDecks removes owned decks in bulk. Decks that are missing or owned by
// someone else are skipped; the count of removed decks comes back.
func (s *DeckService) DeleteDecks(ctx context.Context, projectIDs []string, ownerID string) (int, error) {
	deleted := 0
	for _, id := range projectIDs {
		err := s.DeleteDeck(ctx, id, ownerID)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, entities.ErrDeckNotFound), errors.Is(err, entities.ErrUnauthorized):
			log.Printf("[WARN] [decks] bulk delete skipping %s: %v", id, err)
		default:
			return deleted, err
		}
	}
	return deleted, nil
}

// DuplicateDeck copies an owned deck's content under a fresh project ID.
func (s *DeckService) DuplicateDeck(ctx context.Context, projectID, ownerID string) (*entities.Deck, error) {
	src, err := s.GetDeck(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copy := &entities.Deck{
		ProjectID: uuid.NewString(),
		Title:     src.Title + " (copy)",
		OwnerID:   ownerID,
		Project:   src.Project,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, copy); err != nil {
		return nil, fmt.Errorf("duplicating deck %s: %w", projectID, err)
	}
	return copy, nil
}

// Ensure DeckService implements ports.DeckService
var _ ports.DeckService = (*DeckService)(nil)
