package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// SQLiteDeckRepository persists decks in SQLite.
type SQLiteDeckRepository struct {
	db *sql.DB
}

// NewSQLiteDeckRepository creates a deck repository over an open database.
func NewSQLiteDeckRepository(db *sql.DB) *SQLiteDeckRepository {
	return &SQLiteDeckRepository{db: db}
}

// Save inserts or updates the deck for its project ID.
func (r *SQLiteDeckRepository) Save(ctx context.Context, deck *entities.Deck) error {
	if deck == nil {
		return errors.New("deck cannot be nil")
	}

	query := `
	INSERT INTO decks (project_id, title, owner_id, project, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(project_id) DO UPDATE SET
		title = excluded.title,
		owner_id = excluded.owner_id,
		project = excluded.project,
		updated_at = excluded.updated_at;`

	_, err := r.db.ExecContext(ctx, query,
		deck.ProjectID, deck.Title, deck.OwnerID, deck.Project, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving deck %s: %w", deck.ProjectID, err)
	}
	return nil
}

// Get returns the deck for a project ID.
func (r *SQLiteDeckRepository) Get(ctx context.Context, projectID string) (*entities.Deck, error) {
	query := `
	SELECT project_id, title, owner_id, project, created_at, updated_at
	FROM decks WHERE project_id = ?;`

	var deck entities.Deck
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&deck.ProjectID, &deck.Title, &deck.OwnerID, &deck.Project, &deck.CreatedAt, &deck.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading deck %s: %w", projectID, err)
	}
	return &deck, nil
}

// ListByOwner returns the owner's decks, newest first.
func (r *SQLiteDeckRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Deck, error) {
	query := `
	SELECT project_id, title, owner_id, project, created_at, updated_at
	FROM decks WHERE owner_id = ? ORDER BY updated_at DESC;`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing decks for %s: %w", ownerID, err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*entities.Deck
	for rows.Next() {
		var deck entities.Deck
		if err := rows.Scan(&deck.ProjectID, &deck.Title, &deck.OwnerID, &deck.Project,
			&deck.CreatedAt, &deck.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning deck row: %w", err)
		}
		decks = append(decks, &deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deck rows: %w", err)
	}
	return decks, nil
}

// Delete removes the deck for a project ID.
func (r *SQLiteDeckRepository) Delete(ctx context.Context, projectID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE project_id = ?;`, projectID)
	if err != nil {
		return fmt.Errorf("deleting deck %s: %w", projectID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return entities.ErrDeckNotFound
	}
	return nil
}

// Ensure SQLiteDeckRepository implements ports.DeckRepository
var _ ports.DeckRepository = (*SQLiteDeckRepository)(nil)
