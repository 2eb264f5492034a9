package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// SQLiteAudioCacheRepository persists narration cache entries in SQLite.
// Replace swaps a project's whole cache inside one transaction so readers
// never observe a half-written cache.
type SQLiteAudioCacheRepository struct {
	db *sql.DB
}

// NewSQLiteAudioCacheRepository creates an audio cache repository.
func NewSQLiteAudioCacheRepository(db *sql.DB) *SQLiteAudioCacheRepository {
	return &SQLiteAudioCacheRepository{db: db}
}

// Replace atomically replaces the project's cache entries and returns the
// blob refs the displaced entries pointed at.
func (r *SQLiteAudioCacheRepository) Replace(ctx context.Context, projectID string, cache entities.AudioCache) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning cache replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	oldRefs, err := collectRefs(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tts_audio WHERE project_id = ?;`, projectID); err != nil {
		return nil, fmt.Errorf("clearing cache for %s: %w", projectID, err)
	}

	insert := `
	INSERT INTO tts_audio (project_id, slide_index, fragment_index, tts_text, audio_file_ref, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?);`

	slideIndices := make([]int, 0, len(cache))
	for idx := range cache {
		slideIndices = append(slideIndices, idx)
	}
	sort.Ints(slideIndices)

	for _, slideIdx := range slideIndices {
		for fragIdx, entry := range cache[slideIdx] {
			if _, err := tx.ExecContext(ctx, insert,
				projectID, slideIdx, fragIdx, entry.TTSText, entry.AudioFileRef, entry.DurationMS); err != nil {
				return nil, fmt.Errorf("inserting cache entry for slide %d: %w", slideIdx, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cache replace: %w", err)
	}
	return oldRefs, nil
}

// Get returns the project's cache with per-slide entries in fragment order.
func (r *SQLiteAudioCacheRepository) Get(ctx context.Context, projectID string) (entities.AudioCache, error) {
	query := `
	SELECT slide_index, tts_text, audio_file_ref, duration_ms
	FROM tts_audio WHERE project_id = ?
	ORDER BY slide_index, fragment_index;`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading cache for %s: %w", projectID, err)
	}
	defer func() { _ = rows.Close() }()

	cache := make(entities.AudioCache)
	for rows.Next() {
		var slideIdx int
		var entry entities.AudioCacheEntry
		if err := rows.Scan(&slideIdx, &entry.TTSText, &entry.AudioFileRef, &entry.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		cache[slideIdx] = append(cache[slideIdx], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache rows: %w", err)
	}
	return cache, nil
}

// Clear removes the project's cache entries, returning displaced blob refs.
func (r *SQLiteAudioCacheRepository) Clear(ctx context.Context, projectID string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning cache clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	refs, err := collectRefs(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tts_audio WHERE project_id = ?;`, projectID); err != nil {
		return nil, fmt.Errorf("clearing cache for %s: %w", projectID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cache clear: %w", err)
	}
	return refs, nil
}

func collectRefs(ctx context.Context, tx *sql.Tx, projectID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT audio_file_ref FROM tts_audio WHERE project_id = ?;`, projectID)
	if err != nil {
		return nil, fmt.Errorf("collecting blob refs for %s: %w", projectID, err)
	}
	defer func() { _ = rows.Close() }()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scanning blob ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// Ensure SQLiteAudioCacheRepository implements ports.AudioCacheRepository
var _ ports.AudioCacheRepository = (*SQLiteAudioCacheRepository)(nil)
