package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database at path and ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	createDecks := `
	CREATE TABLE IF NOT EXISTS decks (
		project_id TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		owner_id   TEXT NOT NULL,
		project    TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err := db.Exec(createDecks); err != nil {
		return fmt.Errorf("creating decks table: %w", err)
	}

	createDecksOwnerIndex := `CREATE INDEX IF NOT EXISTS idx_decks_owner ON decks(owner_id, updated_at);`
	if _, err := db.Exec(createDecksOwnerIndex); err != nil {
		return fmt.Errorf("creating decks owner index: %w", err)
	}

	createAudio := `
	CREATE TABLE IF NOT EXISTS tts_audio (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id     TEXT NOT NULL,
		slide_index    INTEGER NOT NULL,
		fragment_index INTEGER NOT NULL,
		tts_text       TEXT NOT NULL,
		audio_file_ref TEXT NOT NULL,
		duration_ms    INTEGER NOT NULL
	);`
	if _, err := db.Exec(createAudio); err != nil {
		return fmt.Errorf("creating tts_audio table: %w", err)
	}

	createAudioIndex := `CREATE INDEX IF NOT EXISTS idx_tts_audio_project ON tts_audio(project_id, slide_index, fragment_index);`
	if _, err := db.Exec(createAudioIndex); err != nil {
		return fmt.Errorf("creating tts_audio index: %w", err)
	}

	return nil
}
