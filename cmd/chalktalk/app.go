package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chalktalk/studio/internal/adapters/secondary/config"
	"github.com/chalktalk/studio/internal/adapters/secondary/editor"
	"github.com/chalktalk/studio/internal/adapters/secondary/export"
	"github.com/chalktalk/studio/internal/adapters/secondary/narration"
	"github.com/chalktalk/studio/internal/adapters/secondary/parser"
	"github.com/chalktalk/studio/internal/adapters/secondary/speech"
	"github.com/chalktalk/studio/internal/adapters/secondary/storage"
	"github.com/chalktalk/studio/internal/adapters/secondary/theme"
	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
	"github.com/chalktalk/studio/internal/domain/services"
)

// app holds the wired application services shared across commands.
type app struct {
	config *entities.Config
	db     *sql.DB

	decks     *services.DeckService
	tools     *services.ToolService
	narration *services.NarrationService
	sessions  *services.SessionSyncService
	editor    *services.EditorSessionService
	export    *export.Service
	importer  *parser.MarkdownImporter
	themes    *theme.Provider
	blobs     *storage.FSBlobStore
}

// loadConfig loads configuration with the full precedence chain:
// defaults, global config, local config, environment, CLI flags.
func loadConfig(cmd *cobra.Command) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	merger := config.NewConfigMerger()
	svc := services.NewConfigService(loader, merger)

	flags := map[string]interface{}{}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		flags["port"] = port
	}
	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		flags["host"] = host
	}
	if cmd.Flags().Changed("db") {
		db, _ := cmd.Flags().GetString("db")
		flags["db"] = db
	}
	if cmd.Flags().Changed("audio-dir") {
		dir, _ := cmd.Flags().GetString("audio-dir")
		flags["audio-dir"] = dir
	}
	if cmd.Flags().Changed("theme") {
		name, _ := cmd.Flags().GetString("theme")
		flags["theme"] = name
	}
	if cmd.Flags().Changed("tts-key") {
		key, _ := cmd.Flags().GetString("tts-key")
		flags["tts-key"] = key
	}
	if cmd.Flags().Changed("voice") {
		voice, _ := cmd.Flags().GetString("voice")
		flags["voice"] = voice
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		flags["verbose"] = true
	}

	return svc.LoadConfig(cmd.Context(), ".", flags)
}

// buildApp opens storage and wires the domain services.
func buildApp(cfg *entities.Config) (*app, error) {
	db, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening deck database: %w", err)
	}

	blobs, err := storage.NewFSBlobStore(cfg.Storage.AudioDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening audio store: %w", err)
	}

	deckRepo := storage.NewSQLiteDeckRepository(db)
	cacheRepo := storage.NewSQLiteAudioCacheRepository(db)
	themes := theme.NewProvider(cfg.Export.ThemesDir)
	aligner := narration.NewFragmentAligner(cfg.TTS)
	extractor := narration.NewHTMLFragmentExtractor()
	synth := speech.NewElevenLabsClient(cfg.TTS)
	prober := speech.NewMP3DurationProber()

	format := entities.DefaultSlideFormat

	decks := services.NewDeckService(deckRepo, format)
	sessions := services.NewSessionSyncService()

	return &app{
		config: cfg,
		db:     db,
		decks:  decks,
		tools:  services.NewToolService(deckRepo, format),
		narration: services.NewNarrationService(
			deckRepo, cacheRepo, blobs, synth, prober, extractor, cfg.TTS,
		),
		sessions: sessions,
		editor: services.NewEditorSessionService(decks, sessions, func() ports.EditorEngine {
			return editor.NewEngine()
		}),
		export: export.NewService(
			deckRepo, cacheRepo, blobs, themes, aligner, cfg.Export, format,
		),
		importer: parser.NewMarkdownImporter(format),
		themes:   themes,
		blobs:    blobs,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	a.sessions.Stop()
	return a.db.Close()
}
