package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	chttp "github.com/chalktalk/studio/internal/adapters/primary/http"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the studio server",
	Long: `Start the HTTP server exposing the deck API, the assistant tool
endpoint, narration generation, presentation export, and a WebSocket
channel for session events.

Example:
  chalktalk serve
  chalktalk serve --port 8080 --db /var/lib/chalktalk/decks.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().String("db", "", "Deck database path (overrides config)")
	serveCmd.Flags().String("audio-dir", "", "Narration audio directory (overrides config)")
	serveCmd.Flags().StringP("theme", "t", "", "Default export theme (overrides config)")
	serveCmd.Flags().String("tts-key", "", "Speech synthesis API key (overrides config)")
	serveCmd.Flags().String("voice", "", "Speech synthesis voice ID (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	application, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("[WARN] [serve] closing application: %v", err)
		}
	}()

	server := chttp.NewServer(cfg.Server, cfg.Logging, chttp.Services{
		Tools:     application.tools,
		Decks:     application.decks,
		Narration: application.narration,
		Export:    application.export,
		Importer:  application.importer,
		Sessions:  application.sessions,
		Editor:    application.editor,
		Themes:    application.themes,
		Blobs:     application.blobs,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		return server.Stop(context.Background())
	}
}
