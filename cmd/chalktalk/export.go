package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chalktalk/studio/internal/adapters/secondary/export"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a deck as a self-contained reveal.js presentation",
	Long: `Render a stored deck into a single HTML file. With --voice the
export embeds the cached narration audio and an autoplay player;
without it the export is a plain presentation.

Example:
  chalktalk export 4f1f9c2a --theme black
  chalktalk export 4f1f9c2a --voice -o talk.html`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output file (default: derived from the deck title)")
	exportCmd.Flags().StringP("theme", "t", "", "Export theme (overrides config)")
	exportCmd.Flags().Bool("voice", false, "Include cached narration audio and the voice player")
}

func runExport(cmd *cobra.Command, args []string) error {
	projectID := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	application, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	owner, _ := cmd.Flags().GetString("owner")
	deck, err := application.decks.GetDeck(cmd.Context(), projectID, owner)
	if err != nil {
		return err
	}

	theme, _ := cmd.Flags().GetString("theme")
	voice, _ := cmd.Flags().GetBool("voice")

	var doc []byte
	suffix := "presentation"
	if voice {
		suffix = "voice_presentation"
		doc, err = application.export.VoiceHTML(cmd.Context(), projectID, theme)
	} else {
		doc, err = application.export.RevealHTML(cmd.Context(), projectID, theme)
	}
	if err != nil {
		return fmt.Errorf("rendering export: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = export.Filename(deck.Title, suffix)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, doc, 0o644); err != nil { // #nosec G306 - exported document
		return fmt.Errorf("writing export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", projectID, output)
	return nil
}
