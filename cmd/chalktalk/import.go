package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.md>",
	Short: "Import a markdown document as a new deck",
	Long: `Create a deck from a markdown file. Slides are separated by ---
rules; an optional YAML frontmatter block may set the deck title.

Example:
  chalktalk import talk.md`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("accessing markdown file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}

	content, err := os.ReadFile(path) // #nosec G304 - path validated above
	if err != nil {
		return fmt.Errorf("reading markdown file: %w", err)
	}

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
	deck, err := application.importer.Import(cmd.Context(), content, owner)
	if err != nil {
		return fmt.Errorf("importing markdown: %w", err)
	}
	if err := application.decks.SaveDeck(cmd.Context(), deck); err != nil {
		return fmt.Errorf("saving deck: %w", err)
	}

	doc, err := deck.Document()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s (%d slides)\n",
		deck.Title, deck.ProjectID, doc.PageCount())
	return nil
}
