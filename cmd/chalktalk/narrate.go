package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// narrateCmd represents the narrate command
var narrateCmd = &cobra.Command{
	Use:   "narrate <project-id>",
	Short: "Generate narration audio for a deck",
	Long: `Extract narration fragments from the deck's slides, synthesize
audio for each fragment, and replace the deck's narration cache. The
run is all-or-nothing: any synthesis failure leaves the existing
cache untouched.

Example:
  chalktalk narrate 4f1f9c2a
  chalktalk narrate 4f1f9c2a --clear`,
	Args: cobra.ExactArgs(1),
	RunE: runNarrate,
}

func init() {
	rootCmd.AddCommand(narrateCmd)

	narrateCmd.Flags().Bool("clear", false, "Clear the cached narration instead of generating")
	narrateCmd.Flags().String("tts-key", "", "Speech synthesis API key (overrides config)")
	narrateCmd.Flags().String("voice", "", "Speech synthesis voice ID (overrides config)")
}

func runNarrate(cmd *cobra.Command, args []string) error {
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

	if clear, _ := cmd.Flags().GetBool("clear"); clear {
		cleared, err := application.narration.Clear(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached fragments for %s\n", cleared, projectID)
		return nil
	}

	owner, _ := cmd.Flags().GetString("owner")
	summary, err := application.narration.Generate(cmd.Context(), projectID, owner)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated narration for %d slides (%d fragments)\n",
		summary.Slides, summary.Fragments)
	return nil
}
