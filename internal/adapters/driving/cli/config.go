package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change pdfocr settings.

Settings are resolved from built-in defaults, then the config file, then
PDFOCR_* environment variables, then command flags.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting in the config file",
	Long: `Stores a setting in the config file.

Keys:
  render.dpi                 Rendering resolution (default 200)
  render.quality             JPEG quality 1-100 (default 95)
  render.backend             pdftoppm, mutool or ghostscript
  chunk.pages_per_chunk      Pages per OCR chunk (default 10)
  ocr.max_attempts           Attempts per chunk (default 3)
  ocr.chunk_concurrency      Chunks in flight per document (default 1)
  ocr.requests_per_second    Drive request rate (default 8)
  google.credentials         OAuth client credentials file
  google.token               Stored OAuth token file
  batch.concurrency          Documents processed at once (default 1)
  batch.types                Comma-separated extensions for ocr-batch
  history.enabled            Record runs in the history database`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting from the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.title.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[Render]")
	cmd.Printf("  DPI: %d\n", settings.Render.DPI)
	cmd.Printf("  Quality: %d\n", settings.Render.Quality)
	cmd.Printf("  Backend: %s\n", settings.Render.Backend.Description())
	cmd.Println()

	cmd.Println("[OCR]")
	cmd.Printf("  Pages per chunk: %d\n", settings.PagesPerChunk)
	cmd.Printf("  Max attempts: %d\n", settings.MaxAttempts)
	cmd.Printf("  Chunk concurrency: %d\n", settings.ChunkConcurrency)
	cmd.Printf("  Requests per second: %d\n", settings.RequestsPerSec)
	cmd.Println()

	cmd.Println("[Google]")
	cmd.Printf("  Credentials: %s\n", settings.CredentialsPath)
	cmd.Printf("  Token: %s\n", settings.TokenPath)
	cmd.Println()

	cmd.Println("[Batch]")
	cmd.Printf("  Concurrency: %d\n", settings.BatchConcurrency)
	types := "all supported"
	if len(settings.BatchTypes) > 0 {
		types = strings.Join(settings.BatchTypes, ", ")
	}
	cmd.Printf("  Types: %s\n", types)
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Enabled: %t\n", settings.HistoryEnabled)

	stored := settingsService.Stored()
	if len(stored) > 0 {
		keys := make([]string, 0, len(stored))
		for k := range stored {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		cmd.Println()
		cmd.Println(st.muted.Render("Stored in " + settingsService.Path() + ":"))
		for _, k := range keys {
			cmd.Println(st.muted.Render(fmt.Sprintf("  %s = %v", k, stored[k])))
		}
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to remove setting: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
	return nil
}
