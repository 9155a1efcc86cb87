// Package cli implements the pdfocr command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired in by main.
var (
	converter       driving.Converter
	pipeline        driving.OCRPipeline
	batchRunner     driving.BatchRunner
	backendCatalog  driving.BackendCatalog
	historyService  driving.HistoryService
	settingsService driving.SettingsService
	authService     driving.AuthService
)

// Persistent flags.
var (
	verbose         bool
	credentialsPath string
	tokenPath       string
)

var rootCmd = &cobra.Command{
	Use:   "pdfocr",
	Short: "OCR scanned PDFs and images through Google Drive",
	Long: `pdfocr converts documents to image PDFs, splits them into chunks and
recovers their text with Google Drive OCR.

Run "pdfocr auth login" once to authorise access to Google Drive.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: applyGlobalFlags,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "", "Path to the OAuth client credentials file")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token", "", "Path to the stored OAuth token")
}

// Services holds the driving ports the commands call into.
type Services struct {
	Converter      driving.Converter
	Pipeline       driving.OCRPipeline
	BatchRunner    driving.BatchRunner
	BackendCatalog driving.BackendCatalog
	History        driving.HistoryService
	Settings       driving.SettingsService
	Auth           driving.AuthService
}

// SetServices installs the services used by every command.
func SetServices(s Services) {
	converter = s.Converter
	pipeline = s.Pipeline
	batchRunner = s.BatchRunner
	backendCatalog = s.BackendCatalog
	historyService = s.History
	settingsService = s.Settings
	authService = s.Auth
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// applyGlobalFlags applies the persistent flags before any command runs.
func applyGlobalFlags(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	logger.SetOutput(cmd.ErrOrStderr())

	if authService == nil || (credentialsPath == "" && tokenPath == "") {
		return nil
	}
	status := authService.Status()
	creds, token := status.CredentialsPath, status.TokenPath
	if credentialsPath != "" {
		creds = credentialsPath
	}
	if tokenPath != "" {
		token = tokenPath
	}
	authService.Configure(creds, token)
	return nil
}
