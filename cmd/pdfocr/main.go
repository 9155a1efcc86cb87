package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/pdfocr/internal/adapters/driven/auth"
	"github.com/custodia-labs/pdfocr/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfocr/internal/adapters/driven/pdf"
	"github.com/custodia-labs/pdfocr/internal/adapters/driven/render"
	"github.com/custodia-labs/pdfocr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfocr/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfocr/internal/adapters/driven/watch"
	"github.com/custodia-labs/pdfocr/internal/adapters/driving/cli"
	"github.com/custodia-labs/pdfocr/internal/connectors/google"
	"github.com/custodia-labs/pdfocr/internal/connectors/google/drive"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/core/services"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Configuration: defaults, then config.toml, then PDFOCR_* environment
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Rendering and PDF manipulation
	counter := pdf.NewPageCounter()
	selector := services.NewBackendSelector(render.All(counter)...)
	assembler := services.NewImageAssembler(pdf.NewImageWriter())
	chunker := services.NewChunker(counter, pdf.NewSplitter())

	// Google Drive OCR
	oauthClient := auth.NewGoogleOAuthClient(settings.CredentialsPath, settings.TokenPath)
	driveService, err := google.NewDriveService(ctx, google.NewTokenSource(ctx, oauthClient))
	if err != nil {
		return fmt.Errorf("create drive client: %w", err)
	}
	limiter := google.NewRateLimiter(google.RateLimitConfig{
		RequestsPerSecond: float64(settings.RequestsPerSec),
		BurstSize:         settings.RequestsPerSec,
	})
	ocr := drive.New(driveService, limiter)

	// History
	runs, closeRuns := openRunStore(settings.HistoryEnabled)
	defer closeRuns()

	// Sessions and batches
	processor := services.NewChunkProcessor(ocr, settings.MaxAttempts)
	pipeline := services.NewPipeline(selector, assembler, chunker, processor, counter)
	pipeline.SetChunkConcurrency(settings.ChunkConcurrency)
	var recorder driven.RunStore
	if settings.HistoryEnabled {
		recorder = runs
		pipeline.SetRunStore(recorder)
	}
	batch := services.NewBatchService(pipeline, recorder, watch.New(0))

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Converter:      services.NewConvertService(selector, assembler),
		Pipeline:       pipeline,
		BatchRunner:    batch,
		BackendCatalog: selector,
		History:        services.NewHistoryService(runs),
		Settings:       settingsService,
		Auth:           services.NewAuthService(oauthClient),
	})

	return cli.Execute(ctx)
}

// openRunStore opens the history database. Without history, or when the
// database cannot be opened, runs are kept in memory for this process only.
func openRunStore(enabled bool) (driven.RunStore, func()) {
	if !enabled {
		return memory.NewRunStore(), func() {}
	}
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("History disabled: %v", err)
		return memory.NewRunStore(), func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close history database: %v", err)
		}
	}
}
