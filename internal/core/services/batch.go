package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// Ensure BatchService implements the interface.
var _ driving.BatchRunner = (*BatchService)(nil)

// BatchService runs one processing session per document in a directory.
type BatchService struct {
	pipeline *Pipeline
	runs     driven.RunStore
	watcher  driven.DirectoryWatcher
	now      func() time.Time
}

// NewBatchService creates a batch runner over a session pipeline.
// The run store and watcher are optional.
func NewBatchService(pipeline *Pipeline, runs driven.RunStore, watcher driven.DirectoryWatcher) *BatchService {
	return &BatchService{
		pipeline: pipeline,
		runs:     runs,
		watcher:  watcher,
		now:      time.Now,
	}
}

// Run processes every accepted file directly inside sourceDir.
// A failed file is recorded in the report and never stops the rest.
func (b *BatchService) Run(
	ctx context.Context,
	sourceDir string,
	exts []string,
	opts domain.BatchOptions,
) (*domain.BatchReport, error) {
	// 1. Validate
	accepted, err := domain.ParseExtensions(exts)
	if err != nil {
		return nil, err
	}
	if err := opts.Session.Validate(); err != nil {
		return nil, err
	}
	docs, err := listDocuments(sourceDir, accepted)
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d file(s) in %s", len(docs), sourceDir)

	// 2. Create the batch root
	started := b.now()
	root, err := createUniqueDir(filepath.Join(sourceDir, domain.BatchRootName(started)))
	if err != nil {
		return nil, fmt.Errorf("create batch folder: %w", err)
	}
	report := &domain.BatchReport{
		Run: domain.BatchRun{
			ID:        uuid.New().String(),
			SourceDir: sourceDir,
			Root:      root,
			StartedAt: started,
		},
	}
	logger.Info("Created batch processing folder: %s", root)

	// 3. Reserve one folder per file before any session starts
	used := make(map[string]bool, len(docs))
	folders := make([]string, len(docs))
	for i, doc := range docs {
		folders[i] = reserveFolder(used, report.Run.FolderFor(doc))
	}

	// 4. Process, continuing past failures
	outcomes := make([]domain.FileOutcome, len(docs))
	var g errgroup.Group
	g.SetLimit(max(opts.Concurrency, 1))
	for i, doc := range docs {
		g.Go(func() error {
			outcomes[i] = b.processFile(ctx, doc, folders[i], opts.Session)
			return nil
		})
	}
	_ = g.Wait()

	report.Outcomes = outcomes
	report.FinishedAt = b.now()
	b.record(ctx, report)

	return report, nil
}

// Watch processes files created in the run's source directory after the
// initial scan, one at a time, until ctx is cancelled.
func (b *BatchService) Watch(
	ctx context.Context,
	report *domain.BatchReport,
	exts []string,
	opts domain.BatchOptions,
	onOutcome func(domain.FileOutcome),
) error {
	if b.watcher == nil {
		return errors.New("directory watcher not configured")
	}
	accepted, err := domain.ParseExtensions(exts)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(report.Outcomes))
	used := make(map[string]bool, len(report.Outcomes))
	for _, o := range report.Outcomes {
		seen[filepath.Clean(o.Input)] = true
		if o.Folder != "" {
			used[o.Folder] = true
		}
	}

	events, errs, err := b.watcher.Watch(ctx, report.Run.SourceDir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", report.Run.SourceDir, err)
	}
	logger.Info("Watching %s for new files", report.Run.SourceDir)

	defer b.record(context.WithoutCancel(ctx), report)

	for {
		select {
		case <-ctx.Done():
			return nil
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Watcher error: %v", werr)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			path = filepath.Clean(path)
			if seen[path] {
				continue
			}
			doc, ok := acceptedDocument(path, accepted)
			if !ok {
				continue
			}
			seen[path] = true

			folder := reserveFolder(used, report.Run.FolderFor(doc))
			outcome := b.processFile(ctx, doc, folder, opts.Session)
			report.Outcomes = append(report.Outcomes, outcome)
			report.FinishedAt = b.now()
			if onOutcome != nil {
				onOutcome(outcome)
			}
		}
	}
}

func (b *BatchService) processFile(
	ctx context.Context,
	doc domain.Document,
	folder string,
	opts domain.SessionOptions,
) domain.FileOutcome {
	logger.Section("Processing " + doc.Name())

	opts.Folder = folder
	opts.OutputPath = ""
	result, err := b.pipeline.runSession(ctx, doc.Path, opts)

	outcome := domain.FileOutcome{
		Input:     doc.Path,
		MediaType: doc.MediaType,
		Folder:    result.Folder.Path,
		Output:    result.Output,
		Chunks:    result.Chunks,
		Degraded:  result.Degraded,
		Err:       err,
		Duration:  result.Duration,
	}
	if err != nil {
		logger.Warn("%v", err)
	}
	return outcome
}

func (b *BatchService) record(ctx context.Context, report *domain.BatchReport) {
	if b.runs == nil {
		return
	}
	if err := b.runs.SaveRun(ctx, domain.RecordFromBatch(report)); err != nil {
		logger.Warn("Failed to record batch history: %v", err)
	}
}

// listDocuments returns the accepted regular files in dir, sorted by name.
func listDocuments(dir string, accepted []string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errInputNotFound(dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if doc, ok := acceptedDocument(filepath.Join(dir, entry.Name()), accepted); ok {
			docs = append(docs, doc)
		}
	}
	slices.SortFunc(docs, func(a, b domain.Document) int {
		return strings.Compare(a.Path, b.Path)
	})
	return docs, nil
}

// acceptedDocument classifies path if it is a visible regular file with an
// accepted extension.
func acceptedDocument(path string, accepted []string) (domain.Document, bool) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return domain.Document{}, false
	}
	doc, err := domain.NewDocument(path)
	if err != nil || !slices.Contains(accepted, doc.Ext()) {
		return domain.Document{}, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return domain.Document{}, false
	}
	return doc, true
}

// reserveFolder returns base, or base_2, base_3... if already taken.
func reserveFolder(used map[string]bool, base string) string {
	candidate := base
	for n := 2; used[candidate]; n++ {
		candidate = base + "_" + strconv.Itoa(n)
	}
	used[candidate] = true
	return candidate
}
