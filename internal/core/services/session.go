package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.OCRPipeline = (*Pipeline)(nil)

// Pipeline runs processing sessions: normalise, split, OCR each chunk and
// combine the text inside a dedicated processing folder.
type Pipeline struct {
	selector  *BackendSelector
	assembler *ImageAssembler
	chunker   *Chunker
	processor *ChunkProcessor
	counter   driven.PageCounter
	runs      driven.RunStore

	chunkConcurrency int
	now              func() time.Time
}

// NewPipeline creates a session pipeline. Chunks are processed one at a time
// until SetChunkConcurrency says otherwise.
func NewPipeline(
	selector *BackendSelector,
	assembler *ImageAssembler,
	chunker *Chunker,
	processor *ChunkProcessor,
	counter driven.PageCounter,
) *Pipeline {
	return &Pipeline{
		selector:         selector,
		assembler:        assembler,
		chunker:          chunker,
		processor:        processor,
		counter:          counter,
		chunkConcurrency: domain.DefaultChunkConcurrency,
		now:              time.Now,
	}
}

// SetRunStore enables run history. A nil store disables it.
func (p *Pipeline) SetRunStore(runs driven.RunStore) {
	p.runs = runs
}

// SetChunkConcurrency bounds how many chunks of one document are in flight.
func (p *Pipeline) SetChunkConcurrency(n int) {
	p.chunkConcurrency = max(n, 1)
}

// Run processes one input document and records the run in history.
func (p *Pipeline) Run(ctx context.Context, input string, opts domain.SessionOptions) (*domain.SessionResult, error) {
	result, err := p.runSession(ctx, input, opts)
	if p.runs != nil && result.Folder.Path != "" {
		if serr := p.runs.SaveRun(ctx, domain.RecordFromSession(result, err)); serr != nil {
			logger.Warn("Failed to record run history: %v", serr)
		}
	}
	return result, err
}

// session tracks the state machine of one run.
type session struct {
	result *domain.SessionResult
}

func (s *session) enter(next domain.SessionState) {
	if !s.result.State.CanTransition(next) {
		panic(fmt.Sprintf("invalid session transition %s -> %s", s.result.State, next))
	}
	s.result.State = next
	s.result.Trace = append(s.result.Trace, next)
	logger.Debug("Session %s: %s", s.result.RunID, next)
}

// fail moves the session to Failed and attributes err to stage.
func (s *session) fail(stage domain.Stage, err error) error {
	s.enter(domain.SessionFailed)
	logger.Warn("Processing folder kept for inspection: %s", s.result.Folder.Path)
	return &domain.StageError{Stage: stage, Path: s.result.Input.Path, Err: err}
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *Pipeline) runSession(ctx context.Context, input string, opts domain.SessionOptions) (*domain.SessionResult, error) {
	started := p.now()
	result := &domain.SessionResult{
		RunID:     uuid.New().String(),
		Input:     domain.Document{Path: input},
		StartedAt: started,
	}
	defer func() {
		result.Duration = p.now().Sub(started)
	}()

	// 1. Intake: nothing is written until the input is known to be usable
	logger.Section("Intake")
	doc, err := p.intake(ctx, input, opts)
	if err != nil {
		result.State = domain.SessionFailed
		result.Trace = []domain.SessionState{domain.SessionFailed}
		return result, &domain.StageError{Stage: domain.StageIntake, Path: input, Err: err}
	}
	result.Input = doc

	// 2. Created: allocate the folder and copy the original in
	base := opts.Folder
	if base == "" {
		base = filepath.Join(doc.Dir(), domain.ProcessingFolderName(doc.Stem()))
	}
	dir, err := createUniqueDir(base)
	if err != nil {
		result.State = domain.SessionFailed
		result.Trace = []domain.SessionState{domain.SessionFailed}
		return result, &domain.StageError{Stage: domain.StageIntake, Path: input, Err: fmt.Errorf("create processing folder: %w", err)}
	}
	folder := domain.ProcessingFolder{Path: dir, Original: filepath.Join(dir, doc.Name())}
	result.Folder = folder
	result.Trace = []domain.SessionState{domain.SessionCreated}
	s := &session{result: result}
	logger.Info("Created processing folder: %s", dir)

	if err := copyFile(doc.Path, folder.Original); err != nil {
		return result, s.fail(domain.StageIntake, fmt.Errorf("copy original: %w", err))
	}
	original := doc.WithPath(folder.Original)

	// 3. Normalizing: failure falls back to the original
	work := original
	if doc.MediaType.IsPDF() && !opts.SkipNormalize {
		s.enter(domain.SessionNormalizing)
		logger.Section("Normalizing")
		normalized, kind, nerr := p.normalize(ctx, original, folder, opts.Render)
		switch {
		case nerr == nil:
			work = normalized
			result.Backend = kind
		case ctx.Err() != nil:
			return result, s.fail(domain.StageRender, nerr)
		default:
			logger.Warn("Could not convert %s to an image PDF: %v", doc.Name(), nerr)
			logger.Warn("Proceeding with the original PDF")
			result.Degraded = true
		}
	}

	// 4. Splitting
	s.enter(domain.SessionSplitting)
	logger.Section("Splitting")
	var chunks []domain.Chunk
	if doc.MediaType.IsPDF() {
		chunks, err = p.chunker.SplitNamed(ctx, work, doc.Stem(), opts.PagesPerChunk, folder.Path)
		if err != nil {
			return result, s.fail(domain.StageSplit, err)
		}
	} else {
		chunks = []domain.Chunk{SingleChunk(original)}
	}
	result.Chunks = len(chunks)

	// 5. ChunkProcessing: any permanent failure discards every result
	s.enter(domain.SessionChunkProcessing)
	logger.Section("OCR")
	texts, err := p.processChunks(ctx, chunks)
	if err != nil {
		return result, s.fail(domain.StageOCR, err)
	}

	// 6. Combining
	s.enter(domain.SessionCombining)
	logger.Section("Combining")
	text, err := Combine(texts)
	if err != nil {
		return result, s.fail(domain.StageCombine, err)
	}
	output := opts.OutputPath
	if output == "" {
		output = folder.Join(domain.OCRTextName(doc.Stem()))
	} else if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return result, s.fail(domain.StageCombine, fmt.Errorf("create output directory: %w", err))
	}
	if err := writeFileAtomic(output, []byte(text)); err != nil {
		return result, s.fail(domain.StageCombine, fmt.Errorf("write %s: %w", output, err))
	}
	result.Output = output

	// 7. Finalized: cleanup problems are logged, never returned
	p.finalize(doc.Path, folder, chunks, opts)
	s.enter(domain.SessionFinalized)
	logger.Info("OCR text written to %s", output)

	return result, nil
}

// intake validates the options and inspects the input without writing anything.
func (p *Pipeline) intake(ctx context.Context, input string, opts domain.SessionOptions) (domain.Document, error) {
	if err := opts.Validate(); err != nil {
		return domain.Document{}, err
	}
	if _, err := statInput(input); err != nil {
		return domain.Document{}, err
	}
	doc, err := domain.NewDocument(input)
	if err != nil {
		return domain.Document{}, err
	}
	if !doc.MediaType.IsPDF() {
		return doc, nil
	}

	pages, err := p.counter.PageCount(ctx, input)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, input, err)
	}
	if pages < 1 {
		return domain.Document{}, fmt.Errorf("%w: %s has no pages", domain.ErrCorruptDocument, input)
	}
	logger.Info("%s: %d pages", doc.Name(), pages)
	return doc.WithPageCount(pages), nil
}

func (p *Pipeline) normalize(
	ctx context.Context,
	original domain.Document,
	folder domain.ProcessingFolder,
	render domain.RenderOptions,
) (domain.Document, domain.BackendKind, error) {
	backend, err := p.selector.Select(render.Backend)
	if err != nil {
		return domain.Document{}, "", err
	}
	out, err := p.assembler.Normalize(ctx, original, domain.NormalizeOptions{
		DPI:        render.DPI,
		Quality:    render.Quality,
		OutputPath: folder.Join(domain.ImagePDFName(original.Stem())),
	}, backend)
	if err != nil {
		return domain.Document{}, "", err
	}
	return out, backend.Kind(), nil
}

// processChunks runs every chunk through the OCR service and returns the
// texts indexed by ordinal. The first permanent failure cancels the rest.
func (p *Pipeline) processChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.RecoveredText, error) {
	texts := make([]domain.RecoveredText, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.chunkConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Info("Processing chunk %d/%d: %s (pages %s)", i+1, len(chunks), chunk.Name(), chunk.Pages)
			text, err := p.processor.ProcessWithRetry(gctx, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d (%s): %w", i+1, chunk.Name(), err)
			}
			texts[i] = text
			logger.Debug("Chunk %d/%d: %d characters", i+1, len(chunks), len(text.Text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

// finalize removes chunk files and, when asked, the input itself.
// The original copy inside the folder is never removed.
func (p *Pipeline) finalize(input string, folder domain.ProcessingFolder, chunks []domain.Chunk, opts domain.SessionOptions) {
	logger.Section("Finalizing")
	if !opts.KeepChunks {
		var errs []error
		for _, c := range chunks {
			if c.Path == folder.Original {
				continue
			}
			if err := os.Remove(c.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
				continue
			}
			logger.Debug("Deleted chunk: %s", filepath.Base(c.Path))
		}
		if err := errors.Join(errs...); err != nil {
			logger.Warn("Failed to remove chunk files: %v", err)
		}
	}

	if opts.DeleteOriginal {
		if err := os.Remove(input); err != nil {
			logger.Warn("Failed to delete original %s: %v", input, err)
		} else {
			logger.Info("Deleted original: %s", input)
		}
	}
}
