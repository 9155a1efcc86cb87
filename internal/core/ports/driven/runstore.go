package driven

import (
	"context"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// RunStore persists the history of sessions and batch runs.
type RunStore interface {
	// SaveRun stores a run record, replacing any record with the same ID.
	SaveRun(ctx context.Context, run domain.RunRecord) error

	// RecentRuns returns up to limit runs, most recent first, with their files.
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// GetRun returns one run by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)
}
