package driving

import (
	"context"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// HistoryService exposes recorded runs.
type HistoryService interface {
	// Recent returns up to limit runs, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get returns one run by ID.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)
}
