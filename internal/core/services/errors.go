package services

import (
	"fmt"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

func errInputNotFound(path string) error {
	return fmt.Errorf("%w: %s", domain.ErrInputNotFound, path)
}
