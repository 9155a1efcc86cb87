package services

import (
	"fmt"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// Ensure BackendSelector implements the interface.
var _ driving.BackendCatalog = (*BackendSelector)(nil)

// BackendSelector resolves which rendering backend a conversion uses.
// Backends are probed in the order they were registered, so the same
// installed set always yields the same choice.
type BackendSelector struct {
	backends []driven.RenderingBackend
	probe    driven.AvailabilityProbe
}

// NewBackendSelector creates a selector over backends in priority order.
func NewBackendSelector(backends ...driven.RenderingBackend) *BackendSelector {
	return &BackendSelector{
		backends: backends,
		probe:    func(b driven.RenderingBackend) bool { return b.Available() },
	}
}

// SetProbe replaces the availability check.
func (s *BackendSelector) SetProbe(probe driven.AvailabilityProbe) {
	s.probe = probe
}

// Select returns the requested backend, or the first available one when
// choice is BackendAuto.
func (s *BackendSelector) Select(choice domain.BackendKind) (driven.RenderingBackend, error) {
	if choice != domain.BackendAuto {
		for _, b := range s.backends {
			if b.Kind() != choice {
				continue
			}
			if !s.probe(b) {
				return nil, fmt.Errorf("%w: %s is not installed", domain.ErrBackendUnavailable, choice.Description())
			}
			logger.Info("Using rendering backend: %s", choice.Description())
			return b, nil
		}
		return nil, fmt.Errorf("%w: %s is not registered", domain.ErrBackendUnavailable, choice)
	}

	for _, b := range s.backends {
		if s.probe(b) {
			logger.Info("Using rendering backend: %s", b.Kind().Description())
			return b, nil
		}
		logger.Debug("Rendering backend %s not available", b.Kind())
	}
	return nil, domain.ErrNoBackendAvailable
}

// Statuses lists every registered backend with its availability.
func (s *BackendSelector) Statuses() []domain.BackendStatus {
	statuses := make([]domain.BackendStatus, 0, len(s.backends))
	for i, b := range s.backends {
		statuses = append(statuses, domain.BackendStatus{
			Kind:      b.Kind(),
			Priority:  i + 1,
			Available: s.probe(b),
		})
	}
	return statuses
}
