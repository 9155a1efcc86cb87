package driving

import (
	"context"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// AuthService manages the Google authorisation used by the OCR service.
type AuthService interface {
	// Configure points the service at a credentials file and token file.
	Configure(credentialsPath, tokenPath string)

	// BeginLogin prepares a consent URL for the loopback redirect.
	BeginLogin(redirectURI string) (*LoginRequest, error)

	// CompleteLogin exchanges the code returned to the redirect.
	CompleteLogin(ctx context.Context, req *LoginRequest, code string) error

	// Logout removes the stored token.
	Logout() error

	// Status reports the current authorisation.
	Status() domain.AuthStatus
}

// LoginRequest carries the state of one in-flight authorisation.
type LoginRequest struct {
	URL         string
	State       string
	RedirectURI string
	Verifier    string
}
