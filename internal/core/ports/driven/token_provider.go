package driven

import (
	"context"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently.
type TokenProvider interface {
	// Token returns a valid access token, refreshing it if expired.
	// Returns domain.ErrAuthRequired when no token is stored and
	// domain.ErrAuthExpired when refresh is rejected.
	Token(ctx context.Context) (*domain.OAuthToken, error)
}

// OAuthClient runs the interactive authorisation code flow and manages the
// stored token.
type OAuthClient interface {
	TokenProvider

	// SetPaths points the client at a credentials file and a token file.
	SetPaths(credentialsPath, tokenPath string)

	// AuthCodeURL builds the consent URL for a loopback redirect.
	// The PKCE challenge is derived from verifier.
	AuthCodeURL(redirectURI, state, verifier string) (string, error)

	// Exchange trades an authorisation code for a token and stores it.
	Exchange(ctx context.Context, code, redirectURI, verifier string) error

	// Forget removes the stored token.
	Forget() error

	// Status reports what is configured.
	Status() domain.AuthStatus
}
