package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// PKCE code verifier length (RFC 7636 recommends 43-128 characters).
const codeVerifierLength = 64

// AuthService drives the interactive Google authorisation.
type AuthService struct {
	client driven.OAuthClient
}

// NewAuthService creates an auth service.
func NewAuthService(client driven.OAuthClient) *AuthService {
	return &AuthService{client: client}
}

// Configure points the client at a credentials file and token file.
func (s *AuthService) Configure(credentialsPath, tokenPath string) {
	s.client.SetPaths(credentialsPath, tokenPath)
}

// BeginLogin builds the consent URL with a fresh PKCE verifier and state.
func (s *AuthService) BeginLogin(redirectURI string) (*driving.LoginRequest, error) {
	status := s.client.Status()
	if !status.HasCredentials {
		return nil, fmt.Errorf("%w: credentials file not found: %s "+
			"(download an OAuth client ID for a desktop app from the Google Cloud Console)",
			domain.ErrAuthRequired, status.CredentialsPath)
	}

	verifier, err := randomString(codeVerifierLength)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}
	state, err := randomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	url, err := s.client.AuthCodeURL(redirectURI, state, verifier)
	if err != nil {
		return nil, err
	}
	return &driving.LoginRequest{
		URL:         url,
		State:       state,
		RedirectURI: redirectURI,
		Verifier:    verifier,
	}, nil
}

// CompleteLogin exchanges the authorisation code and stores the token.
func (s *AuthService) CompleteLogin(ctx context.Context, req *driving.LoginRequest, code string) error {
	if req == nil || code == "" {
		return fmt.Errorf("%w: authorization code is required", domain.ErrInvalidInput)
	}
	if err := s.client.Exchange(ctx, code, req.RedirectURI, req.Verifier); err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	return nil
}

// Logout removes the stored token.
func (s *AuthService) Logout() error {
	return s.client.Forget()
}

// Status reports the configured authorisation.
func (s *AuthService) Status() domain.AuthStatus {
	return s.client.Status()
}

// randomString returns n random bytes encoded as unpadded base64url.
func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
