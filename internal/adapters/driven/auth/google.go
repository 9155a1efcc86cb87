package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
)

// Ensure GoogleOAuthClient implements the interface.
var _ driven.OAuthClient = (*GoogleOAuthClient)(nil)

// Scopes requested during login. Uploaded scans are the only files touched.
var Scopes = []string{drive.DriveFileScope}

// refreshBuffer refreshes tokens this long before they expire.
const refreshBuffer = 5 * time.Minute

// GoogleOAuthClient reads credentials.json and keeps token.json current.
type GoogleOAuthClient struct {
	mu              sync.Mutex
	credentialsPath string
	tokenPath       string
	now             func() time.Time
}

// NewGoogleOAuthClient creates a client for the given credentials and token files.
func NewGoogleOAuthClient(credentialsPath, tokenPath string) *GoogleOAuthClient {
	return &GoogleOAuthClient{
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
		now:             time.Now,
	}
}

// SetPaths points the client at a credentials file and a token file.
func (c *GoogleOAuthClient) SetPaths(credentialsPath, tokenPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credentialsPath = credentialsPath
	c.tokenPath = tokenPath
}

// AuthCodeURL builds the consent URL for a loopback redirect with a PKCE challenge.
func (c *GoogleOAuthClient) AuthCodeURL(redirectURI, state, verifier string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, err := c.config(redirectURI)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		// Without consent Google omits the refresh token on repeat logins.
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange trades an authorisation code for a token and writes token.json.
func (c *GoogleOAuthClient) Exchange(ctx context.Context, code, redirectURI, verifier string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, err := c.config(redirectURI)
	if err != nil {
		return err
	}
	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	return c.saveToken(tok)
}

// Token returns a valid access token, refreshing and persisting it if it is
// about to expire.
func (c *GoogleOAuthClient) Token(ctx context.Context) (*domain.OAuthToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, err := c.loadToken()
	if err != nil {
		return nil, err
	}

	if !c.needsRefresh(tok) {
		return toDomain(tok), nil
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token in %s has expired and cannot be refreshed", domain.ErrAuthExpired, c.tokenPath)
	}

	cfg, err := c.config("")
	if err != nil {
		return nil, err
	}
	// A token without an access token always refreshes.
	fresh, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrAuthExpired, err)
		}
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if err := c.saveToken(fresh); err != nil {
		return nil, err
	}
	return toDomain(fresh), nil
}

// Forget removes token.json. A missing file is not an error.
func (c *GoogleOAuthClient) Forget() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.tokenPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Status reports which files exist and what the token allows.
func (c *GoogleOAuthClient) Status() domain.AuthStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := domain.AuthStatus{
		CredentialsPath: c.credentialsPath,
		TokenPath:       c.tokenPath,
	}
	if info, err := os.Stat(c.credentialsPath); err == nil && info.Mode().IsRegular() {
		status.HasCredentials = true
	}
	if tok, err := c.loadToken(); err == nil {
		status.HasToken = true
		status.CanRefresh = tok.RefreshToken != ""
		status.Expiry = tok.Expiry
	}
	return status
}

// config parses credentials.json. Caller must hold the lock.
func (c *GoogleOAuthClient) config(redirectURI string) (*oauth2.Config, error) {
	data, err := os.ReadFile(c.credentialsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: credentials file not found: %s", domain.ErrAuthRequired, c.credentialsPath)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", c.credentialsPath, err)
	}
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}
	return cfg, nil
}

func (c *GoogleOAuthClient) needsRefresh(tok *oauth2.Token) bool {
	if tok.AccessToken == "" {
		return true
	}
	if tok.Expiry.IsZero() {
		return false
	}
	return c.now().Add(refreshBuffer).After(tok.Expiry)
}

// tokenFile accepts both the golang.org/x/oauth2 layout and the
// google-auth layout, which names the access token "token".
type tokenFile struct {
	AccessToken  string    `json:"access_token,omitempty"`
	Token        string    `json:"token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// loadToken reads token.json. Caller must hold the lock.
func (c *GoogleOAuthClient) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no token at %s (run 'pdfocr auth login')", domain.ErrAuthRequired, c.tokenPath)
		}
		return nil, fmt.Errorf("read token: %w", err)
	}

	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", c.tokenPath, err)
	}
	tok := &oauth2.Token{
		AccessToken:  f.AccessToken,
		TokenType:    f.TokenType,
		RefreshToken: f.RefreshToken,
		Expiry:       f.Expiry,
	}
	if tok.AccessToken == "" {
		tok.AccessToken = f.Token
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file %s is empty", domain.ErrAuthRequired, c.tokenPath)
	}
	return tok, nil
}

// saveToken writes token.json readable only by the owner. Caller must hold the lock.
func (c *GoogleOAuthClient) saveToken(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tokenFile{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if dir := filepath.Dir(c.tokenPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	if err := os.WriteFile(c.tokenPath, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func toDomain(tok *oauth2.Token) *domain.OAuthToken {
	return &domain.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Expiry:       tok.Expiry,
	}
}
