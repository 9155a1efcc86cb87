package domain

import "time"

// OAuthToken is an access token with its refresh material.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// IsExpired reports whether the access token has passed its expiry.
// A zero expiry never expires.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// AuthStatus summarises the configured Google authorisation.
type AuthStatus struct {
	CredentialsPath string
	TokenPath       string
	HasCredentials  bool
	HasToken        bool
	CanRefresh      bool
	Expiry          time.Time
}
