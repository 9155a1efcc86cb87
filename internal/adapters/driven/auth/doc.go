// Package auth provides the file-backed Google OAuth client.
//
// The OAuth client configuration is read from an installed-app
// credentials.json downloaded from the Google Cloud Console. The token is
// kept in token.json next to it and refreshed through golang.org/x/oauth2.
package auth
