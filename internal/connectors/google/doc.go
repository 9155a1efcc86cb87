// Package google provides shared infrastructure for the Google Drive OCR
// service:
//   - TokenSource adapter to bridge the TokenProvider port to oauth2.TokenSource
//   - Drive service factory
//   - Classification of Google API errors into the OCR error taxonomy
//   - Rate limiting to respect Drive quotas
//
// # Usage
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// Only https://www.googleapis.com/auth/drive.file is requested: the
// application sees the files it uploads and nothing else.
package google
