package driving

import "github.com/custodia-labs/pdfocr/internal/core/domain"

// SettingsService resolves configuration from defaults, the config file and
// the environment.
type SettingsService interface {
	// Get returns the resolved settings.
	Get() (*domain.Settings, error)

	// Set validates and stores a value in the config file.
	Set(key, value string) error

	// Unset removes a key from the config file.
	Unset(key string) error

	// Stored returns the raw key/value pairs in the config file.
	Stored() map[string]any

	// Path returns the config file location.
	Path() string
}
