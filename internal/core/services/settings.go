package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyDPI              = "render.dpi"
	KeyQuality          = "render.quality"
	KeyBackend          = "render.backend"
	KeyPagesPerChunk    = "chunk.pages_per_chunk"
	KeyMaxAttempts      = "ocr.max_attempts"
	KeyChunkConcurrency = "ocr.chunk_concurrency"
	KeyRequestsPerSec   = "ocr.requests_per_second"
	KeyCredentials      = "google.credentials"
	KeyToken            = "google.token"
	KeyBatchConcurrency = "batch.concurrency"
	KeyBatchTypes       = "batch.types"
	KeyHistoryEnabled   = "history.enabled"
)

type settingKind int

const (
	kindInt settingKind = iota
	kindString
	kindBool
	kindList
)

// setting describes one configurable key.
type setting struct {
	kind settingKind
	env  string
	min  int
	max  int
}

var settingsSchema = map[string]setting{
	KeyDPI:              {kind: kindInt, env: "PDFOCR_DPI", min: 1, max: 2400},
	KeyQuality:          {kind: kindInt, env: "PDFOCR_QUALITY", min: 1, max: 100},
	KeyBackend:          {kind: kindString, env: "PDFOCR_BACKEND"},
	KeyPagesPerChunk:    {kind: kindInt, env: "PDFOCR_CHUNK_SIZE", min: 1, max: 10000},
	KeyMaxAttempts:      {kind: kindInt, env: "PDFOCR_MAX_ATTEMPTS", min: 1, max: 20},
	KeyChunkConcurrency: {kind: kindInt, env: "PDFOCR_CHUNK_CONCURRENCY", min: 1, max: 64},
	KeyRequestsPerSec:   {kind: kindInt, env: "PDFOCR_RPS", min: 1, max: 1000},
	KeyCredentials:      {kind: kindString, env: "PDFOCR_CREDENTIALS"},
	KeyToken:            {kind: kindString, env: "PDFOCR_TOKEN"},
	KeyBatchConcurrency: {kind: kindInt, env: "PDFOCR_BATCH_CONCURRENCY", min: 1, max: 64},
	KeyBatchTypes:       {kind: kindList, env: "PDFOCR_TYPES"},
	KeyHistoryEnabled:   {kind: kindBool, env: "PDFOCR_HISTORY"},
}

// SettingKeys returns every configurable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingsSchema))
	for k := range settingsSchema {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService resolves settings from defaults, the config store and
// PDFOCR_* environment variables, in that order of precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves the resolved settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	backendName, err := s.getString(KeyBackend, string(defaults.Render.Backend))
	if err != nil {
		return nil, err
	}
	backend, err := domain.ParseBackendKind(backendName)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{Render: domain.RenderOptions{Backend: backend}}
	ints := []struct {
		key string
		def int
		dst *int
	}{
		{KeyDPI, defaults.Render.DPI, &settings.Render.DPI},
		{KeyQuality, defaults.Render.Quality, &settings.Render.Quality},
		{KeyPagesPerChunk, defaults.PagesPerChunk, &settings.PagesPerChunk},
		{KeyMaxAttempts, defaults.MaxAttempts, &settings.MaxAttempts},
		{KeyChunkConcurrency, defaults.ChunkConcurrency, &settings.ChunkConcurrency},
		{KeyRequestsPerSec, defaults.RequestsPerSec, &settings.RequestsPerSec},
		{KeyBatchConcurrency, defaults.BatchConcurrency, &settings.BatchConcurrency},
	}
	for _, f := range ints {
		v, err := s.getInt(f.key, f.def)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if settings.CredentialsPath, err = s.getString(KeyCredentials, defaults.CredentialsPath); err != nil {
		return nil, err
	}
	if settings.TokenPath, err = s.getString(KeyToken, defaults.TokenPath); err != nil {
		return nil, err
	}
	if settings.HistoryEnabled, err = s.getBool(KeyHistoryEnabled, defaults.HistoryEnabled); err != nil {
		return nil, err
	}

	types := s.configStore.GetStringSlice(KeyBatchTypes)
	if env := s.getenv(settingsSchema[KeyBatchTypes].env); env != "" {
		types = splitList(env)
	}
	if settings.BatchTypes, err = domain.ParseExtensions(types); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyBatchTypes, err)
	}

	return settings, nil
}

// Set validates value against the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	def, ok := settingsSchema[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(SettingKeys(), ", "))
	}

	var stored any
	switch def.kind {
	case kindInt:
		n, err := parseBounded(key, value, def)
		if err != nil {
			return err
		}
		stored = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = b
	case kindList:
		exts, err := domain.ParseExtensions(splitList(value))
		if err != nil {
			return err
		}
		stored = exts
	default:
		if key == KeyBackend {
			if _, err := domain.ParseBackendKind(value); err != nil {
				return err
			}
		}
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a key so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settingsSchema[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Stored returns the raw values present in the config store.
func (s *SettingsService) Stored() map[string]any {
	stored := make(map[string]any)
	for _, k := range s.configStore.Keys() {
		if v, ok := s.configStore.Get(k); ok {
			stored[k] = v
		}
	}
	return stored
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) (string, error) {
	if env := s.getenv(settingsSchema[key].env); env != "" {
		return env, nil
	}
	if v := s.configStore.GetString(key); v != "" {
		return v, nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getInt(key string, defaultVal int) (int, error) {
	def := settingsSchema[key]
	if env := s.getenv(def.env); env != "" {
		n, err := parseBounded(key, env, def)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", def.env, err)
		}
		return n, nil
	}
	if _, ok := s.configStore.Get(key); ok {
		n := s.configStore.GetInt(key)
		if n < def.min || n > def.max {
			return 0, fmt.Errorf("%w: %s must be between %d and %d, got %d", domain.ErrInvalidInput, key, def.min, def.max, n)
		}
		return n, nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getBool(key string, defaultVal bool) (bool, error) {
	def := settingsSchema[key]
	if env := s.getenv(def.env); env != "" {
		b, err := strconv.ParseBool(env)
		if err != nil {
			return false, fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, def.env, env)
		}
		return b, nil
	}
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetBool(key), nil
	}
	return defaultVal, nil
}

func parseBounded(key, value string, def setting) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, value)
	}
	if n < def.min || n > def.max {
		return 0, fmt.Errorf("%w: %s must be between %d and %d, got %d", domain.ErrInvalidInput, key, def.min, def.max, n)
	}
	return n, nil
}

// splitList splits a comma or space separated list.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
