package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfocr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.getenv = func(key string) string { return env[key] }
	return svc, store
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc, _ := newTestSettings(nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	defaults.BatchTypes = domain.SupportedExtensions()
	assert.Equal(t, &defaults, settings)
}

func TestSettingsService_Get_StoreOverridesDefaults(t *testing.T) {
	svc, store := newTestSettings(nil)
	require.NoError(t, store.Set(KeyDPI, int64(300)))
	require.NoError(t, store.Set(KeyBackend, "gs"))
	require.NoError(t, store.Set(KeyBatchTypes, []any{"pdf", "png"}))
	require.NoError(t, store.Set(KeyHistoryEnabled, false))
	require.NoError(t, store.Set(KeyCredentials, "/etc/pdfocr/credentials.json"))

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, 300, settings.Render.DPI)
	assert.Equal(t, domain.BackendGhostscript, settings.Render.Backend)
	assert.Equal(t, []string{"pdf", "png"}, settings.BatchTypes)
	assert.False(t, settings.HistoryEnabled)
	assert.Equal(t, "/etc/pdfocr/credentials.json", settings.CredentialsPath)
	assert.Equal(t, domain.DefaultQuality, settings.Render.Quality)
}

func TestSettingsService_Get_EnvOverridesStore(t *testing.T) {
	svc, store := newTestSettings(map[string]string{
		"PDFOCR_DPI":        "150",
		"PDFOCR_CHUNK_SIZE": "5",
		"PDFOCR_TYPES":      "jpg, png",
		"PDFOCR_HISTORY":    "false",
		"PDFOCR_TOKEN":      "/tmp/token.json",
	})
	require.NoError(t, store.Set(KeyDPI, 300))
	require.NoError(t, store.Set(KeyHistoryEnabled, true))

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, 150, settings.Render.DPI)
	assert.Equal(t, 5, settings.PagesPerChunk)
	assert.Equal(t, []string{"jpg", "png"}, settings.BatchTypes)
	assert.False(t, settings.HistoryEnabled)
	assert.Equal(t, "/tmp/token.json", settings.TokenPath)
}

func TestSettingsService_Get_InvalidValues(t *testing.T) {
	svc, _ := newTestSettings(map[string]string{"PDFOCR_QUALITY": "150"})
	_, err := svc.Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	svc, _ = newTestSettings(map[string]string{"PDFOCR_BACKEND": "imagemagick"})
	_, err = svc.Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	svc, store := newTestSettings(nil)
	require.NoError(t, store.Set(KeyPagesPerChunk, 0))
	_, err = svc.Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	svc, store := newTestSettings(nil)

	require.NoError(t, svc.Set(KeyDPI, "300"))
	assert.Equal(t, 300, store.GetInt(KeyDPI))

	require.NoError(t, svc.Set(KeyHistoryEnabled, "false"))
	v, ok := store.Get(KeyHistoryEnabled)
	require.True(t, ok)
	assert.Equal(t, false, v)

	require.NoError(t, svc.Set(KeyBatchTypes, "pdf,.PNG"))
	assert.Equal(t, []string{"pdf", "png"}, store.GetStringSlice(KeyBatchTypes))

	require.NoError(t, svc.Set(KeyBackend, "mutool"))
	assert.Equal(t, "mutool", store.GetString(KeyBackend))
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	svc, store := newTestSettings(nil)

	assert.ErrorIs(t, svc.Set("render.colour", "red"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set(KeyDPI, "high"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set(KeyQuality, "0"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set(KeyHistoryEnabled, "maybe"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set(KeyBackend, "imagemagick"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set(KeyBatchTypes, "pdf,exe"), domain.ErrUnsupportedType)
	assert.Empty(t, store.Keys())
}

func TestSettingsService_UnsetAndStored(t *testing.T) {
	svc, _ := newTestSettings(nil)
	require.NoError(t, svc.Set(KeyDPI, "300"))
	require.NoError(t, svc.Set(KeyToken, "/tmp/t.json"))

	assert.Equal(t, map[string]any{KeyDPI: 300, KeyToken: "/tmp/t.json"}, svc.Stored())

	require.NoError(t, svc.Unset(KeyDPI))
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDPI, settings.Render.DPI)

	assert.ErrorIs(t, svc.Unset("nope"), domain.ErrInvalidInput)
}

func TestSettingKeys_Sorted(t *testing.T) {
	keys := SettingKeys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, KeyPagesPerChunk)
}
