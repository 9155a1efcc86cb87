package domain

// Settings is the resolved application configuration.
type Settings struct {
	Render           RenderOptions
	PagesPerChunk    int
	MaxAttempts      int
	ChunkConcurrency int
	RequestsPerSec   int
	CredentialsPath  string
	TokenPath        string
	BatchConcurrency int
	BatchTypes       []string
	HistoryEnabled   bool
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Render:           RenderOptions{DPI: DefaultDPI, Quality: DefaultQuality, Backend: BackendAuto},
		PagesPerChunk:    DefaultPagesPerChunk,
		MaxAttempts:      DefaultMaxAttempts,
		ChunkConcurrency: DefaultChunkConcurrency,
		RequestsPerSec:   DefaultRequestsPerSec,
		CredentialsPath:  "credentials.json",
		TokenPath:        "token.json",
		BatchConcurrency: DefaultBatchConcurrency,
		HistoryEnabled:   true,
	}
}

// SessionOptions derives default session options from the settings.
func (s Settings) SessionOptions() SessionOptions {
	return SessionOptions{
		Render:        s.Render,
		PagesPerChunk: s.PagesPerChunk,
	}
}
