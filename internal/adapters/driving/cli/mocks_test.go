package cli

import (
	"bytes"
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
)

// mockConverter implements driving.Converter for testing.
type mockConverter struct {
	result *domain.ConversionResult
	err    error
	input  string
	opts   domain.ConvertOptions
}

func (m *mockConverter) Convert(_ context.Context, input string, opts domain.ConvertOptions) (*domain.ConversionResult, error) {
	m.input = input
	m.opts = opts
	return m.result, m.err
}

// mockPipeline implements driving.OCRPipeline for testing.
type mockPipeline struct {
	result *domain.SessionResult
	err    error
	input  string
	opts   domain.SessionOptions
}

func (m *mockPipeline) Run(_ context.Context, input string, opts domain.SessionOptions) (*domain.SessionResult, error) {
	m.input = input
	m.opts = opts
	return m.result, m.err
}

// mockBatchRunner implements driving.BatchRunner for testing.
type mockBatchRunner struct {
	report    *domain.BatchReport
	err       error
	watchErr  error
	watchNew  []domain.FileOutcome
	dir       string
	exts      []string
	opts      domain.BatchOptions
	watchCall bool
}

func (m *mockBatchRunner) Run(_ context.Context, dir string, exts []string, opts domain.BatchOptions) (*domain.BatchReport, error) {
	m.dir = dir
	m.exts = exts
	m.opts = opts
	return m.report, m.err
}

func (m *mockBatchRunner) Watch(
	_ context.Context,
	report *domain.BatchReport,
	_ []string,
	_ domain.BatchOptions,
	onOutcome func(domain.FileOutcome),
) error {
	m.watchCall = true
	for _, o := range m.watchNew {
		report.Outcomes = append(report.Outcomes, o)
		onOutcome(o)
	}
	return m.watchErr
}

// mockCatalog implements driving.BackendCatalog for testing.
type mockCatalog struct {
	statuses []domain.BackendStatus
}

func (m *mockCatalog) Statuses() []domain.BackendStatus {
	return m.statuses
}

// mockHistory implements driving.HistoryService for testing.
type mockHistory struct {
	runs  []domain.RunRecord
	err   error
	limit int
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	settings domain.Settings
	stored   map[string]any
	getErr   error
	setErr   error
	set      map[string]string
	unset    []string
}

func newMockSettings() *mockSettings {
	return &mockSettings{
		settings: domain.DefaultSettings(),
		stored:   map[string]any{},
		set:      map[string]string{},
	}
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Unset(key string) error {
	m.unset = append(m.unset, key)
	return nil
}

func (m *mockSettings) Stored() map[string]any {
	return m.stored
}

func (m *mockSettings) Path() string {
	return "/home/test/.pdfocr/config.toml"
}

// mockAuth implements driving.AuthService for testing.
type mockAuth struct {
	status      domain.AuthStatus
	beginErr    error
	completeErr error
	logoutErr   error
	redirectURI string
	code        string
	configured  [2]string
	loggedOut   bool
}

func (m *mockAuth) Configure(credentialsPath, tokenPath string) {
	m.configured = [2]string{credentialsPath, tokenPath}
}

func (m *mockAuth) BeginLogin(redirectURI string) (*driving.LoginRequest, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.redirectURI = redirectURI
	return &driving.LoginRequest{
		URL:         "https://accounts.example.com/auth?state=xyz",
		State:       "xyz",
		RedirectURI: redirectURI,
		Verifier:    "verifier",
	}, nil
}

func (m *mockAuth) CompleteLogin(_ context.Context, _ *driving.LoginRequest, code string) error {
	m.code = code
	return m.completeErr
}

func (m *mockAuth) Logout() error {
	m.loggedOut = true
	return m.logoutErr
}

func (m *mockAuth) Status() domain.AuthStatus {
	return m.status
}

// fakeCallbackServer implements callbackServer for testing.
type fakeCallbackServer struct {
	code     string
	err      error
	startErr error
	expected string
	stopped  bool
}

func (f *fakeCallbackServer) Start() error { return f.startErr }

func (f *fakeCallbackServer) Expect(state string) { f.expected = state }

func (f *fakeCallbackServer) RedirectURI() string { return "http://127.0.0.1:8085/" }

func (f *fakeCallbackServer) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeCallbackServer) WaitForCode(_ context.Context) (string, error) {
	return f.code, f.err
}

func setupServicesTest(s Services) func() {
	old := Services{
		Converter:      converter,
		Pipeline:       pipeline,
		BatchRunner:    batchRunner,
		BackendCatalog: backendCatalog,
		History:        historyService,
		Settings:       settingsService,
		Auth:           authService,
	}
	SetServices(s)
	return func() {
		SetServices(old)
	}
}

// executeCommand runs the root command with args and returns its output.
// Flags are reset first because cobra commands are package globals.
func executeCommand(in io.Reader, args ...string) (string, error) {
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
