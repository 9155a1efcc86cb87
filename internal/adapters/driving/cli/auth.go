package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pdfocr/internal/adapters/driving/oauth"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
)

// loginTimeout bounds how long login waits for the browser callback.
const loginTimeout = 5 * time.Minute

// callbackServer receives the authorization redirect.
type callbackServer interface {
	Start() error
	Expect(state string)
	WaitForCode(ctx context.Context) (string, error)
	RedirectURI() string
	Stop() error
}

// Swappable in tests.
var (
	newCallbackServer = func(port int) callbackServer { return oauth.NewCallbackServer(port) }
	openBrowser       = oauth.OpenBrowser
)

var (
	loginPort   int
	loginManual bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google Drive authorisation",
	Long: `Authorise pdfocr to upload documents to Google Drive for OCR.

Login needs an OAuth client ID for a desktop app, downloaded from the
Google Cloud Console as credentials.json.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorise access to Google Drive",
	Long: `Opens the Google consent page in a browser and stores the resulting
token. Use --manual on a machine without a browser: open the printed URL
elsewhere and paste the code or the full redirect URL back.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current authorisation",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

func init() {
	authLoginCmd.Flags().IntVar(&loginPort, "port", 0, "Loopback port for the redirect (default: any free port)")
	authLoginCmd.Flags().BoolVar(&loginManual, "manual", false, "Paste the authorization code instead of opening a browser")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	server := newCallbackServer(loginPort)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() { _ = server.Stop() }()

	req, err := authService.BeginLogin(server.RedirectURI())
	if err != nil {
		return err
	}
	server.Expect(req.State)

	var code string
	if loginManual {
		code, err = promptForCode(cmd, req)
	} else {
		code, err = waitForBrowser(cmd, server, req)
	}
	if err != nil {
		return err
	}

	if err := authService.CompleteLogin(cmd.Context(), req, code); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	cmd.Printf("Authorised. Token saved to %s\n", authService.Status().TokenPath)
	return nil
}

func waitForBrowser(cmd *cobra.Command, server callbackServer, req *driving.LoginRequest) (string, error) {
	cmd.Println("Opening browser for Google authorisation...")
	if err := openBrowser(req.URL); err != nil {
		cmd.Println("Could not open a browser. Visit this URL to continue:")
	} else {
		cmd.Println("If the browser did not open, visit:")
	}
	cmd.Printf("\n  %s\n\n", req.URL)
	cmd.Println("Waiting for authorisation...")

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()
	code, err := server.WaitForCode(ctx)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	return code, nil
}

func promptForCode(cmd *cobra.Command, req *driving.LoginRequest) (string, error) {
	cmd.Println("Visit this URL in any browser and approve access:")
	cmd.Printf("\n  %s\n\n", req.URL)
	cmd.Println("The browser is then redirected to a page that may fail to load.")
	cmd.Print("Paste the code or the full URL from the address bar: ")

	input, err := readSecret(cmd.InOrStdin())
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	return parseAuthorizationInput(input, req.State)
}

// readSecret reads one line without echo when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return strings.TrimSpace(string(b)), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseAuthorizationInput accepts a bare code or a redirect URL carrying
// code and state parameters.
func parseAuthorizationInput(input, state string) (string, error) {
	if input == "" {
		return "", errors.New("no authorization code entered")
	}
	if !strings.Contains(input, "code=") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if got := q.Get("state"); got != "" && got != state {
		return "", errors.New("state mismatch in redirect URL")
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("redirect URL has no code")
	}
	return code, nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	status := authService.Status()
	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.title.Render("Google Drive authorisation"))
	cmd.Println(st.field("Credentials", presence(status.CredentialsPath, status.HasCredentials)))
	cmd.Println(st.field("Token", presence(status.TokenPath, status.HasToken)))

	switch {
	case !status.HasCredentials:
		cmd.Println(st.warn.Render("Download an OAuth client ID for a desktop app and save it as the credentials file."))
	case !status.HasToken:
		cmd.Println(st.warn.Render(`Not logged in. Run "pdfocr auth login".`))
	default:
		if !status.Expiry.IsZero() {
			cmd.Println(st.field("Expires", status.Expiry.Local().Format(time.RFC1123)))
		}
		if status.CanRefresh {
			cmd.Println(st.field("Refresh", "available"))
		} else {
			cmd.Println(st.warn.Render(`No refresh token. Run "pdfocr auth login" when the token expires.`))
		}
	}
	return nil
}

func presence(path string, ok bool) string {
	if ok {
		return path
	}
	return path + " (missing)"
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	if err := authService.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	cmd.Println("Logged out. Stored token removed.")
	return nil
}
