package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/punchclock/internal/common"
)

const (
	authTimeout         = 5 * time.Minute
	defaultCallbackAddr = "127.0.0.1:8080"
)

// OAuth2Config holds OAuth2 configuration.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string // where the token is persisted
	CallbackAddr string // local redirect listener
}

func (c OAuth2Config) oauth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// callbackResult is what the redirect handler learned: a code or a failure.
type callbackResult struct {
	err  error
	code string
}

// callbackHandler accepts the first redirect carrying the expected state and
// reports it on results. Later or forged requests are answered but ignored.
func callbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		res := callbackResult{code: q.Get("code")}
		page := "<html><body><h1>Punchclock is connected to Google Sheets</h1><p>You can close this window.</p></body></html>"
		if res.code == "" {
			res.err = fmt.Errorf("no authorization code received: %s", q.Get("error"))
			page = "<html><body><h1>Authentication failed</h1><p>No authorization code was returned.</p></body></html>"
		}

		select {
		case results <- res:
		default:
		}
		_, _ = fmt.Fprint(w, page)
	}
}

// AuthenticateOAuth2Interactive runs the browser consent flow against a local
// redirect listener and saves the resulting token.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	logger := common.Logger(ctx)

	addr := config.CallbackAddr
	if addr == "" {
		addr = defaultCallbackAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	state, err := randomState()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	oauthConfig := config.oauth2()
	oauthConfig.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr())

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, results))

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback server failed: %w", err)}:
			default:
			}
		}
	}()
	defer func() {
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Error shutting down callback server", "error", err)
		}
	}()

	logger.Info("Open this URL to authorize Google Sheets access",
		"url", oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("authentication timeout: no response within %s", authTimeout)
	}
	if res.err != nil {
		return nil, res.err
	}

	token, err := oauthConfig.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	persistToken(ctx, config.TokenFile, token)
	return token, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// LoadToken reads a token saved by a previous authentication.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", tokenFile, err)
	}
	return token, nil
}

// saveToken writes token readable only by the owner.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// persistToken saves token when a path is configured. Failure only costs a
// re-authentication next time, so it is logged rather than returned.
func persistToken(ctx context.Context, path string, token *oauth2.Token) {
	if path == "" {
		return
	}
	if err := saveToken(path, token); err != nil {
		common.Logger(ctx).Warn("Failed to save token", "file", path, "error", err)
		return
	}
	common.Logger(ctx).Debug("Token saved", "file", path)
}

// RefreshTokenIfNeeded exchanges an expired token's refresh token for a new one.
func RefreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	fresh, err := config.oauth2().TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	persistToken(ctx, config.TokenFile, fresh)
	return fresh, nil
}

// GetOrCreateToken reuses the saved token when there is one and runs the
// interactive flow otherwise.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		if token, err := LoadToken(config.TokenFile); err == nil {
			return RefreshTokenIfNeeded(ctx, config, token)
		}
		common.Logger(ctx).Info("No saved token, starting OAuth2 flow", "file", config.TokenFile)
	}
	return AuthenticateOAuth2Interactive(ctx, config)
}
