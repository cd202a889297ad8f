// Package auth obtains Spotify bearer tokens for the sync pipeline.
//
// Credentials are tried in a fixed order: a direct access token from the
// environment, a refresh token exchange using the application's client
// credentials, and finally the interactive authorization code flow. The
// interactive flow is refused in unattended environments such as CI so a
// misconfigured scheduled run fails fast instead of hanging on a browser
// prompt.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/upstreamhub/csv2spotify/pkg/config"
)

var (
	// ErrNoCredential means no configured credential strategy can produce a
	// token.
	ErrNoCredential = errors.New("no Spotify credential available")
	// ErrUnattended means only the interactive flow remains but the process
	// is running unattended.
	ErrUnattended = errors.New("interactive authentication unavailable in unattended environment")
)

// authState is the OAuth state parameter for the authorization code flow.
const authState = "csv2spotify-auth-state"

// interactiveTimeout bounds how long the callback server waits for the
// browser redirect before offering the manual paste fallback.
const interactiveTimeout = 5 * time.Minute

// Provider obtains access tokens using the first credential strategy whose
// inputs are configured.
type Provider struct {
	spotify config.SpotifyConfig
	server  config.ServerConfig
	ci      config.CIConfig
	logger  *log.Entry

	// input is the reader used for the manual code paste fallback.
	input io.Reader
}

// NewProvider creates a token provider from the application configuration.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		spotify: cfg.Spotify,
		server:  cfg.Server,
		ci:      cfg.CI,
		logger:  log.WithField("component", "auth"),
		input:   os.Stdin,
	}
}

// Token returns a bearer access token. Strategies are tried in order: direct
// access token, refresh token exchange, interactive authorization. The
// returned error is ErrNoCredential when nothing is configured and
// ErrUnattended when only the interactive flow remains but cannot run.
func (p *Provider) Token(ctx context.Context) (string, error) {
	if p.spotify.AccessToken != "" {
		p.logger.Debug("Using access token from environment")
		return p.spotify.AccessToken, nil
	}

	if p.spotify.RefreshToken != "" && p.spotify.HasClientCredentials() {
		token, err := p.refreshToken(ctx)
		if err == nil {
			return token.AccessToken, nil
		}
		// The same refresh token is not retried; the interactive flow can
		// mint a fresh one.
		p.logger.WithError(err).Warn("Refresh token exchange failed, falling back to interactive authorization")
	}

	if !p.spotify.HasClientCredentials() {
		return "", ErrNoCredential
	}
	if p.ci.Unattended() {
		return "", ErrUnattended
	}

	token, err := p.InteractiveToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// refreshToken exchanges the configured refresh token for a fresh access
// token. A rotated refresh token is persisted back to the env file.
func (p *Provider) refreshToken(ctx context.Context) (*oauth2.Token, error) {
	p.logger.Debug("Exchanging refresh token for access token")

	token, err := p.authenticator().RefreshToken(ctx, &oauth2.Token{
		RefreshToken: p.spotify.RefreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}

	if token.RefreshToken != "" && token.RefreshToken != p.spotify.RefreshToken {
		if err := persistRefreshToken(p.spotify.EnvFilePath, token.RefreshToken); err != nil {
			p.logger.WithError(err).Warn("Failed to persist rotated refresh token")
		}
	}

	return token, nil
}

// InteractiveToken runs the authorization code flow: it starts a local
// callback server, prints the authorization URL for the user to open, and
// exchanges the returned code for a token. When the browser redirect does
// not arrive within the timeout the user may paste the code or the full
// redirect URL instead. The granted refresh token is persisted to the env
// file for future unattended runs.
func (p *Provider) InteractiveToken(ctx context.Context) (*oauth2.Token, error) {
	authenticator := p.authenticator()
	authURL := authenticator.AuthURL(authState)

	authComplete := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", newCallbackHandler(authState, authComplete))

	server := &http.Server{
		Addr:              p.server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			authComplete <- callbackResult{err: fmt.Errorf("callback server failed: %w", err)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Open this URL in your browser to authorize Spotify access:\n\n  %s\n\n", authURL)
	p.logger.WithField("listen_addr", p.server.Address()).Info("Waiting for Spotify authorization callback")

	var code string
	select {
	case result := <-authComplete:
		if result.err != nil {
			return nil, result.err
		}
		code = result.code
	case <-time.After(interactiveTimeout):
		p.logger.Warn("No callback received, falling back to manual code entry")
		fmt.Println("No callback received. Paste the authorization code or the full redirect URL:")
		pasted, err := readPastedCode(p.input)
		if err != nil {
			return nil, fmt.Errorf("failed to read authorization code: %w", err)
		}
		code = pasted
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := authenticator.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	p.logger.Info("Spotify authorization completed")

	if token.RefreshToken != "" {
		if err := persistRefreshToken(p.spotify.EnvFilePath, token.RefreshToken); err != nil {
			p.logger.WithError(err).Warn("Failed to persist refresh token")
		} else {
			p.logger.WithField("env_file", p.spotify.EnvFilePath).Info("Saved refresh token for future runs")
		}
	}

	return token, nil
}

func (p *Provider) authenticator() *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithRedirectURL(p.spotify.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserReadEmail,
		),
		spotifyauth.WithClientID(p.spotify.ClientID),
		spotifyauth.WithClientSecret(p.spotify.ClientSecret),
	)
}

type callbackResult struct {
	code string
	err  error
}

// newCallbackHandler builds the OAuth redirect handler. It validates the
// state parameter, extracts the authorization code, and delivers it over the
// results channel. Only the first result is delivered; a repeated or stray
// callback request is answered but its result dropped so the handler never
// blocks server shutdown.
func newCallbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	deliver := func(result callbackResult) {
		select {
		case results <- result:
		default:
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if got := query.Get("state"); got != state {
			http.Error(w, "State mismatch", http.StatusForbidden)
			deliver(callbackResult{err: fmt.Errorf("authorization state mismatch")})
			return
		}

		if errCode := query.Get("error"); errCode != "" {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("authorization denied: %s", errCode)})
			return
		}

		code := query.Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("callback carried no authorization code")})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><h1>Authorization complete</h1><p>You can close this window.</p></body></html>")
		deliver(callbackResult{code: code})
	}
}

// readPastedCode reads one line of manual input. A full redirect URL is
// accepted and its code parameter extracted; anything else is treated as the
// bare authorization code.
func readPastedCode(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input provided")
	}

	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return "", fmt.Errorf("no input provided")
	}

	if strings.Contains(line, "://") {
		parsed, err := url.Parse(line)
		if err != nil {
			return "", fmt.Errorf("invalid redirect URL: %w", err)
		}
		code := parsed.Query().Get("code")
		if code == "" {
			return "", fmt.Errorf("redirect URL carries no code parameter")
		}
		return code, nil
	}

	return line, nil
}
