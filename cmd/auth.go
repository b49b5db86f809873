package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/encore/internal/server"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the Google OAuth2 authorization code flow.
//
// Starts a local HTTP server at the configured redirect URI, opens the
// browser for user consent, and persists the exchanged token to the
// token store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := r.oauthConfig()
	if err != nil {
		return err
	}
	if r.tokens == nil {
		return fmt.Errorf("%w: no token store configured", shared.ErrInvalidConfig)
	}

	token, err := r.doOAuth(config, "authorization")
	if err != nil {
		return err
	}

	if err := r.tokens.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", r.tokens.Path())
	r.writePlain("You can now use: encore convert <setlist url>\n")

	return nil
}

// AuthStatus reports whether a token is stored and when it expires.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.tokens == nil {
		return fmt.Errorf("%w: no token store configured", shared.ErrInvalidConfig)
	}

	token, err := r.tokens.Load()
	if err != nil {
		r.writePlain("✗ Not authenticated\n")
		r.writePlain("Run 'encore auth login' to authorize with YouTube.\n")
		return nil
	}

	r.writePlain("✓ Authenticated\n")
	r.writePlain("Token file: %s\n", r.tokens.Path())

	if token.Expiry.IsZero() {
		r.writePlain("Access token: no recorded expiry\n")
	} else if token.Valid() {
		r.writePlain("Access token: valid until %s\n", token.Expiry.Format(time.RFC1123))
	} else {
		r.writePlain("Access token: expired %s (will refresh on next use)\n", token.Expiry.Format(time.RFC1123))
	}

	if token.RefreshToken != "" {
		r.writePlain("Refresh token: present\n")
	} else {
		r.writePlain("Refresh token: missing - re-run 'encore auth login' if requests fail\n")
	}

	return nil
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.tokens == nil {
		return fmt.Errorf("%w: no token store configured", shared.ErrInvalidConfig)
	}

	if err := r.tokens.Clear(); err != nil {
		return err
	}

	r.logger.Info("token removed", "path", r.tokens.Path())
	return r.writePlain("✓ Logged out\n")
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(config *oauth2.Config, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	redirect, err := url.Parse(config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redirect URI %q: %v", shared.ErrInvalidConfig, config.RedirectURL, err)
	}

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	oauthHandler := server.NewOAuthHandler(config, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	httpServer := &http.Server{
		Addr:    redirect.Host,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, redirect.Host)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for YouTube %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage YouTube authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with YouTube using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show stored token state and expiry",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}
