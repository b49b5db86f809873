package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// youtubeScope covers playlist creation and item insertion.
	youtubeScope = "https://www.googleapis.com/auth/youtube"
)

// NewGoogleOAuthConfig builds the OAuth2 config for the YouTube Data API
// authorization code flow.
func NewGoogleOAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{youtubeScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}
}

// TokenStore persists an OAuth2 token as a JSON file on disk.
//
// The token is the sole credential for YouTube operations: it is loaded
// once at startup and written back whenever it changes, so a refreshed
// access token survives across runs.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

// NewTokenStore creates a token store backed by the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Path returns the backing file path.
func (t *TokenStore) Path() string {
	return t.path
}

// Load reads the persisted token. Returns [shared.ErrNotAuthenticated] when
// no token has been saved yet.
func (t *TokenStore) Load() (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: run 'encore auth login' first", shared.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &token, nil
}

// Save writes the token to disk with owner-only permissions, creating the
// parent directory if needed.
func (t *TokenStore) Save(token *oauth2.Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(t.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// Clear removes the persisted token, if any.
func (t *TokenStore) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}

	return nil
}

// persistingTokenSource wraps an [oauth2.TokenSource] and writes the token
// back to the store whenever the underlying source refreshes it.
type persistingTokenSource struct {
	source oauth2.TokenSource
	store  *TokenStore
	mu     sync.Mutex
	last   *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil || p.last.AccessToken != token.AccessToken {
		if err := p.store.Save(token); err != nil {
			return nil, err
		}
		p.last = token
	}

	return token, nil
}

// NewAuthenticatedClient builds an HTTP client from the stored token,
// refreshing and re-persisting it transparently as it expires.
func NewAuthenticatedClient(ctx context.Context, config *oauth2.Config, store *TokenStore) (*http.Client, error) {
	token, err := store.Load()
	if err != nil {
		return nil, err
	}

	source := &persistingTokenSource{
		source: config.TokenSource(ctx, token),
		store:  store,
		last:   token,
	}

	return oauth2.NewClient(ctx, source), nil
}
