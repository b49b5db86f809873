package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The setlist source is constructed up front; YouTube collaborators are
// built per command because they need a valid OAuth token. Tests inject
// doubles through [RunnerOpts].
type Runner struct {
	config    *shared.Config
	source    services.SetlistSource
	searcher  services.VideoSearcher
	playlists services.PlaylistService
	tokens    *services.TokenStore
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Source    services.SetlistSource
	Searcher  services.VideoSearcher
	Playlists services.PlaylistService
	Tokens    *services.TokenStore
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Source == nil {
		opts.Source = services.NewSetlistFMService(opts.Config.Credentials.SetlistFM.APIKey, "")
	}
	if opts.Tokens == nil {
		if path, err := opts.Config.TokenPath(); err == nil {
			opts.Tokens = services.NewTokenStore(path)
		}
	}

	return &Runner{
		config:    opts.Config,
		source:    opts.Source,
		searcher:  opts.Searcher,
		playlists: opts.Playlists,
		tokens:    opts.Tokens,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, convertCommand, setlistCommand, cacheCommand, quotaCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// oauthConfig builds the Google OAuth2 config from the runner's credentials.
func (r *Runner) oauthConfig() (*oauth2.Config, error) {
	google := r.config.Credentials.Google
	if google.ClientID == "" || google.ClientSecret == "" {
		return nil, fmt.Errorf("%w: Google client_id and client_secret must be set in config.toml or the environment", shared.ErrMissingCredentials)
	}

	return services.NewGoogleOAuthConfig(google.ClientID, google.ClientSecret, google.RedirectURI), nil
}

// youtubeService builds a YouTube client backed by the stored OAuth token.
func (r *Runner) youtubeService(ctx context.Context) (*services.YouTubeService, error) {
	config, err := r.oauthConfig()
	if err != nil {
		return nil, err
	}
	if r.tokens == nil {
		return nil, fmt.Errorf("%w: no token store configured", shared.ErrNotAuthenticated)
	}

	client, err := services.NewAuthenticatedClient(ctx, config, r.tokens)
	if err != nil {
		return nil, err
	}

	return services.NewYouTubeService(client, r.config.YouTube.RegionCode, ""), nil
}

// openDatabase opens the configured sqlite database and brings the schema
// up to date.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// openLedger opens the database and wraps it in the cache and quota
// repositories. A failure is reported but not fatal: conversions degrade
// to uncached, unmetered runs.
func (r *Runner) openLedger() (*sql.DB, *repositories.VideoCacheAdapter, *repositories.QuotaRepository) {
	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("cache unavailable, continuing without it", "error", err)
		return nil, nil, nil
	}

	cache := repositories.NewVideoCacheAdapter(repositories.NewVideoRepository(db))
	quota := repositories.NewQuotaRepository(db)
	return db, cache, quota
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
