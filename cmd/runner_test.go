package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	tu "github.com/desertthunder/encore/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	return config
}

func testSetlist() *models.Setlist {
	return &models.Setlist{
		URL:    "https://www.setlist.fm/setlist/jeff-buckley/1995/olympia-paris-france-53af56b5.html",
		Artist: "Jeff Buckley",
		Venue:  "Olympia",
		City:   "Paris, France",
		Date:   "1995-07-04",
		Songs: []models.Song{
			{Title: "Dream Brother", Artist: "Jeff Buckley", Position: 1},
			{Title: "Hallelujah", Artist: "Jeff Buckley", OriginalArtist: "Leonard Cohen", Cover: true, Position: 2},
		},
	}
}

func testApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "encore",
		Commands: r.register(),
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := testConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			source := &tu.MockSetlistSource{}
			searcher := &tu.MockSearcher{}
			playlists := &tu.MockPlaylistService{}
			tokens := services.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

			runner := NewRunner(RunnerOpts{
				Config:    config,
				Source:    source,
				Searcher:  searcher,
				Playlists: playlists,
				Tokens:    tokens,
				Logger:    logger,
				Output:    output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.source != source {
				t.Error("expected source to be set")
			}
			if runner.searcher != searcher {
				t.Error("expected searcher to be set")
			}
			if runner.playlists != playlists {
				t.Error("expected playlists to be set")
			}
			if runner.tokens != tokens {
				t.Error("expected tokens to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil source builds setlist.fm service", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.source == nil {
				t.Fatal("expected default source to be set")
			}
			if runner.source.Name() != "setlist.fm" {
				t.Errorf("expected setlist.fm source, got %s", runner.source.Name())
			}
		})

		t.Run("with nil tokens derives store from config", func(t *testing.T) {
			config := testConfig()
			config.YouTube.TokenPath = filepath.Join(t.TempDir(), "token.json")

			runner := NewRunner(RunnerOpts{Config: config})

			if runner.tokens == nil {
				t.Fatal("expected token store to be derived from config")
			}
			if runner.tokens.Path() != config.YouTube.TokenPath {
				t.Errorf("expected token path %s, got %s", config.YouTube.TokenPath, runner.tokens.Path())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig()})
		commands := runner.register()

		if len(commands) != 7 {
			t.Errorf("expected 7 commands, got %d", len(commands))
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("oauthConfig", func(t *testing.T) {
		t.Run("requires client credentials", func(t *testing.T) {
			config := testConfig()
			config.Credentials.Google.ClientID = ""
			config.Credentials.Google.ClientSecret = ""

			runner := NewRunner(RunnerOpts{Config: config})

			if _, err := runner.oauthConfig(); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("builds config from credentials", func(t *testing.T) {
			config := testConfig()
			config.Credentials.Google.ClientID = "client_id"
			config.Credentials.Google.ClientSecret = "client_secret"

			runner := NewRunner(RunnerOpts{Config: config})

			oauthConfig, err := runner.oauthConfig()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if oauthConfig.ClientID != "client_id" {
				t.Errorf("expected client ID to be set, got %s", oauthConfig.ClientID)
			}
			if oauthConfig.RedirectURL != config.Credentials.Google.RedirectURI {
				t.Errorf("expected redirect URI %s, got %s", config.Credentials.Google.RedirectURI, oauthConfig.RedirectURL)
			}
		})
	})
}

func TestConvertCommand(t *testing.T) {
	setlist := testSetlist()
	searcher := func() *tu.MockSearcher {
		return &tu.MockSearcher{Hits: map[string][]models.SearchHit{
			"Dream Brother Jeff Buckley": {{VideoID: "vid_dream", Title: "Jeff Buckley - Dream Brother"}},
			"Hallelujah Leonard Cohen":   {{VideoID: "vid_hallelujah", Title: "Leonard Cohen - Hallelujah"}},
		}}
	}

	t.Run("dry run matches without playlist service", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:   testConfig(),
			Source:   &tu.MockSetlistSource{Setlist: setlist},
			Searcher: searcher(),
			Output:   output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "convert", "--dry-run", setlist.URL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Dry Run Complete") {
			t.Errorf("expected dry run banner, got %s", result)
		}
		if !strings.Contains(result, "Matched: 2/2 songs (100.0%)") {
			t.Errorf("expected match summary, got %s", result)
		}
		if strings.Contains(result, "Playlist: http") {
			t.Error("dry run must not report a playlist URL")
		}
	})

	t.Run("creates playlist with sequential inserts", func(t *testing.T) {
		output := &bytes.Buffer{}
		playlists := &tu.MockPlaylistService{PlaylistID: "PL123"}
		runner := NewRunner(RunnerOpts{
			Config:    testConfig(),
			Source:    &tu.MockSetlistSource{Setlist: setlist},
			Searcher:  searcher(),
			Playlists: playlists,
			Output:    output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "convert", setlist.URL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(playlists.Created) != 1 {
			t.Fatalf("expected 1 playlist created, got %d", len(playlists.Created))
		}
		spec := playlists.Created[0]
		if spec.Title != "Jeff Buckley - Olympia (1995-07-04)" {
			t.Errorf("unexpected playlist title %q", spec.Title)
		}
		if spec.Privacy != models.PrivacyPrivate {
			t.Errorf("expected private playlist, got %s", spec.Privacy)
		}
		if len(playlists.Added) != 2 || playlists.Added[0] != "vid_dream" || playlists.Added[1] != "vid_hallelujah" {
			t.Errorf("expected videos added in setlist order, got %v", playlists.Added)
		}
		if !strings.Contains(output.String(), services.PlaylistURL("PL123")) {
			t.Error("expected playlist URL in summary")
		}
	})

	t.Run("json output", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:   testConfig(),
			Source:   &tu.MockSetlistSource{Setlist: setlist},
			Searcher: searcher(),
			Output:   output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "convert", "--dry-run", "--json", setlist.URL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), `"MatchedCount":2`) {
			t.Errorf("expected JSON result, got %s", output.String())
		}
	})

	t.Run("rejects invalid privacy", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:   testConfig(),
			Source:   &tu.MockSetlistSource{Setlist: setlist},
			Searcher: searcher(),
			Output:   &bytes.Buffer{},
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "convert", "--dry-run", "-p", "friends-only", setlist.URL})
		if err == nil {
			t.Fatal("expected error for invalid privacy value")
		}
	})

	t.Run("requires url argument", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:   testConfig(),
			Source:   &tu.MockSetlistSource{Setlist: setlist},
			Searcher: searcher(),
			Output:   &bytes.Buffer{},
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "convert", "--dry-run"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("propagates fetch failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:   testConfig(),
			Source:   &tu.MockSetlistSource{Err: shared.ErrSetlistNotFound},
			Searcher: searcher(),
			Output:   &bytes.Buffer{},
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "convert", "--dry-run", setlist.URL})
		if !errors.Is(err, shared.ErrSetlistNotFound) {
			t.Errorf("expected ErrSetlistNotFound, got %v", err)
		}
	})
}

func TestSetlistCommand(t *testing.T) {
	setlist := testSetlist()

	t.Run("prints track listing", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(),
			Source: &tu.MockSetlistSource{Setlist: setlist},
			Output: output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "setlist", "show", setlist.URL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "1. Dream Brother") {
			t.Errorf("expected numbered song line, got %s", result)
		}
		if !strings.Contains(result, "2. Hallelujah (Leonard Cohen cover)") {
			t.Errorf("expected cover annotation, got %s", result)
		}
	})

	t.Run("renders markdown", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(),
			Source: &tu.MockSetlistSource{Setlist: setlist},
			Output: output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "setlist", "show", "--markdown", setlist.URL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "# Jeff Buckley") {
			t.Errorf("expected markdown heading, got %s", output.String())
		}
	})

	t.Run("saves to file", func(t *testing.T) {
		outputFile := filepath.Join(t.TempDir(), "setlist.txt")
		runner := NewRunner(RunnerOpts{
			Config: testConfig(),
			Source: &tu.MockSetlistSource{Setlist: setlist},
			Output: &bytes.Buffer{},
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "setlist", "show", "-o", outputFile, setlist.URL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, outputFile)
		if !strings.Contains(tu.MustReadFile(t, outputFile), "Dream Brother") {
			t.Error("expected setlist content in file")
		}
	})

	t.Run("requires url argument", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config: testConfig(),
			Source: &tu.MockSetlistSource{Setlist: setlist},
			Output: &bytes.Buffer{},
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "setlist", "show"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestAuthCommand(t *testing.T) {
	t.Run("status reports missing token", func(t *testing.T) {
		output := &bytes.Buffer{}
		tokens := services.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		runner := NewRunner(RunnerOpts{
			Config: testConfig(),
			Tokens: tokens,
			Output: output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "auth", "status"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "✗ Not authenticated") {
			t.Errorf("expected unauthenticated status, got %s", output.String())
		}
	})

	t.Run("status reports stored token", func(t *testing.T) {
		output := &bytes.Buffer{}
		tokens := services.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		if err := tokens.Save(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		runner := NewRunner(RunnerOpts{
			Config: testConfig(),
			Tokens: tokens,
			Output: output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "auth", "status"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "✓ Authenticated") {
			t.Errorf("expected authenticated status, got %s", result)
		}
		if !strings.Contains(result, "Refresh token: present") {
			t.Errorf("expected refresh token line, got %s", result)
		}
	})

	t.Run("logout removes token", func(t *testing.T) {
		output := &bytes.Buffer{}
		tokenPath := filepath.Join(t.TempDir(), "token.json")
		tokens := services.NewTokenStore(tokenPath)
		if err := tokens.Save(&oauth2.Token{AccessToken: "access"}); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		runner := NewRunner(RunnerOpts{
			Config: testConfig(),
			Tokens: tokens,
			Output: output,
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "auth", "logout"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
			t.Error("expected token file to be removed")
		}
		if !strings.Contains(output.String(), "✓ Logged out") {
			t.Errorf("expected logout confirmation, got %s", output.String())
		}
	})

	t.Run("login requires credentials", func(t *testing.T) {
		config := testConfig()
		config.Credentials.Google.ClientID = ""
		config.Credentials.Google.ClientSecret = ""

		runner := NewRunner(RunnerOpts{
			Config: config,
			Tokens: services.NewTokenStore(filepath.Join(t.TempDir(), "token.json")),
			Output: &bytes.Buffer{},
		})

		err := testApp(runner).Run(context.Background(), []string{"encore", "auth", "login"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
