package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()
		if config == nil {
			t.Fatal("expected default config")
		}
		if config.Playlist.Privacy != "private" {
			t.Errorf("expected default privacy 'private', got %s", config.Playlist.Privacy)
		}
		if config.Database.Path == "" {
			t.Error("expected a default database path")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("parses a valid file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[credentials.setlistfm]
api_key = "abc123"

[credentials.google]
client_id = "id"
client_secret = "secret"

[youtube]
region_code = "GB"

[playlist]
privacy = "unlisted"

[database]
path = "test.db"
max_open_conns = 3
max_idle_conns = 1
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Credentials.SetlistFM.APIKey != "abc123" {
				t.Errorf("expected api_key abc123, got %s", config.Credentials.SetlistFM.APIKey)
			}
			if config.YouTube.RegionCode != "GB" {
				t.Errorf("expected region GB, got %s", config.YouTube.RegionCode)
			}
			if config.Playlist.Privacy != "unlisted" {
				t.Errorf("expected privacy unlisted, got %s", config.Playlist.Privacy)
			}
		})

		t.Run("fails on missing file", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
				t.Fatal("expected error for missing file")
			}
		})

		t.Run("fails on malformed TOML", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte("[[[not toml"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error for malformed TOML")
			}
		})
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("SETLISTFM_API_KEY", "env-key")
		t.Setenv("YOUTUBE_REGION_CODE", "DE")

		config := &Config{}
		config.ApplyEnv()

		if config.Credentials.SetlistFM.APIKey != "env-key" {
			t.Errorf("expected env api key, got %s", config.Credentials.SetlistFM.APIKey)
		}
		if config.YouTube.RegionCode != "DE" {
			t.Errorf("expected env region DE, got %s", config.YouTube.RegionCode)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected config file to exist: %v", err)
		}

		t.Run("refuses to overwrite", func(t *testing.T) {
			if err := CreateConfigFile(path); err == nil {
				t.Fatal("expected error for existing file")
			}
		})
	})

	t.Run("TokenPath", func(t *testing.T) {
		t.Run("explicit path wins", func(t *testing.T) {
			config := &Config{YouTube: YouTubeConfig{TokenPath: "/tmp/token.json"}}
			path, err := config.TokenPath()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if path != "/tmp/token.json" {
				t.Errorf("expected explicit token path, got %s", path)
			}
		})

		t.Run("defaults under home", func(t *testing.T) {
			config := &Config{}
			path, err := config.TokenPath()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if filepath.Base(path) != "token.json" {
				t.Errorf("expected token.json default, got %s", path)
			}
		})
	})
}
