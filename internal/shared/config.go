package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	YouTube     YouTubeConfig     `toml:"youtube"`
	Playlist    PlaylistConfig    `toml:"playlist"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	SetlistFM SetlistFMConfig `toml:"setlistfm"`
	Google    GoogleConfig    `toml:"google"`
}

// SetlistFMConfig contains the setlist.fm API key.
type SetlistFMConfig struct {
	APIKey string `toml:"api_key"`
}

// GoogleConfig contains Google OAuth2 client credentials for the YouTube Data API.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// YouTubeConfig contains YouTube Data API settings.
type YouTubeConfig struct {
	RegionCode string `toml:"region_code"`
	TokenPath  string `toml:"token_path"`
}

// PlaylistConfig contains defaults for created playlists.
type PlaylistConfig struct {
	Privacy string `toml:"privacy"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path, then overlays credentials from the environment (see [ApplyEnv]).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the
// embedded example config, with environment overrides applied.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotenv loads a .env file from the working directory when present.
// Missing files are not an error; credentials may come from the config file.
func LoadDotenv() {
	_ = godotenv.Load()
}

// ApplyEnv overlays credentials and settings from environment variables.
// Environment values win over file values so that keys can stay out of
// checked-in config files.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SETLISTFM_API_KEY"); v != "" {
		c.Credentials.SetlistFM.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.Credentials.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		c.Credentials.Google.ClientSecret = v
	}
	if v := os.Getenv("YOUTUBE_REGION_CODE"); v != "" {
		c.YouTube.RegionCode = v
	}
}

// TokenPath returns the OAuth token file location, defaulting to
// ~/.encore/token.json when unset in the config.
func (c *Config) TokenPath() (string, error) {
	if c.YouTube.TokenPath != "" {
		return c.YouTube.TokenPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".encore", "token.json"), nil
}
