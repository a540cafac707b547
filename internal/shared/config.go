package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// TMDBAPIKeyEnv overrides credentials.tmdb.api_key when set.
const TMDBAPIKeyEnv = "TMDB_API_KEY"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Player      PlayerConfig      `toml:"player"`
	Export      ExportConfig      `toml:"export"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	TMDB TMDBConfig `toml:"tmdb"`
}

// TMDBConfig contains TMDB API credentials and request defaults.
type TMDBConfig struct {
	APIKey       string  `toml:"api_key"`
	AccessToken  string  `toml:"access_token"`
	BaseURL      string  `toml:"base_url"`
	ImageBaseURL string  `toml:"image_base_url"`
	Language     string  `toml:"language"`
	Region       string  `toml:"region"`
	RateLimit    float64 `toml:"rate_limit"`
}

// DatabaseConfig contains key-value store connection settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig contains playback session settings.
type PlayerConfig struct {
	ProgressInterval Duration `toml:"progress_interval"`
	DefaultQuality   string   `toml:"default_quality"`
}

// ExportConfig contains defaults for library exports.
type ExportConfig struct {
	Format    string  `toml:"format"`
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// Duration wraps [time.Duration] so it can be written as "10s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.applyEnv()

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

func (c *Config) applyEnv() {
	if key := os.Getenv(TMDBAPIKeyEnv); key != "" {
		c.Credentials.TMDB.APIKey = key
	}
}

// HasTMDBCredentials reports whether a usable API key or access token is configured.
func (c *Config) HasTMDBCredentials() bool {
	t := c.Credentials.TMDB
	if t.AccessToken != "" {
		return true
	}
	return t.APIKey != "" && t.APIKey != "your_tmdb_api_key"
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
