package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Rotation RotationConfig `toml:"rotation"`
	Sync     SyncConfig     `toml:"sync"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RotationConfig contains playlist generation settings: run sizing, classifier
// thresholds, and the ordered category table.
type RotationConfig struct {
	PlaylistName    string           `toml:"playlist_name"`
	TargetMinutes   int              `toml:"target_minutes"`
	AvgTrackMinutes float64          `toml:"avg_track_minutes"`
	RecentPlayFloor int              `toml:"recent_play_floor"`
	MaxDiscoveryAge int              `toml:"max_discovery_age_months"`
	Categories      []CategoryConfig `toml:"categories"`
}

// CategoryConfig describes one lifecycle category: its share of the generated
// playlist, the minimum artist spacing, and the fallback category used when the
// pool runs dry. Fallback may be empty for "none".
type CategoryConfig struct {
	Name     string  `toml:"name"`
	Percent  float64 `toml:"percent"`
	Spacing  int     `toml:"spacing"`
	Fallback string  `toml:"fallback"`
}

// SyncConfig contains settings for pushing generated playlists to the external
// sync proxy.
type SyncConfig struct {
	ProxyURL  string  `toml:"proxy_url"`
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
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
