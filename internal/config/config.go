package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mediafold/mediafold/internal/authority"
	"github.com/mediafold/mediafold/internal/media"
	"github.com/mediafold/mediafold/internal/normalize"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	HealthStore HealthStoreConfig `yaml:"health_store"`
	TMDB        TMDBConfig        `yaml:"tmdb"`
	Enrichment  EnrichmentConfig  `yaml:"enrichment"`
	Authority   AuthorityConfig   `yaml:"authority"`
	Preferences PreferencesConfig `yaml:"preferences"`
}

type ServerConfig struct {
	HTTPPort    int `yaml:"http_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type HealthStoreConfig struct {
	Path string `yaml:"path"`
}

type TMDBConfig struct {
	APIKey string `yaml:"api_key"`
}

type EnrichmentConfig struct {
	Workers int `yaml:"workers"`
}

// AuthorityConfig tunes the matcher's caches and decision thresholds.
// Zero values mean "use the default".
type AuthorityConfig struct {
	DetailsCacheSize int `yaml:"details_cache_size"`
	SearchCacheSize  int `yaml:"search_cache_size"`
	DetailsTTLHours  int `yaml:"details_ttl_hours"`
	SearchTTLHours   int `yaml:"search_ttl_hours"`
	AcceptScore      int `yaml:"accept_score"`
	AcceptMargin     int `yaml:"accept_margin"`
}

// PreferencesConfig shapes variant ranking.
type PreferencesConfig struct {
	PreferredLanguages          []string       `yaml:"preferred_languages"`
	PreferOriginalWithSubtitles bool           `yaml:"prefer_original_with_subtitles"`
	QualityWeights              map[string]int `yaml:"quality_weights"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:    4444,
			MetricsPort: 9090,
		},
		Database: DatabaseConfig{
			Path: "./data/mediafold.db",
		},
		HealthStore: HealthStoreConfig{
			Path: "./data/health",
		},
		Enrichment: EnrichmentConfig{
			Workers: 4,
		},
	}
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fails fast on configuration that would only surface as broken
// behavior later.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics_port %d", c.Server.MetricsPort)
	}
	if c.Enrichment.Workers <= 0 {
		return fmt.Errorf("enrichment workers must be positive, got %d", c.Enrichment.Workers)
	}
	if err := c.NormalizePreferences().Validate(); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	if err := c.AuthorityMatcher().Validate(); err != nil {
		return fmt.Errorf("invalid authority config: %w", err)
	}
	return nil
}

// NormalizePreferences converts the YAML preference block into ranking
// preferences, filling unset fields from the defaults.
func (c *Config) NormalizePreferences() normalize.Preferences {
	prefs := normalize.DefaultPreferences()
	if len(c.Preferences.PreferredLanguages) > 0 {
		prefs.PreferredLanguages = c.Preferences.PreferredLanguages
	}
	prefs.PreferOriginalWithSubtitles = c.Preferences.PreferOriginalWithSubtitles
	for tag, weight := range c.Preferences.QualityWeights {
		prefs.QualityWeights[media.QualityTag(tag)] = weight
	}
	return prefs
}

// AuthorityMatcher converts the YAML authority block into a matcher config,
// filling unset fields from the defaults.
func (c *Config) AuthorityMatcher() authority.Config {
	cfg := authority.DefaultConfig()
	if c.Authority.DetailsCacheSize > 0 {
		cfg.DetailsCacheSize = c.Authority.DetailsCacheSize
	}
	if c.Authority.SearchCacheSize > 0 {
		cfg.SearchCacheSize = c.Authority.SearchCacheSize
	}
	if c.Authority.DetailsTTLHours > 0 {
		cfg.DetailsTTL = time.Duration(c.Authority.DetailsTTLHours) * time.Hour
	}
	if c.Authority.SearchTTLHours > 0 {
		cfg.SearchTTL = time.Duration(c.Authority.SearchTTLHours) * time.Hour
	}
	if c.Authority.AcceptScore > 0 {
		cfg.AcceptScore = c.Authority.AcceptScore
	}
	if c.Authority.AcceptMargin > 0 {
		cfg.AcceptMargin = c.Authority.AcceptMargin
	}
	return cfg
}

// EnsureDirectories creates required directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
		c.HealthStore.Path,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}
