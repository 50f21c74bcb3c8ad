package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Catalog CatalogConfig `yaml:"catalog" envconfig:"CATALOG"`
	Remote  RemoteConfig  `yaml:"remote" envconfig:"REMOTE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// CatalogConfig contains the price dataset configuration
type CatalogConfig struct {
	// DataDir is the directory scanned for spreadsheet price exports.
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	// LabelOverrides maps a derived canonical expansion label to the
	// display label shown to users (e.g. a localized name).
	LabelOverrides map[string]string `yaml:"label_overrides" envconfig:"LABEL_OVERRIDES"`
}

// RemoteConfig locates the versioned favorites document in a
// source-control content API. All fields are independently configurable;
// leaving Token or Repo empty is a valid state that routes favorites to
// the local fallback file instead.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.github.com"`
	Repo    string        `yaml:"repo" envconfig:"REPO"`
	Branch  string        `yaml:"branch" envconfig:"BRANCH" default:"main"`
	Path    string        `yaml:"path" envconfig:"PATH" default:"data/favorites.json"`
	Token   string        `yaml:"token" envconfig:"TOKEN"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"20s"`
}

// IsConfigured reports whether the remote backend has enough
// configuration to be attempted at all.
func (r RemoteConfig) IsConfigured() bool {
	return r.Token != "" && r.Repo != ""
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CARDS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Overlay from config file if one exists; env values win.
	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// merge fills zero-valued env config fields from the file config.
func merge(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Catalog.DataDir == "" {
		envCfg.Catalog.DataDir = fileCfg.Catalog.DataDir
	}
	if len(envCfg.Catalog.LabelOverrides) == 0 {
		envCfg.Catalog.LabelOverrides = fileCfg.Catalog.LabelOverrides
	}
	if envCfg.Remote.Repo == "" {
		envCfg.Remote.Repo = fileCfg.Remote.Repo
	}
	if envCfg.Remote.Token == "" {
		envCfg.Remote.Token = fileCfg.Remote.Token
	}
	if envCfg.Remote.Branch == "" || envCfg.Remote.Branch == "main" {
		if fileCfg.Remote.Branch != "" {
			envCfg.Remote.Branch = fileCfg.Remote.Branch
		}
	}
	if fileCfg.Remote.Path != "" && envCfg.Remote.Path == "data/favorites.json" {
		envCfg.Remote.Path = fileCfg.Remote.Path
	}
	return envCfg
}

// resolvePaths makes the data directory absolute so discovery and the
// local favorites file agree on a location regardless of working dir.
func (c *Config) resolvePaths() error {
	abs, err := filepath.Abs(c.Catalog.DataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data dir %s: %w", c.Catalog.DataDir, err)
	}
	c.Catalog.DataDir = abs
	return nil
}

// LocalFavoritesPath returns the hidden local fallback document path,
// kept alongside the input spreadsheets.
func (c *Config) LocalFavoritesPath() string {
	return filepath.Join(c.Catalog.DataDir, ".favorites_local.json")
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote backend timeout must be positive")
	}

	if c.Catalog.DataDir == "" {
		return fmt.Errorf("catalog data dir must not be empty")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	return nil
}

// findConfigFile returns the path to the config file, if any
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Catalog: CatalogConfig{
			DataDir: "data",
		},
		Remote: RemoteConfig{
			BaseURL: "https://api.github.com",
			Branch:  "main",
			Path:    "data/favorites.json",
			Timeout: 20 * time.Second,
		},
	}
}
