// Package config loads and validates the sync tool's YAML configuration and
// the API credentials from the environment.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	API          APISettings   `yaml:"api"`
	Sync         Sync          `yaml:"sync"`
	Storage      Storage       `yaml:"storage"`
	Institutions []Institution `yaml:"monitored_institutions"`
	Logging      Logging       `yaml:"logging"`
}

// APISettings controls the vendor API client and its retry behavior.
type APISettings struct {
	BaseURL                string   `yaml:"base_url"`
	IndustryCategories     []string `yaml:"industry_categories"`
	TranscriptTypes        []string `yaml:"transcript_types"`
	SortOrder              []string `yaml:"sort_order"`
	PaginationLimit        int      `yaml:"pagination_limit"`
	PaginationOffset       int      `yaml:"pagination_offset"`
	RequestDelaySeconds    float64  `yaml:"request_delay_seconds"`
	MaxRetries             int      `yaml:"max_retries"`
	RetryDelaySeconds      float64  `yaml:"retry_delay_seconds"`
	UseExponentialBackoff  bool     `yaml:"use_exponential_backoff"`
	MaxBackoffDelaySeconds float64  `yaml:"max_backoff_delay_seconds"`
	TimeoutSeconds         float64  `yaml:"timeout_seconds"`
}

// Sync holds run-scoping options.
type Sync struct {
	// StartYear bounds queries from January 1 of that year. Zero means a
	// rolling three-year window ending today.
	StartYear int `yaml:"start_year"`
}

// Storage locates the transcript archive and the run-history database.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	RunLogPath string `yaml:"run_log_path"`
}

// Institution is one monitored company. Institutions are processed in list
// order.
type Institution struct {
	Ticker string `yaml:"ticker"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConfigDir returns the XDG config directory for transcriptsync.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "transcriptsync")
}

// DataDir returns the XDG data directory for transcriptsync.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "transcriptsync")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/transcriptsync/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'transcriptsync init' to create a default config",
		xdgConfig,
	)
}

// Load reads, parses, and validates a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		API: APISettings{
			TranscriptTypes:        []string{"Corrected", "Final"},
			SortOrder:              []string{"-storyDateTime"},
			PaginationLimit:        1000,
			RequestDelaySeconds:    2,
			MaxRetries:             3,
			RetryDelaySeconds:      5,
			UseExponentialBackoff:  true,
			MaxBackoffDelaySeconds: 120,
			TimeoutSeconds:         30,
		},
		Logging: Logging{Level: "info", Format: "console"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required settings are present and sane. Validation
// failures are fatal at startup, before any institution is processed.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if len(c.API.TranscriptTypes) == 0 {
		return fmt.Errorf("config: api.transcript_types cannot be empty")
	}
	if c.API.MaxRetries < 1 {
		return fmt.Errorf("config: api.max_retries must be at least 1")
	}
	if c.API.PaginationLimit < 1 {
		return fmt.Errorf("config: api.pagination_limit must be at least 1")
	}
	if len(c.Institutions) == 0 {
		return fmt.Errorf("config: monitored_institutions cannot be empty")
	}
	for i, inst := range c.Institutions {
		if inst.Ticker == "" || inst.Name == "" || inst.Type == "" {
			return fmt.Errorf("config: monitored_institutions[%d] needs ticker, name, and type", i)
		}
	}
	if y := c.Sync.StartYear; y != 0 {
		current := time.Now().Year()
		if y < 2000 || y > current {
			return fmt.Errorf("config: sync.start_year %d must be between 2000 and %d", y, current)
		}
	}
	return nil
}

// GetDataDir returns the effective transcript archive root.
func (c *Config) GetDataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return filepath.Join(DataDir(), "data")
}

// GetRunLogPath returns the effective run-history database path.
func (c *Config) GetRunLogPath() string {
	if c.Storage.RunLogPath != "" {
		return c.Storage.RunLogPath
	}
	return filepath.Join(DataDir(), "runs.db")
}

// RequestDelay is the rate-limit pause applied after every download attempt
// and between institutions.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.API.RequestDelaySeconds * float64(time.Second))
}

// RetryDelay is the base delay between retry attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.API.RetryDelaySeconds * float64(time.Second))
}

// MaxBackoffDelay caps the exponential backoff delay.
func (c *Config) MaxBackoffDelay() time.Duration {
	return time.Duration(c.API.MaxBackoffDelaySeconds * float64(time.Second))
}

// Timeout is the request-level timeout for API calls.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds * float64(time.Second))
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
