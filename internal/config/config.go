package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration for the mailcore engine host.
type Config struct {
	// List endpoint the poller fetches from
	Endpoint string `json:"endpoint"`

	// Folder requested on every list call
	Folder string `json:"folder"`

	// Page size for the list call
	PageSize int `json:"page_size"`

	// Poll interval, e.g. "60s"
	PollInterval string `json:"poll_interval"`

	// Session database path (bootstrap key/value store)
	SessionDB string `json:"session_db"`

	// Optional YAML file overriding the system-label section rules
	SectionRules string `json:"section_rules"`

	// Logging
	LogFile string `json:"log_file"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Folder:       "inbox",
		PageSize:     50,
		PollInterval: "60s",
		SessionDB:    filepath.Join(defaultConfigDir(), "session.db"),
	}
}

// LoadConfig reads a JSON config file and fills unset fields from defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Folder == "" {
		cfg.Folder = "inbox"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.PollInterval == "" {
		cfg.PollInterval = "60s"
	}
	return cfg, nil
}

// Interval parses the poll interval, falling back to one minute.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// DefaultConfigPath returns the config file path, honoring the
// MAILCORE_CONFIG environment variable.
func DefaultConfigPath() string {
	if p := os.Getenv("MAILCORE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(defaultConfigDir(), "config.json")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailcore")
}
