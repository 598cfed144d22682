package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/briefly/internal/logging"
	"github.com/spf13/pflag"
)

const (
	DefaultServerURL      = "http://localhost:8000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultDatabasePath   = ".briefly/session.db"
	DefaultLogLevel       = "warn"

	defaultEnvFile = ".env"
)

// Config holds runtime settings for the Briefly CLI.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	DatabasePath   string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = DefaultServerURL
	c.RequestTimeout = DefaultRequestTimeout
	c.DatabasePath = DefaultDatabasePath
	c.LogLevel = DefaultLogLevel
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.ServerURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q: want http(s)://host[:port]", c.ServerURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout %s: must be positive", c.RequestTimeout)
	}
	if c.DatabasePath == "" {
		return errors.New("database path is empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Load builds a Config from defaults, the config file, the environment and
// the flags registered on fs by RegisterFlags. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, defaultEnvFile)
}

func load(fs *pflag.FlagSet, envFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := configPath(fs); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := loadEnv(cfg, envFile); err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
