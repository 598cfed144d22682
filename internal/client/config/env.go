package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvServerURL      = "BRIEFLY_SERVER_URL"
	EnvRequestTimeout = "BRIEFLY_REQUEST_TIMEOUT"
	EnvDatabasePath   = "BRIEFLY_DB_PATH"
	EnvLogLevel       = "BRIEFLY_LOG_LEVEL"
)

// loadEnv overlays cfg with BRIEFLY_* variables. Values from envFile only
// fill in what the process environment leaves unset; a missing file is
// ignored.
func loadEnv(cfg *Config, envFile string) error {
	dotenv := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = vars
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	if v := lookup(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := lookup(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if v := lookup(EnvDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}
