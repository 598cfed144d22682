package config

import (
	"github.com/spf13/pflag"
)

const (
	flagServer   = "server"
	flagTimeout  = "timeout"
	flagDatabase = "db"
	flagLogLevel = "log-level"
	flagConfig   = "config"
)

// RegisterFlags adds the configuration flags to fs. Their defaults are only
// shown in help: a flag overrides other sources only when set explicitly.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(flagServer, "a", DefaultServerURL, "base URL of the Briefly backend")
	fs.DurationP(flagTimeout, "t", DefaultRequestTimeout, "per-request timeout")
	fs.StringP(flagDatabase, "d", DefaultDatabasePath, "path of the local session database")
	fs.StringP(flagLogLevel, "l", DefaultLogLevel, "log level: debug, info, warn or error")
	fs.StringP(flagConfig, "c", "", "path of a JSON or YAML config file")
}

func configPath(fs *pflag.FlagSet) string {
	if fs == nil || fs.Lookup(flagConfig) == nil {
		return ""
	}
	path, _ := fs.GetString(flagConfig)
	return path
}

// applyFlags overlays cfg with the flags explicitly set on fs.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	var err error
	if fs.Changed(flagServer) {
		if cfg.ServerURL, err = fs.GetString(flagServer); err != nil {
			return err
		}
	}
	if fs.Changed(flagTimeout) {
		if cfg.RequestTimeout, err = fs.GetDuration(flagTimeout); err != nil {
			return err
		}
	}
	if fs.Changed(flagDatabase) {
		if cfg.DatabasePath, err = fs.GetString(flagDatabase); err != nil {
			return err
		}
	}
	if fs.Changed(flagLogLevel) {
		if cfg.LogLevel, err = fs.GetString(flagLogLevel); err != nil {
			return err
		}
	}
	return nil
}
