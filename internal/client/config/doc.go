// Package config loads runtime configuration for the Briefly CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c/--config.
//  3. Environment variables, with a .env file in the working directory
//     filling in variables the process environment does not set.
//  4. Command-line flags, which override everything else.
//
// Flags
//
//	-a, --server string       base URL of the Briefly backend
//	-t, --timeout duration    per-request timeout
//	-d, --db string           path of the local session database
//	-l, --log-level string    debug, info, warn or error
//	-c, --config string       path of a JSON or YAML config file
//
// Environment
//
//	BRIEFLY_SERVER_URL, BRIEFLY_REQUEST_TIMEOUT, BRIEFLY_DB_PATH, BRIEFLY_LOG_LEVEL
//
// # File schema
//
// Durations accept strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "request_timeout": "30s",
//	  "database_path": ".briefly/session.db",
//	  "log_level": "info"
//	}
package config
