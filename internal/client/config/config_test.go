package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvServerURL, EnvRequestTimeout, EnvDatabasePath, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{
		ServerURL:      "http://localhost:8000",
		RequestTimeout: 30 * time.Second,
		DatabasePath:   ".briefly/session.db",
		LogLevel:       "warn",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, c.Validate())
}

func TestLoad_NilFlagSetUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestLoad_JSONFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "cfg.json", `{"server_url":"https://api.example.org","request_timeout":"5s","database_path":"/tmp/s.db"}`)

	cfg, err := load(newFlags(t, "-c", path), "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.org", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/s.db", cfg.DatabasePath)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRIEFLY_TEST_HOST", "yaml.example.org")
	path := writeFile(t, "cfg.yaml", "server_url: http://${BRIEFLY_TEST_HOST}:8000\nrequest_timeout: 45s\nlog_level: debug\n")

	cfg, err := load(newFlags(t, "--config", path), "")
	require.NoError(t, err)

	assert.Equal(t, "http://yaml.example.org:8000", cfg.ServerURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.json")},
		{"bad json", writeFile(t, "bad.json", `{ this is not valid json`)},
		{"bad yaml", writeFile(t, "bad.yml", "server_url: [unclosed\n")},
		{"bad duration", writeFile(t, "dur.json", `{"request_timeout":"soon"}`)},
		{"unknown extension", writeFile(t, "cfg.toml", `server_url = "x"`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(newFlags(t, "-c", tt.path), "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "cfg.json", `{"server_url":"https://file.example.org","request_timeout":"5s"}`)
	t.Setenv(EnvServerURL, "https://env.example.org")
	t.Setenv(EnvRequestTimeout, "12s")
	t.Setenv(EnvDatabasePath, "env.db")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := load(newFlags(t, "-c", path), "")
	require.NoError(t, err)

	want := &Config{
		ServerURL:      "https://env.example.org",
		RequestTimeout: 12 * time.Second,
		DatabasePath:   "env.db",
		LogLevel:       "error",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_DotEnvFillsUnsetVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "debug")
	envFile := writeFile(t, ".env", "BRIEFLY_SERVER_URL=https://dotenv.example.org\nBRIEFLY_LOG_LEVEL=error\n")

	cfg, err := load(nil, envFile)
	require.NoError(t, err)

	assert.Equal(t, "https://dotenv.example.org", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel, "process environment wins over .env")
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	clearEnv(t)
	_, err := load(nil, filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoad_BadEnvTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRequestTimeout, "abc")

	_, err := load(nil, "")
	assert.ErrorContains(t, err, EnvRequestTimeout)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvServerURL, "https://env.example.org")
	path := writeFile(t, "cfg.json", `{"server_url":"https://file.example.org","log_level":"error"}`)

	cfg, err := load(newFlags(t, "-c", path, "-a", "http://127.0.0.1:9000", "-t", "3s", "-d", "x.db", "-l", "info"), "")
	require.NoError(t, err)

	want := &Config{
		ServerURL:      "http://127.0.0.1:9000",
		RequestTimeout: 3 * time.Second,
		DatabasePath:   "x.db",
		LogLevel:       "info",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvServerURL, "https://env.example.org")

	cfg, err := load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org", cfg.ServerURL)
}

func TestValidate(t *testing.T) {
	base := Config{}
	base.LoadDefaults()

	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"no scheme", func(c *Config) { c.ServerURL = "localhost:8000" }},
		{"no host", func(c *Config) { c.ServerURL = "http://" }},
		{"bad scheme", func(c *Config) { c.ServerURL = "grpc://localhost" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.edit(&c)
			assert.Error(t, c.Validate())
		})
	}
}
