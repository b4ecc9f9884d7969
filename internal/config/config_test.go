package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "corepool.json5"), envMap(nil))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	delay, err := cfg.Scraper.RetryDelayDuration()
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, delay)
	timeout, err := cfg.Scraper.TimeoutDuration()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, timeout)
	require.Equal(t, 0, cfg.Scraper.MaxAttempts)
	require.Equal(t, "scraper.object", cfg.Scraper.ClientPath())
	require.Equal(t, "cookies.object", cfg.Scraper.CookiesPath())

	require.Error(t, cfg.Validate())
}

func TestFileEnvAndLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corepool.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// checked in
		username: "from-file",
		password: "file-password",
		metrics_file_path: "/var/lib/node_exporter/corepool.prom",
		scraper: {
			retry_delay: "10s",
			max_attempts: 3,
		},
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corepool.local.json5"), []byte(`{
		password: "local-password",
	}`), 0600))

	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		EnvUsername: "from-env",
		EnvStateDir: "/var/lib/corepool",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "from-env", cfg.Username)
	require.Equal(t, "local-password", cfg.Password)
	require.Equal(t, "/var/lib/node_exporter/corepool.prom", cfg.MetricsFilePath)
	require.Equal(t, "10s", cfg.Scraper.RetryDelay)
	require.Equal(t, 3, cfg.Scraper.MaxAttempts)
	require.Equal(t, "https://core-pool.com", cfg.Scraper.BaseUrl)
	require.Equal(t, "/var/lib/corepool/scraper.object", cfg.Scraper.ClientPath())
	require.Equal(t, "/var/lib/corepool/cookies.object", cfg.Scraper.CookiesPath())
}

func TestEnvOnly(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.json5"), envMap(map[string]string{
		EnvUsername:    "farmer",
		EnvPassword:    "secret",
		EnvMetricsFile: "corepool.prom",
		EnvBaseUrl:     "http://127.0.0.1:8080",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "corepool.prom", cfg.MetricsFilePath)
	require.Equal(t, "http://127.0.0.1:8080", cfg.Scraper.BaseUrl)
}

func TestRequestLimit(t *testing.T) {
	table := []struct {
		name     string
		file     string
		expected float64
	}{
		{name: "unset", file: `{}`, expected: 2},
		{name: "zero falls back", file: `{ scraper: { requests_per_second: 0 } }`, expected: 2},
		{name: "explicit", file: `{ scraper: { requests_per_second: 0.5 } }`, expected: 0.5},
		{name: "negative disables", file: `{ scraper: { requests_per_second: -1 } }`, expected: 0},
	}
	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "corepool.json5")
			require.NoError(t, os.WriteFile(path, []byte(row.file), 0600))

			cfg, err := LoadWithEnv(path, envMap(map[string]string{
				EnvUsername: "farmer",
				EnvPassword: "secret",
			}))
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())
			require.Equal(t, row.expected, cfg.Scraper.RequestLimit())
		})
	}
}

func TestInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corepool.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{ username: `), 0600))

	_, err := LoadWithEnv(path, envMap(nil))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Username = "farmer"
	valid.Password = "secret"
	require.NoError(t, valid.Validate())

	table := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing username", mutate: func(c *Config) { c.Username = "" }},
		{name: "missing password", mutate: func(c *Config) { c.Password = "" }},
		{name: "bad delay", mutate: func(c *Config) { c.Scraper.RetryDelay = "soon" }},
		{name: "zero delay", mutate: func(c *Config) { c.Scraper.RetryDelay = "0s" }},
		{name: "bad timeout", mutate: func(c *Config) { c.Scraper.Timeout = "later" }},
		{name: "negative attempts", mutate: func(c *Config) { c.Scraper.MaxAttempts = -1 }},
	}
	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			cfg := valid
			row.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
