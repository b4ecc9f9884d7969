// Package config loads the exporter configuration from json5 files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"corepool-exporter/lib/configutil"
	"corepool-exporter/lib/telemetry"
)

const (
	EnvUsername    = "CORE_POOL_USERNAME"
	EnvPassword    = "CORE_POOL_PASSWORD"
	EnvMetricsFile = "METRICS_FILE_PATH"
	EnvBaseUrl     = "CORE_POOL_BASE_URL"
	EnvStateDir    = "CORE_POOL_STATE_DIR"
)

type ScraperConfig struct {
	BaseUrl string `json:"base_url"`
	// StateDir is where ClientFile and CookiesFile live when they are relative.
	StateDir    string `json:"state_dir"`
	ClientFile  string `json:"client_file"`
	CookiesFile string `json:"cookies_file"`
	// RetryDelay is the wait between two challenge attempts, like "5s".
	RetryDelay string `json:"retry_delay"`
	// MaxAttempts caps the challenge attempts, 0 retries until it passes.
	MaxAttempts int    `json:"max_attempts"`
	Timeout     string `json:"timeout"`
	// RequestsPerSecond limits outgoing requests, 0 falls back to the default and a
	// negative value disables the limit.
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type Config struct {
	Username        string           `json:"username"`
	Password        string           `json:"password"`
	MetricsFilePath string           `json:"metrics_file_path"`
	Scraper         ScraperConfig    `json:"scraper"`
	Telemetry       telemetry.Config `json:"telemetry"`
}

func Default() Config {
	return Config{
		Scraper: ScraperConfig{
			BaseUrl:           "https://core-pool.com",
			StateDir:          ".",
			ClientFile:        "scraper.object",
			CookiesFile:       "cookies.object",
			RetryDelay:        "5s",
			Timeout:           "30s",
			RequestsPerSecond: 2,
		},
	}
}

// Load reads path (and its .local override) if it exists, applies the environment over
// it and fills what is still missing from Default. A missing file is not an error.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	env := Config{
		Username:        getenv(EnvUsername),
		Password:        getenv(EnvPassword),
		MetricsFilePath: getenv(EnvMetricsFile),
		Scraper: ScraperConfig{
			BaseUrl:  getenv(EnvBaseUrl),
			StateDir: getenv(EnvStateDir),
		},
	}
	err = configutil.Override(&cfg, env)
	if err != nil {
		return Config{}, fmt.Errorf("apply environment: %w", err)
	}

	err = configutil.Defaults(&cfg, Default())
	if err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

// Validate checks what a scrape needs, commands that never log in do not call it.
func (c Config) Validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, fmt.Errorf("username is required (%s)", EnvUsername))
	}
	if c.Password == "" {
		errs = append(errs, fmt.Errorf("password is required (%s)", EnvPassword))
	}
	if c.Scraper.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("scraper.max_attempts must not be negative"))
	}
	delay, err := c.Scraper.RetryDelayDuration()
	if err != nil {
		errs = append(errs, err)
	} else if delay <= 0 {
		errs = append(errs, fmt.Errorf("scraper.retry_delay must be positive"))
	}
	_, err = c.Scraper.TimeoutDuration()
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s ScraperConfig) RetryDelayDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.RetryDelay)
	if err != nil {
		return 0, fmt.Errorf("scraper.retry_delay: %w", err)
	}
	return d, nil
}

func (s ScraperConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("scraper.timeout: %w", err)
	}
	return d, nil
}

// RequestLimit is the rate handed to the client, where 0 means unlimited.
func (s ScraperConfig) RequestLimit() float64 {
	if s.RequestsPerSecond < 0 {
		return 0
	}
	return s.RequestsPerSecond
}

func (s ScraperConfig) ClientPath() string {
	return s.resolve(s.ClientFile)
}

func (s ScraperConfig) CookiesPath() string {
	return s.resolve(s.CookiesFile)
}

func (s ScraperConfig) resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.StateDir, file)
}
