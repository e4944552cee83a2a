package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Config holds all application-level configuration
type Config struct {
	// Persisted collection, read on startup and overwritten at the end
	UnitsFile string `json:"units_file"`

	// Sources
	StatsURL string `json:"stats_url"`
	WikiURL  string `json:"wiki_url"`

	// Fetching
	FetchMode        string `json:"fetch_mode"` // "http" or "browser"
	RequestTimeoutMs int    `json:"request_timeout_ms"`
	RateLimitDelay   int    `json:"rate_limit_delay_ms"` // milliseconds between requests
	MaxRetries       int    `json:"max_retries"`
	UserAgent        string `json:"user_agent"`

	// Optional outputs
	CSVFilePath    string `json:"csv_file_path"`
	DatabaseDriver string `json:"database_driver"` // "postgres" or "sqlite"
	DatabaseURL    string `json:"database_url"`

	LogLevel string `json:"log_level"`
}

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		UnitsFile:        "units.json",
		StatsURL:         "https://www.unitstatistics.com/age-of-empires2/",
		WikiURL:          "https://ageofempires.fandom.com/wiki",
		FetchMode:        FetchModeHTTP,
		RequestTimeoutMs: 30000,
		RateLimitDelay:   500,
		MaxRetries:       3,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		DatabaseDriver:   "postgres",
		LogLevel:         "info",
	}
}

// Load builds the configuration from defaults, then the optional json5 file
// named by CONFIG_FILE (config.json5 if unset), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	path := getEnv("CONFIG_FILE", "config.json5")
	if err := mergeFile(cfg, path); err != nil {
		return nil, err
	}

	cfg.UnitsFile = getEnv("UNITS_FILE", cfg.UnitsFile)
	cfg.StatsURL = getEnv("STATS_URL", cfg.StatsURL)
	cfg.WikiURL = getEnv("WIKI_URL", cfg.WikiURL)
	cfg.FetchMode = getEnv("FETCH_MODE", cfg.FetchMode)
	cfg.RequestTimeoutMs = getEnvInt("REQUEST_TIMEOUT_MS", cfg.RequestTimeoutMs)
	cfg.RateLimitDelay = getEnvInt("RATE_LIMIT_DELAY_MS", cfg.RateLimitDelay)
	cfg.MaxRetries = getEnvInt("MAX_RETRIES", cfg.MaxRetries)
	cfg.UserAgent = getEnv("USER_AGENT", cfg.UserAgent)
	cfg.CSVFilePath = getEnv("CSV_FILE_PATH", cfg.CSVFilePath)
	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.UnitsFile == "" {
		return errors.New("config: units file must be set")
	}
	if c.FetchMode != FetchModeHTTP && c.FetchMode != FetchModeBrowser {
		return fmt.Errorf("config: unknown fetch mode %q", c.FetchMode)
	}
	if c.DatabaseURL != "" && c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("config: unknown database driver %q", c.DatabaseDriver)
	}
	return nil
}

// mergeFile overlays the non-empty values of a json5 file onto cfg.
// A missing file is not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var override Config
	if err := json5.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
