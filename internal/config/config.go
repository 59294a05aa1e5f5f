// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the public feed and the local lake layout.
const (
	DefaultBaseURL    = "https://api.openbrewerydb.org/v1/breweries"
	DefaultDataDir    = "data"
	DefaultMetaDBPath = "brewlake_meta.sqlite"
	DefaultPageSize   = 200 // maximum the API accepts
)

// Config holds the configuration for the pipeline, the fetcher, and the
// run-history metastore.
type Config struct {
	BaseURL         string        // collection endpoint to paginate
	DataDir         string        // root of the bronze/silver/gold layout
	MetaDBPath      string        // path to the SQLite run-history metastore
	PageSize        int           // per_page query parameter
	FetchTimeout    time.Duration // per-page request timeout
	FetchDelay      time.Duration // fixed inter-page delay
	ShrinkThreshold float64       // max tolerated fractional row-count drop
	GroupDimensions []string      // gold grouping dimensions, in order
	ScheduleCron    string        // cron spec for the schedule command (optional)
	LogLevel        string        // log level: debug, info, warn, error (default "info")

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BronzeDir returns the raw layer's dataset path.
func (c *Config) BronzeDir() string { return filepath.Join(c.DataDir, "bronze") }

// SilverDir returns the cleaned layer's dataset path.
func (c *Config) SilverDir() string { return filepath.Join(c.DataDir, "silver") }

// GoldDir returns the aggregated layer's dataset path.
func (c *Config) GoldDir() string { return filepath.Join(c.DataDir, "gold") }

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("BASE_URL %q is not a valid URL: %w", c.BaseURL, err)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.ShrinkThreshold < 0 || c.ShrinkThreshold >= 1 {
		return fmt.Errorf("SHRINK_THRESHOLD must be in [0, 1), got %g", c.ShrinkThreshold)
	}
	if len(c.GroupDimensions) == 0 {
		return fmt.Errorf("GROUP_DIMENSIONS must name at least one column")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables, applying
// defaults for anything unset.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL:      os.Getenv("BASE_URL"),
		DataDir:      os.Getenv("DATA_DIR"),
		MetaDBPath:   os.Getenv("META_DB_PATH"),
		ScheduleCron: os.Getenv("SCHEDULE_CRON"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
	}

	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PAGE_SIZE: %w", err)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv("SHRINK_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("SHRINK_THRESHOLD: %w", err)
		}
		cfg.ShrinkThreshold = f
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FETCH_TIMEOUT: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if v := os.Getenv("FETCH_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FETCH_DELAY: %w", err)
		}
		cfg.FetchDelay = d
	}
	if v := os.Getenv("GROUP_DIMENSIONS"); v != "" {
		dims := strings.Split(v, ",")
		for i := range dims {
			dims[i] = strings.TrimSpace(dims[i])
		}
		cfg.GroupDimensions = compactNonEmpty(dims)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.MetaDBPath == "" {
		c.MetaDBPath = DefaultMetaDBPath
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.FetchDelay == 0 {
		c.FetchDelay = 500 * time.Millisecond
	}
	if len(c.GroupDimensions) == 0 {
		c.GroupDimensions = []string{"brewery_type", "country", "state_province"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// fileConfig mirrors the YAML configuration file. All fields are optional;
// set fields override whatever the environment produced.
type fileConfig struct {
	BaseURL         *string  `yaml:"base_url"`
	DataDir         *string  `yaml:"data_dir"`
	MetaDBPath      *string  `yaml:"meta_db_path"`
	PageSize        *int     `yaml:"page_size"`
	FetchTimeout    *string  `yaml:"fetch_timeout"`
	FetchDelay      *string  `yaml:"fetch_delay"`
	ShrinkThreshold *float64 `yaml:"shrink_threshold"`
	GroupDimensions []string `yaml:"group_dimensions"`
	ScheduleCron    *string  `yaml:"schedule_cron"`
	LogLevel        *string  `yaml:"log_level"`
}

// ApplyFile overlays values from a YAML config file onto c. A missing file
// is not an error (the file is an optional surface); a malformed one is.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.BaseURL != nil {
		c.BaseURL = *fc.BaseURL
	}
	if fc.DataDir != nil {
		c.DataDir = *fc.DataDir
	}
	if fc.MetaDBPath != nil {
		c.MetaDBPath = *fc.MetaDBPath
	}
	if fc.PageSize != nil {
		c.PageSize = *fc.PageSize
	}
	if fc.FetchTimeout != nil {
		d, err := time.ParseDuration(*fc.FetchTimeout)
		if err != nil {
			return fmt.Errorf("fetch_timeout: %w", err)
		}
		c.FetchTimeout = d
	}
	if fc.FetchDelay != nil {
		d, err := time.ParseDuration(*fc.FetchDelay)
		if err != nil {
			return fmt.Errorf("fetch_delay: %w", err)
		}
		c.FetchDelay = d
	}
	if fc.ShrinkThreshold != nil {
		c.ShrinkThreshold = *fc.ShrinkThreshold
	}
	if len(fc.GroupDimensions) > 0 {
		c.GroupDimensions = compactNonEmpty(fc.GroupDimensions)
	}
	if fc.ScheduleCron != nil {
		c.ScheduleCron = *fc.ScheduleCron
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	return nil
}

// LoadDotEnv reads KEY=VALUE pairs from a .env file into the process
// environment. Existing environment variables take precedence. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func compactNonEmpty(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}
