package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BASE_URL", "DATA_DIR", "META_DB_PATH", "PAGE_SIZE",
		"SHRINK_THRESHOLD", "FETCH_TIMEOUT", "FETCH_DELAY",
		"GROUP_DIMENSIONS", "SCHEDULE_CRON", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "brewlake_meta.sqlite", cfg.MetaDBPath)
	assert.Equal(t, 200, cfg.PageSize)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.FetchDelay)
	assert.Zero(t, cfg.ShrinkThreshold)
	assert.Equal(t, []string{"brewery_type", "country", "state_province"}, cfg.GroupDimensions)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "https://example.com/feed")
	t.Setenv("DATA_DIR", "/tmp/lake")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("SHRINK_THRESHOLD", "0.1")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_DELAY", "100ms")
	t.Setenv("GROUP_DIMENSIONS", "country, city")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/feed", cfg.BaseURL)
	assert.Equal(t, 50, cfg.PageSize)
	assert.InDelta(t, 0.1, cfg.ShrinkThreshold, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.FetchDelay)
	assert.Equal(t, []string{"country", "city"}, cfg.GroupDimensions)
	assert.Equal(t, filepath.Join("/tmp/lake", "gold"), cfg.GoldDir())
}

func TestLoadFromEnv_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAGE_SIZE", "lots")

	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	cfg.ShrinkThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg.ShrinkThreshold = 0
	cfg.GroupDimensions = nil
	assert.Error(t, cfg.Validate())

	cfg.GroupDimensions = []string{"country"}
	cfg.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())
}

func TestApplyFile_OverridesEnv(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "brewlake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"base_url: https://example.com/breweries\n"+
			"shrink_threshold: 0.2\n"+
			"group_dimensions:\n  - country\n"+
			"fetch_delay: 250ms\n"), 0o600))

	require.NoError(t, cfg.ApplyFile(path))

	assert.Equal(t, "https://example.com/breweries", cfg.BaseURL)
	assert.InDelta(t, 0.2, cfg.ShrinkThreshold, 1e-9)
	assert.Equal(t, []string{"country"}, cfg.GroupDimensions)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchDelay)
	// Untouched fields keep their env/default values.
	assert.Equal(t, 200, cfg.PageSize)
}

func TestApplyFile_MissingFileIsNotAnError(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ApplyFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestApplyFile_UnknownFieldRejected(t *testing.T) {
	cfg := &Config{}
	path := filepath.Join(t.TempDir(), "brewlake.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_key: true\n"), 0o600))
	require.Error(t, cfg.ApplyFile(path))
}

func TestLoadDotEnv_ParsesAndRespectsPrecedence(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment\n"+
			"BASE_URL=\"https://example.com/a\"\n"+
			"LOG_LEVEL=debug\n"), 0o600))

	t.Setenv("LOG_LEVEL", "warn") // env var wins over .env

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "https://example.com/a", os.Getenv("BASE_URL"))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	require.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())
	cfg.LogLevel = "unknown"
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}
