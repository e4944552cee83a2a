package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json5"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// json5 allows comments and trailing commas
		units_file: "data/units.json",
		max_retries: 5,
		fetch_mode: "browser",
	}`), 0644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_RETRIES", "7")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "data/units.json", cfg.UnitsFile)
	require.Equal(t, FetchModeBrowser, cfg.FetchMode)
	require.Equal(t, 7, cfg.MaxRetries)
	require.Equal(t, Default().StatsURL, cfg.StatsURL)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json5"))
	t.Setenv("FETCH_MODE", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{units_file: `), 0644))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
}
