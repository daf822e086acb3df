package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().OutputDir, cfg.OutputDir)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "reminders: [Thomas, ' ', Julia]\ninclude_special: true\nschedule: ' */30 * * * * '\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thomas", "Julia"}, cfg.Reminders)
	assert.True(t, cfg.IncludeSpecial)
	assert.Equal(t, "*/30 * * * *", cfg.Schedule)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, []string{}, cfg.Include)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reminders: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Reminders = []string{"Max"}
	cfg.Exclude = []string{"Sarah"}
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Reminders, got.Reminders)
	assert.Equal(t, cfg.Exclude, got.Exclude)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SHIFTCAL_OUTPUT_DIR", "/tmp/shifts")
	t.Setenv("SHIFTCAL_REMINDERS", "Thomas, Julia ,")
	t.Setenv("SHIFTCAL_INCLUDE_SPECIAL", "true")
	t.Setenv("SHIFTCAL_TIMEZONE", "UTC")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "/tmp/shifts", cfg.OutputDir)
	assert.Equal(t, []string{"Thomas", "Julia"}, cfg.Reminders)
	assert.True(t, cfg.IncludeSpecial)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLocationFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Nowhere/Special"
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "Europe/Berlin"
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}
