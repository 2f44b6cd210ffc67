package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 0.5, cfg.Completion.MinRelevance)
	assert.Equal(t, 9, cfg.Completion.MaxAlternates)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, time.Hour, cfg.Sources[0].Interval())
}

func TestLoad_MissingUserConfigUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Completion, cfg.Completion)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
version: 1
index:
  path: /tmp/lantern-index
completion:
  min_relevance: 0.7
  max_alternates: 4
sources:
  - name: projects
    kind: directory
    root: /home/u/projects
    interval_seconds: 120
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/lantern-index", cfg.Index.Path)
	assert.Equal(t, 0.7, cfg.Completion.MinRelevance)
	assert.Equal(t, 4, cfg.Completion.MaxAlternates)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "projects", cfg.Sources[0].Name)
	assert.Equal(t, 2*time.Minute, cfg.Sources[0].Interval())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  path: /from/file\n"), 0o644))
	t.Setenv("LANTERN_INDEX_PATH", "/from/env")
	t.Setenv("LANTERN_MIN_RELEVANCE", "0.25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.Index.Path)
	assert.Equal(t, 0.25, cfg.Completion.MinRelevance)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relevance above one", func(c *Config) { c.Completion.MinRelevance = 1.5 }},
		{"negative alternates", func(c *Config) { c.Completion.MaxAlternates = -1 }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -10 }},
		{"empty source name", func(c *Config) { c.Sources[0].Name = "" }},
		{"duplicate source name", func(c *Config) { c.Sources[1].Name = c.Sources[0].Name }},
		{"unknown source kind", func(c *Config) { c.Sources[0].Kind = "registry" }},
		{"directory without root", func(c *Config) { c.Sources[0].Root = "" }},
		{"zero interval", func(c *Config) { c.Sources[0].IntervalSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	cfg.Completion.MinRelevance = 0.65
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.65, loaded.Completion.MinRelevance)
}

func TestWriteYAML_BacksUpExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	require.NoError(t, cfg.WriteYAML(path))
	require.NoError(t, cfg.WriteYAML(path))

	backups, err := ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestBackupConfig_NothingToBackUp(t *testing.T) {
	got, err := BackupConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserConfigPath_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")
	assert.Equal(t, filepath.Join("/custom/xdg", "lantern", "config.yaml"), UserConfigPath())
}
