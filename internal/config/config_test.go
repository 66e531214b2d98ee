package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "projects", cfg.BaseDir)
	assert.Equal(t, "wip-config.json", cfg.WIPConfigPath)
	assert.Equal(t, "cfd-data.json", cfg.CFDDataPath)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "fira.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fira.yaml")
	content := "base_dir: /srv/boards\nserver:\n  port: 9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/boards", cfg.BaseDir)
	assert.Equal(t, 9000, cfg.Server.Port)
	// Untouched values keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "wip-config.json", cfg.WIPConfigPath)
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fira.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_dir: [broken"), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fira.yaml")
	cfg := Default()
	cfg.BaseDir = "/tmp/boards"
	cfg.Server.Port = 3001

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyEnvVars(t *testing.T) {
	t.Setenv("FIRA_BASE_DIR", "/data/projects")
	t.Setenv("FIRA_PORT", "4000")
	t.Setenv("FIRA_LOG_LEVEL", "debug")

	cfg := Default()
	applied := cfg.ApplyEnvVars()

	assert.ElementsMatch(t, []string{"FIRA_BASE_DIR", "FIRA_PORT", "FIRA_LOG_LEVEL"}, applied)
	assert.Equal(t, "/data/projects", cfg.BaseDir)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyEnvVarsIgnoresBadPort(t *testing.T) {
	t.Setenv("FIRA_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnvVars()
	assert.Equal(t, 8080, cfg.Server.Port)
}
