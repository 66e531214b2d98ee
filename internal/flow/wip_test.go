package flow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTaskFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("---\ntitle: x\n---\n\nbody\n"), 0o644))
}

func newTestService(t *testing.T, cfg *WIPConfig) (*Service, string) {
	t.Helper()
	baseDir := t.TempDir()
	svc := NewService(baseDir, filepath.Join(baseDir, "wip-config.json"), filepath.Join(baseDir, "cfd-data.json"), WithConfig(cfg))
	return svc, baseDir
}

func TestCheckWIPLimitNearAndAtLimit(t *testing.T) {
	cfg := &WIPConfig{
		Limits:   map[string]*int{"progress": intPtr(5)},
		Warnings: WarningConfig{BlockOnLimit: true, WarningThreshold: 0.8},
	}
	svc, baseDir := newTestService(t, cfg)

	progressDir := filepath.Join(baseDir, "proj-1", "progress")
	for _, name := range []string{"t1.md", "t2.md", "t3.md"} {
		writeTaskFile(t, progressDir, name)
	}
	writeTaskFile(t, filepath.Join(progressDir, "dev-alice"), "t4.md")

	check := svc.CheckWIPLimit("proj-1", "progress")
	assert.True(t, check.Allowed)
	assert.Equal(t, 4, check.Count)
	require.NotNil(t, check.Limit)
	assert.Equal(t, 5, *check.Limit)
	assert.True(t, check.Warning)

	writeTaskFile(t, progressDir, "t5.md")

	check = svc.CheckWIPLimit("proj-1", "progress")
	assert.False(t, check.Allowed)
	assert.Equal(t, 5, check.Count)
	assert.True(t, check.Warning)
}

func TestCheckWIPLimitNoLimitConfigured(t *testing.T) {
	cfg := &WIPConfig{
		Limits:   map[string]*int{"backlog": nil},
		Warnings: WarningConfig{WarningThreshold: 0.8},
	}
	svc, baseDir := newTestService(t, cfg)

	// Files are never counted when the status has no limit.
	writeTaskFile(t, filepath.Join(baseDir, "proj-1", "backlog"), "t1.md")

	check := svc.CheckWIPLimit("proj-1", "backlog")
	assert.True(t, check.Allowed)
	assert.Equal(t, 0, check.Count)
	assert.Nil(t, check.Limit)
	assert.False(t, check.Warning)
}

func TestCheckWIPLimitMissingFolderCountsZero(t *testing.T) {
	cfg := &WIPConfig{
		Limits:   map[string]*int{"review": intPtr(3)},
		Warnings: WarningConfig{BlockOnLimit: true, WarningThreshold: 0.8},
	}
	svc, _ := newTestService(t, cfg)

	check := svc.CheckWIPLimit("no-such-project", "review")
	assert.True(t, check.Allowed)
	assert.Equal(t, 0, check.Count)
	assert.False(t, check.Warning)
}

func TestCheckWIPLimitExcludesReadme(t *testing.T) {
	cfg := &WIPConfig{
		Limits:   map[string]*int{"testing": intPtr(4)},
		Warnings: WarningConfig{WarningThreshold: 0.8},
	}
	svc, baseDir := newTestService(t, cfg)

	testingDir := filepath.Join(baseDir, "proj-1", "testing")
	writeTaskFile(t, testingDir, "t1.md")
	writeTaskFile(t, testingDir, "README.md")

	check := svc.CheckWIPLimit("proj-1", "testing")
	assert.Equal(t, 1, check.Count)
}

func TestWIPStatusSkipsUnlimitedStatuses(t *testing.T) {
	svc, baseDir := newTestService(t, DefaultWIPConfig())

	writeTaskFile(t, filepath.Join(baseDir, "proj-1", "progress"), "t1.md")
	writeTaskFile(t, filepath.Join(baseDir, "proj-1", "review"), "t2.md")

	status := svc.WIPStatus("proj-1")
	assert.Len(t, status, 3)
	assert.NotContains(t, status, "backlog")
	assert.NotContains(t, status, "done")

	assert.Equal(t, WIPStatusEntry{Count: 1, Limit: 5, Warning: false, Blocked: false}, status["progress"])
	assert.Equal(t, WIPStatusEntry{Count: 1, Limit: 3, Warning: false, Blocked: false}, status["review"])
	assert.Equal(t, WIPStatusEntry{Count: 0, Limit: 4, Warning: false, Blocked: false}, status["testing"])
}

func TestLoadWIPConfigMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadWIPConfig(filepath.Join(t.TempDir(), "wip-config.json"), nil)

	assert.Nil(t, cfg.Limits["backlog"])
	require.NotNil(t, cfg.Limits["progress"])
	assert.Equal(t, 5, *cfg.Limits["progress"])
	assert.Equal(t, 3, *cfg.Limits["review"])
	assert.Equal(t, 4, *cfg.Limits["testing"])
	assert.Nil(t, cfg.Limits["done"])
	assert.False(t, cfg.Warnings.BlockOnLimit)
	assert.InDelta(t, 0.8, cfg.Warnings.WarningThreshold, 1e-9)
}

func TestLoadWIPConfigMalformedFileDisablesLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wip-config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg := LoadWIPConfig(path, nil)
	assert.Empty(t, cfg.Limits)
	assert.InDelta(t, 0.8, cfg.Warnings.WarningThreshold, 1e-9)
}

func TestLoadWIPConfigPartialFileKeepsWarningDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wip-config.json")
	content := `{"wip_limits": {"progress": 2}, "wip_warnings": {"block_on_limit": true}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := LoadWIPConfig(path, nil)
	require.NotNil(t, cfg.Limits["progress"])
	assert.Equal(t, 2, *cfg.Limits["progress"])
	assert.True(t, cfg.Warnings.BlockOnLimit)
	assert.InDelta(t, 0.8, cfg.Warnings.WarningThreshold, 1e-9)
}
