package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskWithEstimate(title, estimate string) string {
	return "---\ntitle: " + title + "\nestimate: " + estimate + "\n---\n\nbody\n"
}

func TestStatsCountsAndDetails(t *testing.T) {
	baseDir := t.TempDir()
	mgr := NewManager(baseDir)
	require.NoError(t, mgr.Create("proj-1", ""))
	proj := filepath.Join(baseDir, "proj-1")

	writeFile(t, filepath.Join(proj, "backlog", "t1.md"), taskWithEstimate("a", "2h"))
	writeFile(t, filepath.Join(proj, "backlog", "dev-zoe", "t2.md"), taskWithEstimate("b", "30m"))
	writeFile(t, filepath.Join(proj, "progress", "dev-alice", "t3.md"), taskWithEstimate("c", "1h"))
	writeFile(t, filepath.Join(proj, "done", "t4.md"), taskWithEstimate("d", "4h"))
	writeFile(t, filepath.Join(proj, "done", "README.md"), "# ignored\n")

	stats := mgr.Stats("proj-1")

	assert.Equal(t, 2, stats.Backlog.Count)
	assert.Equal(t, "(2h 30m)", stats.Backlog.Detail)

	assert.Equal(t, 1, stats.InProgress.Count)
	// dev-alice plus the empty default-dev from the skeleton.
	assert.Equal(t, "(2 devs)", stats.InProgress.Detail)

	assert.Equal(t, 1, stats.Done.Count)
	assert.Equal(t, "(4h)", stats.Done.Detail)
}

func TestStatsMergesProgressSpellings(t *testing.T) {
	baseDir := t.TempDir()
	mgr := NewManager(baseDir)
	proj := filepath.Join(baseDir, "proj-1")

	writeFile(t, filepath.Join(proj, "progress", "t1.md"), taskWithEstimate("a", "1h"))
	writeFile(t, filepath.Join(proj, "inprogress", "dev-bob", "t2.md"), taskWithEstimate("b", "1h"))

	stats := mgr.Stats("proj-1")
	assert.Equal(t, 2, stats.InProgress.Count)
	assert.Equal(t, "(1 devs)", stats.InProgress.Detail)
}

func TestStatsEmptyProject(t *testing.T) {
	baseDir := t.TempDir()
	mgr := NewManager(baseDir)
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "proj-1"), 0o755))

	stats := mgr.Stats("proj-1")
	assert.Equal(t, 0, stats.Backlog.Count)
	assert.Equal(t, "(0h)", stats.Backlog.Detail)
	assert.Equal(t, "(0 devs)", stats.InProgress.Detail)
}

func TestStatsSkipsUnparsableEstimates(t *testing.T) {
	baseDir := t.TempDir()
	mgr := NewManager(baseDir)
	proj := filepath.Join(baseDir, "proj-1")

	writeFile(t, filepath.Join(proj, "backlog", "t1.md"), taskWithEstimate("a", "soon"))
	writeFile(t, filepath.Join(proj, "backlog", "t2.md"), taskWithEstimate("b", "1h 15m"))

	stats := mgr.Stats("proj-1")
	assert.Equal(t, 2, stats.Backlog.Count)
	assert.Equal(t, "(1h 15m)", stats.Backlog.Detail)
}
