package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommandCreatesProject(t *testing.T) {
	baseDir := t.TempDir()
	t.Setenv("FIRA_BASE_DIR", baseDir)

	cmd := newInitCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"proj-1", "--description", "Payments board"})

	require.NoError(t, cmd.Execute())

	assert.DirExists(t, filepath.Join(baseDir, "proj-1", "backlog", "default-dev"))
	assert.DirExists(t, filepath.Join(baseDir, "proj-1", "done", "default-dev"))
	assert.FileExists(t, filepath.Join(baseDir, "proj-1", "README.md"))
}

func TestInitCommandRejectsDuplicate(t *testing.T) {
	baseDir := t.TempDir()
	t.Setenv("FIRA_BASE_DIR", baseDir)

	cmd := newInitCmd()
	cmd.SetArgs([]string{"proj-1"})
	require.NoError(t, cmd.Execute())

	again := newInitCmd()
	again.SilenceErrors = true
	again.SetArgs([]string{"proj-1"})
	assert.Error(t, again.Execute())
}

func TestSnapshotCommandForProject(t *testing.T) {
	baseDir := t.TempDir()
	t.Setenv("FIRA_BASE_DIR", baseDir)
	t.Setenv("FIRA_CFD_DATA", filepath.Join(baseDir, "cfd-data.json"))
	t.Setenv("FIRA_WIP_CONFIG", filepath.Join(baseDir, "wip-config.json"))

	initCmd := newInitCmd()
	initCmd.SetArgs([]string{"proj-1"})
	require.NoError(t, initCmd.Execute())

	var out bytes.Buffer
	snapCmd := newSnapshotCmd()
	snapCmd.SetOut(&out)
	snapCmd.SetArgs([]string{"proj-1"})
	require.NoError(t, snapCmd.Execute())

	assert.FileExists(t, filepath.Join(baseDir, "cfd-data.json"))
}
