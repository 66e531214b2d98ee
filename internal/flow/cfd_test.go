package flow

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehkavur/fira/internal/errors"
)

func newCFDService(t *testing.T, now func() time.Time) (*Service, string) {
	t.Helper()
	baseDir := t.TempDir()
	svc := NewService(baseDir, filepath.Join(baseDir, "wip-config.json"), filepath.Join(baseDir, "cfd-data.json"),
		WithConfig(DefaultWIPConfig()), WithClock(now))
	return svc, baseDir
}

func fixedClock(s string) func() time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

func TestTakeCFDSnapshotCountsPerStatus(t *testing.T) {
	svc, baseDir := newCFDService(t, fixedClock("2026-08-31T10:00:00Z"))

	proj := filepath.Join(baseDir, "proj-1")
	writeTaskFile(t, filepath.Join(proj, "backlog"), "t1.md")
	writeTaskFile(t, filepath.Join(proj, "backlog", "dev-bob"), "t2.md")
	writeTaskFile(t, filepath.Join(proj, "progress", "dev-alice"), "t3.md")
	writeTaskFile(t, filepath.Join(proj, "done"), "t4.md")
	writeTaskFile(t, filepath.Join(proj, "done"), "README.md")

	snap, err := svc.TakeCFDSnapshot("proj-1")
	require.NoError(t, err)

	assert.Equal(t, "2026-08-31", snap.Date)
	assert.Equal(t, "2026-08-31T10:00:00Z", snap.Timestamp)
	assert.Equal(t, 2, snap.Backlog)
	assert.Equal(t, 1, snap.Progress)
	assert.Equal(t, 0, snap.Review)
	assert.Equal(t, 0, snap.Testing)
	assert.Equal(t, 1, snap.Done)
}

func TestTakeCFDSnapshotInprogressFallback(t *testing.T) {
	svc, baseDir := newCFDService(t, fixedClock("2026-08-31T10:00:00Z"))

	writeTaskFile(t, filepath.Join(baseDir, "proj-1", "inprogress"), "t1.md")

	snap, err := svc.TakeCFDSnapshot("proj-1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Progress)
}

func TestTakeCFDSnapshotUnknownProject(t *testing.T) {
	svc, _ := newCFDService(t, fixedClock("2026-08-31T10:00:00Z"))

	_, err := svc.TakeCFDSnapshot("no-such-project")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeProjectNotFound))
}

func TestStoreCFDSnapshotSameDayReplaces(t *testing.T) {
	svc, baseDir := newCFDService(t, fixedClock("2026-08-31T08:00:00Z"))

	writeTaskFile(t, filepath.Join(baseDir, "proj-1", "backlog"), "t1.md")

	snap, err := svc.TakeCFDSnapshot("proj-1")
	require.NoError(t, err)
	require.NoError(t, svc.StoreCFDSnapshot("proj-1", snap))

	// A task moves later the same day; re-snapshotting must overwrite,
	// not append.
	writeTaskFile(t, filepath.Join(baseDir, "proj-1", "progress"), "t2.md")

	snap, err = svc.TakeCFDSnapshot("proj-1")
	require.NoError(t, err)
	require.NoError(t, svc.StoreCFDSnapshot("proj-1", snap))

	history := svc.CFDData("proj-1", 0)
	require.Len(t, history, 1)
	assert.Equal(t, "2026-08-31", history[0].Date)
	assert.Equal(t, 1, history[0].Backlog)
	assert.Equal(t, 1, history[0].Progress)
}

func TestStoreCFDSnapshotSortsAndTruncates(t *testing.T) {
	svc, _ := newCFDService(t, fixedClock("2026-08-31T08:00:00Z"))

	// Insert out of order, more than the retention window holds.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 94; i >= 0; i-- {
		day := base.AddDate(0, 0, i)
		snap := &Snapshot{
			Date:      day.Format("2006-01-02"),
			Timestamp: day.Format(time.RFC3339),
			Backlog:   i,
		}
		require.NoError(t, svc.StoreCFDSnapshot("proj-1", snap))
	}

	history := svc.CFDData("proj-1", 0)
	require.Len(t, history, maxCFDEntries)

	assert.Equal(t, base.AddDate(0, 0, 5).Format("2006-01-02"), history[0].Date)
	assert.Equal(t, base.AddDate(0, 0, 94).Format("2006-01-02"), history[len(history)-1].Date)
	for i := 1; i < len(history); i++ {
		assert.Less(t, history[i-1].Date, history[i].Date)
	}
}

func TestCFDDataDaysFilter(t *testing.T) {
	svc, _ := newCFDService(t, fixedClock("2026-08-31T08:00:00Z"))

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		day := base.AddDate(0, 0, i)
		require.NoError(t, svc.StoreCFDSnapshot("proj-1", &Snapshot{
			Date:      day.Format("2006-01-02"),
			Timestamp: day.Format(time.RFC3339),
		}))
	}

	recent := svc.CFDData("proj-1", 3)
	require.Len(t, recent, 3)
	assert.Equal(t, "2026-08-08", recent[0].Date)
	assert.Equal(t, "2026-08-10", recent[2].Date)

	assert.Len(t, svc.CFDData("proj-1", 30), 10)
	assert.Empty(t, svc.CFDData("other", 30))
}

func TestCFDHistoriesAreIndependentPerProject(t *testing.T) {
	svc, _ := newCFDService(t, fixedClock("2026-08-31T08:00:00Z"))

	for i, proj := range []string{"proj-a", "proj-b"} {
		require.NoError(t, svc.StoreCFDSnapshot(proj, &Snapshot{
			Date:    fmt.Sprintf("2026-08-%02d", 10+i),
			Backlog: i,
		}))
	}

	assert.Len(t, svc.CFDData("proj-a", 0), 1)
	assert.Len(t, svc.CFDData("proj-b", 0), 1)
	assert.Equal(t, "2026-08-10", svc.CFDData("proj-a", 0)[0].Date)
	assert.Equal(t, "2026-08-11", svc.CFDData("proj-b", 0)[0].Date)
}
