package flow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/olehkavur/fira/internal/errors"
	"github.com/olehkavur/fira/internal/task"
	"github.com/olehkavur/fira/internal/util"
)

// maxCFDEntries bounds per-project snapshot history.
const maxCFDEntries = 90

// Snapshot records one day's task distribution for a project.
type Snapshot struct {
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
	Backlog   int    `json:"backlog"`
	Progress  int    `json:"progress"`
	Review    int    `json:"review"`
	Testing   int    `json:"testing"`
	Done      int    `json:"done"`
}

// TakeCFDSnapshot counts tasks per canonical status for a project. The
// progress count falls back to the legacy inprogress folder when no
// progress folder exists.
func (s *Service) TakeCFDSnapshot(projectID string) (*Snapshot, error) {
	projectDir := filepath.Join(s.baseDir, projectID)
	if _, err := os.Stat(projectDir); err != nil {
		return nil, errors.ErrProjectNotFound(projectID)
	}

	counts := make(map[string]int, len(task.CanonicalStatuses))
	for _, status := range task.CanonicalStatuses {
		statusDir := filepath.Join(projectDir, status)
		if _, err := os.Stat(statusDir); err != nil && status == task.StatusProgress {
			statusDir = filepath.Join(projectDir, "inprogress")
		}
		counts[status] = countTaskFiles(statusDir)
	}

	now := s.now().UTC()
	return &Snapshot{
		Date:      now.Format("2006-01-02"),
		Timestamp: now.Format("2006-01-02T15:04:05Z07:00"),
		Backlog:   counts[task.StatusBacklog],
		Progress:  counts[task.StatusProgress],
		Review:    counts[task.StatusReview],
		Testing:   counts[task.StatusTesting],
		Done:      counts[task.StatusDone],
	}, nil
}

// StoreCFDSnapshot appends a snapshot to the project's history, replacing
// any existing entry for the same date. History stays sorted ascending by
// date and is truncated to the most recent entries. The whole data file
// is rewritten atomically.
func (s *Service) StoreCFDSnapshot(projectID string, snap *Snapshot) error {
	data := s.loadCFDData()

	history := data[projectID]
	replaced := false
	for i, existing := range history {
		if existing.Date == snap.Date {
			history[i] = *snap
			replaced = true
			break
		}
	}
	if !replaced {
		history = append(history, *snap)
	}

	sort.Slice(history, func(i, j int) bool { return history[i].Date < history[j].Date })
	if len(history) > maxCFDEntries {
		history = history[len(history)-maxCFDEntries:]
	}
	data[projectID] = history

	if err := util.AtomicWriteJSON(s.cfdPath, data, 0644); err != nil {
		s.logger.Error("failed to save CFD data", "path", s.cfdPath, "error", err)
		return errors.ErrIO("save CFD data", err)
	}

	s.logger.Info("stored CFD snapshot", "project", projectID, "date", snap.Date, "replaced", replaced)
	return nil
}

// CFDData returns a project's snapshot history, optionally limited to the
// most recent n days' entries. Unknown projects yield an empty history.
func (s *Service) CFDData(projectID string, days int) []Snapshot {
	history := s.loadCFDData()[projectID]
	if history == nil {
		return []Snapshot{}
	}
	if days > 0 && len(history) > days {
		history = history[len(history)-days:]
	}
	return history
}

// loadCFDData reads the full history file. Missing or malformed files
// yield an empty map so snapshotting can start fresh.
func (s *Service) loadCFDData() map[string][]Snapshot {
	raw, err := os.ReadFile(s.cfdPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read CFD data", "path", s.cfdPath, "error", err)
		}
		return map[string][]Snapshot{}
	}
	var data map[string][]Snapshot
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("failed to parse CFD data", "path", s.cfdPath, "error", err)
		return map[string][]Snapshot{}
	}
	return data
}
