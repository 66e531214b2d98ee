package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olehkavur/fira/internal/task"
)

// StatBucket is one column summary: a task count and a display detail
// (total estimated hours, or a developer count for in-progress work).
type StatBucket struct {
	Count  int    `json:"count"`
	Detail string `json:"detail"`
}

// Stats groups task counts into the three board-level buckets. Both
// progress spellings feed the inProgress bucket; the counts are summed,
// never double-reported.
type Stats struct {
	Backlog    StatBucket `json:"backlog"`
	InProgress StatBucket `json:"inProgress"`
	Done       StatBucket `json:"done"`
}

// isTaskFile reports whether a directory entry is a task markdown file.
func isTaskFile(name string) bool {
	return strings.HasSuffix(name, ".md") && strings.ToLower(name) != "readme.md"
}

// bucketScan tallies one bucket across its folder aliases: direct task
// files plus one level of subfolders. Estimate minutes come from parsing
// each task; developer names are collected only for progress folders.
type bucketScan struct {
	count   int
	minutes int
	devs    map[string]bool
}

func (m *Manager) scanBucket(projectPath string, folders []string, collectDevs bool) bucketScan {
	scan := bucketScan{devs: make(map[string]bool)}

	for _, folder := range folders {
		folderPath := filepath.Join(projectPath, folder)
		entries, err := os.ReadDir(folderPath)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				if strings.HasPrefix(strings.ToLower(entry.Name()), "readme") {
					continue
				}
				subPath := filepath.Join(folderPath, entry.Name())
				subEntries, err := os.ReadDir(subPath)
				if err != nil {
					continue
				}
				for _, sub := range subEntries {
					if sub.IsDir() || !isTaskFile(sub.Name()) {
						continue
					}
					scan.count++
					scan.minutes += estimateMinutes(filepath.Join(subPath, sub.Name()))
				}
				// Every subfolder counts as a developer here, empty or
				// not, default-dev included.
				if collectDevs {
					scan.devs[entry.Name()] = true
				}
				continue
			}
			if !isTaskFile(entry.Name()) {
				continue
			}
			scan.count++
			scan.minutes += estimateMinutes(filepath.Join(folderPath, entry.Name()))
		}
	}
	return scan
}

// estimateMinutes parses a task file and scans its estimate field.
// Unreadable files contribute nothing.
func estimateMinutes(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	id := strings.TrimSuffix(filepath.Base(path), ".md")
	return task.ParseMinutes(task.Parse(id, string(data)).TimeEstimate)
}

// Stats walks the project tree and computes the board-level bucket counts.
func (m *Manager) Stats(id string) Stats {
	projectPath := m.Path(id)

	backlog := m.scanBucket(projectPath, []string{task.StatusBacklog}, false)
	progress := m.scanBucket(projectPath, []string{task.StatusProgress, task.StatusInProgress}, true)
	done := m.scanBucket(projectPath, []string{task.StatusDone}, false)

	return Stats{
		Backlog: StatBucket{
			Count:  backlog.count,
			Detail: "(" + task.FormatMinutes(backlog.minutes) + ")",
		},
		InProgress: StatBucket{
			Count:  progress.count,
			Detail: fmt.Sprintf("(%d devs)", len(progress.devs)),
		},
		Done: StatBucket{
			Count:  done.count,
			Detail: "(" + task.FormatMinutes(done.minutes) + ")",
		},
	}
}
