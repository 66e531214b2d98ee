// Package task provides the task record model and the Markdown task file
// codec for fira.
//
// A task lives on disk as <id>.md inside a status folder (or a developer
// subfolder within one). The file starts with a flat key: value frontmatter
// block delimited by --- lines, followed by the Markdown body. The on-disk
// format is the wire format: existing project trees must round-trip exactly.
package task

import (
	"math"
	"strings"
	"time"
)

// Status folder names. Progress has two accepted folder spellings that are
// treated as a single logical state.
const (
	StatusBacklog    = "backlog"
	StatusProgress   = "progress"
	StatusInProgress = "inprogress"
	StatusReview     = "review"
	StatusTesting    = "testing"
	StatusDone       = "done"
)

// SearchFolders is the fixed order in which status folders are checked when
// resolving a task's location. Both progress spellings are searched.
var SearchFolders = []string{
	StatusBacklog,
	StatusProgress,
	StatusInProgress,
	StatusReview,
	StatusTesting,
	StatusDone,
}

// CanonicalStatuses are the five logical workflow states.
var CanonicalStatuses = []string{
	StatusBacklog,
	StatusProgress,
	StatusReview,
	StatusTesting,
	StatusDone,
}

// CanonicalStatus maps a folder name to its logical status; the inprogress
// folder reports as progress. Unknown names pass through unchanged.
func CanonicalStatus(folder string) string {
	if folder == StatusInProgress {
		return StatusProgress
	}
	return folder
}

// IsProgress reports whether the status names the in-progress state under
// either spelling.
func IsProgress(status string) bool {
	return status == StatusProgress || status == StatusInProgress
}

// Defaults applied when frontmatter fields are absent.
const (
	DefaultPriority       = "medium"
	DefaultEstimate       = "0h"
	DefaultCreateEstimate = "2h"
)

// IsDeveloperFolder reports whether name follows the developer subfolder
// naming convention.
func IsDeveloperFolder(name string) bool {
	return strings.HasPrefix(name, "dev-") || strings.HasPrefix(name, "tech-")
}

// Task is a single task record. Timestamps are kept as the opaque strings
// stored in frontmatter; the *Days fields are derived on read and never
// written back.
type Task struct {
	ID           string `json:"id"`
	ProjectID    string `json:"projectId,omitempty"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	FullContent  string `json:"fullContent,omitempty"`
	TimeEstimate string `json:"timeEstimate"`
	TimeSpent    string `json:"timeSpent"`
	Priority     string `json:"priority"`
	Developer    string `json:"developer,omitempty"`
	Assignee     string `json:"assignee,omitempty"` // alias of Developer
	Status       string `json:"status"`
	Column       string `json:"column,omitempty"` // resolved from folder on read
	Created      string `json:"created,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	StartedAt    string `json:"started_at,omitempty"`
	DoneAt       string `json:"done_at,omitempty"`

	Blocked       bool   `json:"blocked"`
	BlockedAt     string `json:"blocked_at,omitempty"`
	BlockedReason string `json:"blocked_reason,omitempty"`
	UnblockedAt   string `json:"unblocked_at,omitempty"`

	// Derived fields, computed on read.
	CycleTimeDays      *float64 `json:"cycle_time_days,omitempty"`
	AgeDays            *float64 `json:"age_days,omitempty"`
	BlockedTimeHours   *float64 `json:"blocked_time_hours,omitempty"`
	BlockedTimeDays    *float64 `json:"blocked_time_days,omitempty"`
	IsCurrentlyBlocked bool     `json:"is_currently_blocked"`

	FilePath string `json:"file_path,omitempty"`
}

// timestampLayouts covers the formats found in existing trees: RFC 3339 with
// and without sub-second precision, naive ISO timestamps, and bare dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a frontmatter timestamp string leniently.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp formats a time the way fira writes frontmatter timestamps.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DateOnly formats the calendar-date part of a timestamp (the created field).
func DateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round1(f float64) float64 { return math.Round(f*10) / 10 }

func days(d time.Duration) float64 { return d.Seconds() / 86400 }

// ComputeDerived fills the derived metric fields from the stored timestamps.
// Unparseable or missing timestamps leave the corresponding field nil.
func (t *Task) ComputeDerived(now time.Time) {
	t.CycleTimeDays = nil
	t.AgeDays = nil
	t.BlockedTimeHours = nil
	t.BlockedTimeDays = nil

	if start, ok := ParseTimestamp(t.StartedAt); ok {
		if end, ok2 := ParseTimestamp(t.DoneAt); ok2 {
			ct := round2(days(end.Sub(start)))
			t.CycleTimeDays = &ct
		}
	}

	if created, ok := ParseTimestamp(t.CreatedAt); ok {
		age := round2(days(now.Sub(created)))
		t.AgeDays = &age
	}

	t.IsCurrentlyBlocked = t.Blocked && t.UnblockedAt == ""
	if t.IsCurrentlyBlocked {
		if since, ok := ParseTimestamp(t.BlockedAt); ok {
			hours := now.Sub(since).Hours()
			d := round1(hours / 24)
			t.BlockedTimeHours = &hours
			t.BlockedTimeDays = &d
		}
	}
}

// titleFromID builds a fallback title from a task ID: hyphens become spaces
// and each word is capitalized ("fix-login-bug" -> "Fix Login Bug").
func titleFromID(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
