package task

import (
	"strings"
)

// Field is one frontmatter key/value pair. Fields keep insertion order so
// serialized files stay stable across rewrites.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered frontmatter list.
type Fields []Field

// Set appends a pair. Empty values are dropped entirely, matching the
// existing file format: a task with no developer has no developer line at
// all, not "developer:".
func (f *Fields) Set(key, value string) {
	if value == "" {
		return
	}
	*f = append(*f, Field{Key: key, Value: value})
}

// SetBool appends a boolean pair. Unlike Set it always writes, since
// "blocked: false" is meaningful on disk.
func (f *Fields) SetBool(key string, value bool) {
	if value {
		*f = append(*f, Field{Key: key, Value: "true"})
		return
	}
	*f = append(*f, Field{Key: key, Value: "false"})
}

// needsQuoting reports whether a value must be single-quoted to survive the
// line-oriented format.
func needsQuoting(v string) bool {
	return strings.ContainsAny(v, "\n:#")
}

// Render serializes frontmatter and body into the task file format:
//
//	---
//	key: value
//	---
//
//	body
func Render(fields Fields, body string) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		v := f.Value
		if needsQuoting(v) {
			v = "'" + v + "'"
		}
		lines = append(lines, f.Key+": "+v)
	}
	return "---\n" + strings.Join(lines, "\n") + "\n---\n\n" + body
}

// SplitFrontmatter separates the leading frontmatter block from the body.
// Content that does not start with --- (or has an unterminated block) is
// treated as all body with no metadata; nothing is rejected.
func SplitFrontmatter(content string) (meta map[string]string, body string) {
	meta = make(map[string]string)

	if !strings.HasPrefix(content, "---") {
		return meta, strings.TrimSpace(content)
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return meta, strings.TrimSpace(content)
	}

	for _, line := range strings.Split(strings.TrimSpace(parts[1]), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `'"`)
		meta[key] = value
	}
	return meta, strings.TrimSpace(parts[2])
}

// parseBool interprets the frontmatter representations of truth accepted by
// existing trees.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// Parse builds a task record from raw file content. The ID comes from the
// filename stem, never from the frontmatter. Missing fields get documented
// defaults; malformed frontmatter degrades to an empty metadata set rather
// than an error.
func Parse(id, content string) *Task {
	meta, body := SplitFrontmatter(content)

	t := &Task{
		ID:           id,
		Title:        meta["title"],
		Content:      body,
		FullContent:  content,
		TimeEstimate: meta["estimate"],
		TimeSpent:    meta["spent_time"],
		Priority:     meta["priority"],
		Developer:    meta["developer"],
		Status:       meta["status"],
		Created:      meta["created"],
		CreatedAt:    meta["created_at"],
		StartedAt:    meta["started_at"],
		DoneAt:       meta["done_at"],

		Blocked:       parseBool(meta["blocked"]),
		BlockedAt:     meta["blocked_at"],
		BlockedReason: meta["blocked_reason"],
		UnblockedAt:   meta["unblocked_at"],
	}

	if t.Title == "" {
		t.Title = titleFromID(id)
	}
	if t.TimeEstimate == "" {
		t.TimeEstimate = DefaultEstimate
	}
	if t.TimeSpent == "" {
		t.TimeSpent = DefaultEstimate
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	if t.Status == "" {
		t.Status = StatusBacklog
	}
	if t.CreatedAt == "" {
		t.CreatedAt = t.Created
	}
	t.Assignee = t.Developer

	return t
}
