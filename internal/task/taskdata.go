package task

// Data is the typed create/update payload. Handlers decode JSON into this
// struct so the repository core never sees a raw map; optional fields are
// zero-valued and defaulted at the point of use.
type Data struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	FullContent  string `json:"fullContent"`
	Folder       string `json:"folder"`
	TimeEstimate string `json:"timeEstimate"`
	TimeSpent    string `json:"timeSpent"`
	Priority     string `json:"priority"`
	Developer    string `json:"developer"`
	Assignee     string `json:"assignee"`
	Status       string `json:"status"`
	Column       string `json:"column"`
	Created      string `json:"created"`
	CreatedAt    string `json:"created_at"`
	StartedAt    string `json:"started_at"`
	DoneAt       string `json:"done_at"`

	Blocked       bool   `json:"blocked"`
	BlockedAt     string `json:"blocked_at"`
	BlockedReason string `json:"blocked_reason"`
	UnblockedAt   string `json:"unblocked_at"`
}

// Body returns the Markdown body, preferring content over fullContent.
func (d *Data) Body() string {
	if d.Content != "" {
		return d.Content
	}
	return d.FullContent
}

// TargetStatus resolves the requested status: status, then column, then
// backlog.
func (d *Data) TargetStatus() string {
	if d.Status != "" {
		return d.Status
	}
	if d.Column != "" {
		return d.Column
	}
	return StatusBacklog
}

// DeveloperHint returns the explicit developer, or an assignee value that
// looks like a developer folder handle. An assignee that is not a dev-* or
// tech-* handle is ignored for placement purposes.
func (d *Data) DeveloperHint() string {
	if d.Developer != "" {
		return d.Developer
	}
	if d.Assignee != "" && IsDeveloperFolder(d.Assignee) {
		return d.Assignee
	}
	return ""
}

// FromTask converts a parsed task record back into a payload. Block and
// unblock go through the normal update path with the task's current values.
func FromTask(t *Task) *Data {
	return &Data{
		ID:            t.ID,
		Title:         t.Title,
		Content:       t.Content,
		TimeEstimate:  t.TimeEstimate,
		TimeSpent:     t.TimeSpent,
		Priority:      t.Priority,
		Developer:     t.Developer,
		Assignee:      t.Assignee,
		Status:        t.Status,
		Column:        t.Column,
		Created:       t.Created,
		CreatedAt:     t.CreatedAt,
		StartedAt:     t.StartedAt,
		DoneAt:        t.DoneAt,
		Blocked:       t.Blocked,
		BlockedAt:     t.BlockedAt,
		BlockedReason: t.BlockedReason,
		UnblockedAt:   t.UnblockedAt,
	}
}
