package board

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	firaerrors "github.com/olehkavur/fira/internal/errors"
	"github.com/olehkavur/fira/internal/events"
	"github.com/olehkavur/fira/internal/lock"
	"github.com/olehkavur/fira/internal/project"
	"github.com/olehkavur/fira/internal/task"
	"github.com/olehkavur/fira/internal/util"
)

// Repository performs task CRUD against the project file tree. A task's
// identity is its filename stem; its folder path encodes workflow status
// and optional developer assignment. Moving a task writes the new file
// first and deletes the old one after, so a crash mid-move leaves a
// duplicate rather than a vanished task.
//
// Mutations are serialized per project within this process. Writers in
// other processes are not coordinated with; the on-disk tree has no lock
// file or transaction log.
type Repository struct {
	baseDir   string
	locks     *lock.ProjectLocker
	logger    *slog.Logger
	publisher events.Publisher
	now       func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithPublisher sets the event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(r *Repository) { r.publisher = p }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a Repository rooted at baseDir.
func New(baseDir string, opts ...Option) *Repository {
	r := &Repository{
		baseDir:   baseDir,
		locks:     lock.NewProjectLocker(),
		logger:    slog.Default(),
		publisher: events.NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) projectPath(projectID string) string {
	return filepath.Join(r.baseDir, projectID)
}

// readTask reads and parses one task file. A read failure is reported; the
// parse itself never fails.
func (r *Repository) readTask(path, taskID string) (*task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, firaerrors.ErrIO("read task "+taskID, err)
	}
	return task.Parse(taskID, string(data)), nil
}

// annotate stamps the fields derived from a task's location and computes
// the read-time metrics.
func (r *Repository) annotate(t *task.Task, projectID string, loc *Location) {
	t.ProjectID = projectID
	t.Column = task.CanonicalStatus(loc.Folder)
	if loc.Developer != "" {
		t.Developer = loc.Developer
		t.Assignee = loc.Developer
	}
	t.FilePath = loc.Path
	t.ComputeDerived(r.now())
}

// Get returns a single task by ID.
func (r *Repository) Get(projectID, taskID string) (*task.Task, error) {
	projectPath := r.projectPath(projectID)
	if _, err := os.Stat(projectPath); err != nil {
		return nil, firaerrors.ErrProjectNotFound(projectID)
	}
	loc, ok := Locate(projectPath, taskID)
	if !ok {
		return nil, firaerrors.ErrTaskNotFound(projectID, taskID)
	}
	t, err := r.readTask(loc.Path, taskID)
	if err != nil {
		return nil, err
	}
	r.annotate(t, projectID, loc)
	return t, nil
}

// List walks every status folder and developer subfolder, collecting all
// parseable task files. Unreadable files are logged and skipped rather
// than failing the listing.
func (r *Repository) List(projectID string) ([]*task.Task, error) {
	projectPath := r.projectPath(projectID)
	if _, err := os.Stat(projectPath); err != nil {
		return nil, firaerrors.ErrProjectNotFound(projectID)
	}

	var tasks []*task.Task
	for _, folder := range task.SearchFolders {
		folderPath := filepath.Join(projectPath, folder)
		entries, err := os.ReadDir(folderPath)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				if strings.HasPrefix(entry.Name(), ".") {
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
					if t := r.loadListed(projectID, folder, entry.Name(), filepath.Join(subPath, sub.Name())); t != nil {
						tasks = append(tasks, t)
					}
				}
				continue
			}
			if !isTaskFile(entry.Name()) {
				continue
			}
			if t := r.loadListed(projectID, folder, "", filepath.Join(folderPath, entry.Name())); t != nil {
				tasks = append(tasks, t)
			}
		}
	}
	return tasks, nil
}

func (r *Repository) loadListed(projectID, folder, developer, path string) *task.Task {
	taskID := strings.TrimSuffix(filepath.Base(path), ".md")
	t, err := r.readTask(path, taskID)
	if err != nil {
		r.logger.Warn("skipping unreadable task file", "path", path, "error", err)
		return nil
	}
	r.annotate(t, projectID, &Location{Path: path, Folder: folder, Developer: developer})
	return t
}

func isTaskFile(name string) bool {
	return strings.HasSuffix(name, ".md") && strings.ToLower(name) != "readme.md"
}

// Create writes a new task file. The project is scaffolded automatically if
// missing. The target folder comes from the payload (default backlog),
// optionally nested under a developer handle. An existing file for the ID
// is a conflict; create never overwrites.
func (r *Repository) Create(projectID string, data *task.Data) (*task.Task, error) {
	if data.ID == "" {
		return nil, firaerrors.ErrMissingID()
	}

	r.locks.Lock(projectID)
	defer r.locks.Unlock(projectID)

	projectPath := r.projectPath(projectID)
	if _, err := os.Stat(projectPath); err != nil {
		r.logger.Info("auto-creating project for new task", "project", projectID)
		if err := project.Scaffold(projectPath, "Auto-created project "+projectID); err != nil {
			return nil, firaerrors.ErrIO("create project "+projectID, err)
		}
	}

	folder := data.Folder
	if folder == "" {
		folder = task.StatusBacklog
	}
	if dev := data.DeveloperHint(); dev != "" && !strings.Contains(folder, "/") {
		folder = filepath.Join(folder, dev)
	}

	path := filepath.Join(projectPath, folder, data.ID+".md")
	if fileExists(path) {
		return nil, firaerrors.ErrTaskExists(data.ID)
	}

	now := r.now()
	status := data.Status
	if status == "" {
		// The folder's first segment names the status.
		status = strings.SplitN(folder, "/", 2)[0]
	}
	startedAt := ""
	if task.IsProgress(status) {
		startedAt = task.Timestamp(now)
	}

	estimate := data.TimeEstimate
	if estimate == "" {
		estimate = task.DefaultCreateEstimate
	}

	var fields task.Fields
	fields.Set("title", data.Title)
	fields.Set("estimate", estimate)
	fields.Set("spent_time", defaultStr(data.TimeSpent, task.DefaultEstimate))
	fields.Set("priority", defaultStr(data.Priority, task.DefaultPriority))
	fields.Set("developer", defaultStr(data.Developer, data.Assignee))
	fields.Set("status", status)
	fields.Set("created", task.DateOnly(now))
	fields.Set("created_at", task.Timestamp(now))
	fields.Set("started_at", startedAt)

	content := task.Render(fields, data.Body())
	if err := util.AtomicWriteFile(path, []byte(content), 0644); err != nil {
		return nil, firaerrors.ErrIO("write task "+data.ID, err)
	}

	r.logger.Info("created task", "project", projectID, "task", data.ID, "folder", folder)
	r.publisher.Publish(events.Event{
		Type:      events.EventTaskCreated,
		ProjectID: projectID,
		TaskID:    data.ID,
	})

	t := task.Parse(data.ID, content)
	loc := &Location{Path: path, Folder: strings.SplitN(folder, "/", 2)[0]}
	if dev := data.DeveloperHint(); dev != "" {
		loc.Developer = dev
	}
	r.annotate(t, projectID, loc)
	return t, nil
}

// Update rewrites a task, moving its file when the status or developer
// changed. Timestamp auto-tracking is one way: started_at is stamped on the
// first transition into progress and done_at on the first transition into
// done; neither is ever cleared here.
func (r *Repository) Update(projectID string, data *task.Data) (*task.Task, error) {
	if data.ID == "" {
		return nil, firaerrors.ErrMissingID()
	}

	r.locks.Lock(projectID)
	defer r.locks.Unlock(projectID)

	projectPath := r.projectPath(projectID)
	if _, err := os.Stat(projectPath); err != nil {
		return nil, firaerrors.ErrProjectNotFound(projectID)
	}

	loc, ok := Locate(projectPath, data.ID)
	if !ok {
		return nil, firaerrors.ErrTaskNotFound(projectID, data.ID)
	}

	newStatus := data.TargetStatus()

	// Developer resolution: explicit in the payload, else wherever the task
	// sits now, else an assignee value that looks like a folder handle.
	newDev := data.Developer
	if newDev == "" {
		newDev = loc.Developer
	}
	if newDev == "" && data.Assignee != "" && task.IsDeveloperFolder(data.Assignee) {
		newDev = data.Assignee
	}

	newDir := filepath.Join(projectPath, newStatus)
	if newDev != "" {
		newDir = filepath.Join(newDir, newDev)
	}
	newPath := filepath.Join(newDir, data.ID+".md")

	moving := newPath != loc.Path
	if moving && fileExists(newPath) {
		// The destination belongs to some other task unless its content
		// mentions this ID. Best-effort, but it is what keeps a move from
		// silently eating an unrelated task.
		existing, err := os.ReadFile(newPath)
		if err != nil {
			return nil, firaerrors.ErrIO("verify destination for "+data.ID, err)
		}
		if !strings.Contains(string(existing), data.ID) {
			return nil, firaerrors.ErrTaskConflict(data.ID, newPath)
		}
	}

	now := r.now()
	createdAt := data.CreatedAt
	if createdAt == "" {
		createdAt = data.Created
	}
	startedAt := data.StartedAt
	if task.IsProgress(newStatus) && startedAt == "" {
		startedAt = task.Timestamp(now)
	}
	doneAt := data.DoneAt
	if newStatus == task.StatusDone && doneAt == "" {
		doneAt = task.Timestamp(now)
	}

	var fields task.Fields
	fields.Set("title", data.Title)
	fields.Set("estimate", defaultStr(data.TimeEstimate, task.DefaultEstimate))
	fields.Set("spent_time", defaultStr(data.TimeSpent, task.DefaultEstimate))
	fields.Set("priority", defaultStr(data.Priority, task.DefaultPriority))
	fields.Set("developer", data.Developer)
	fields.Set("status", newStatus)
	fields.Set("created", defaultStr(data.Created, task.DateOnly(now)))
	fields.Set("created_at", createdAt)
	fields.Set("started_at", startedAt)
	fields.Set("done_at", doneAt)
	fields.SetBool("blocked", data.Blocked)
	fields.Set("blocked_at", data.BlockedAt)
	fields.Set("blocked_reason", data.BlockedReason)
	fields.Set("unblocked_at", data.UnblockedAt)

	content := task.Render(fields, data.Body())

	if moving {
		// Re-verify the source before committing the move; the tree may
		// have changed between locate and now.
		if !verifyIdentity(loc.Path, data.ID) {
			return nil, firaerrors.ErrTaskConflict(data.ID, loc.Path)
		}
	}

	// Write the new file before touching the old one. A crash between the
	// two operations leaves a stray duplicate, never a vanished task.
	if err := util.AtomicWriteFile(newPath, []byte(content), 0644); err != nil {
		return nil, firaerrors.ErrIO("write task "+data.ID, err)
	}
	if moving {
		if err := os.Remove(loc.Path); err != nil {
			r.logger.Error("moved task but failed to remove old file",
				"task", data.ID, "old_path", loc.Path, "error", err)
			return nil, firaerrors.ErrIO("remove old task file for "+data.ID, err)
		}
		r.logger.Info("moved task", "project", projectID, "task", data.ID,
			"from", loc.Folder, "to", newStatus, "developer", newDev)
	}

	evType := events.EventTaskUpdated
	if moving {
		evType = events.EventTaskMoved
	}
	r.publisher.Publish(events.Event{
		Type:      evType,
		ProjectID: projectID,
		TaskID:    data.ID,
	})

	t := task.Parse(data.ID, content)
	r.annotate(t, projectID, &Location{Path: newPath, Folder: newStatus, Developer: newDev})
	return t, nil
}

// Delete removes the single file matching the task ID.
func (r *Repository) Delete(projectID, taskID string) error {
	r.locks.Lock(projectID)
	defer r.locks.Unlock(projectID)

	projectPath := r.projectPath(projectID)
	if _, err := os.Stat(projectPath); err != nil {
		return firaerrors.ErrProjectNotFound(projectID)
	}
	loc, ok := Locate(projectPath, taskID)
	if !ok {
		return firaerrors.ErrTaskNotFound(projectID, taskID)
	}
	if err := os.Remove(loc.Path); err != nil {
		return firaerrors.ErrIO("delete task "+taskID, err)
	}

	r.logger.Info("deleted task", "project", projectID, "task", taskID)
	r.publisher.Publish(events.Event{
		Type:      events.EventTaskDeleted,
		ProjectID: projectID,
		TaskID:    taskID,
	})
	return nil
}

// Block marks a task blocked with a reason, stamping blocked_at and
// clearing any previous unblocked_at. The write goes through the normal
// update path.
func (r *Repository) Block(projectID, taskID, reason string) (*task.Task, error) {
	t, err := r.Get(projectID, taskID)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "No reason provided"
	}

	data := task.FromTask(t)
	data.Blocked = true
	data.BlockedAt = task.Timestamp(r.now())
	data.BlockedReason = reason
	data.UnblockedAt = ""

	updated, err := r.Update(projectID, data)
	if err != nil {
		return nil, err
	}
	r.publisher.Publish(events.Event{
		Type:      events.EventTaskBlocked,
		ProjectID: projectID,
		TaskID:    taskID,
	})
	return updated, nil
}

// Unblock clears the blocked flag and stamps unblocked_at. The blocked_at
// and blocked_reason fields stay behind as history.
func (r *Repository) Unblock(projectID, taskID string) (*task.Task, error) {
	t, err := r.Get(projectID, taskID)
	if err != nil {
		return nil, err
	}

	data := task.FromTask(t)
	data.Blocked = false
	data.UnblockedAt = task.Timestamp(r.now())

	updated, err := r.Update(projectID, data)
	if err != nil {
		return nil, err
	}
	r.publisher.Publish(events.Event{
		Type:      events.EventTaskUnblocked,
		ProjectID: projectID,
		TaskID:    taskID,
	})
	return updated, nil
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
