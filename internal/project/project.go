// Package project manages project directories: the status-folder skeleton,
// README descriptions, and aggregate statistics computed by walking the tree.
package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	firaerrors "github.com/olehkavur/fira/internal/errors"
	"github.com/olehkavur/fira/internal/events"
	"github.com/olehkavur/fira/internal/task"
)

// DefaultDeveloperDir is the developer subfolder created in every status
// folder of a new project. Having it in backlog too keeps flat and
// per-developer layouts from colliding on task file names.
const DefaultDeveloperDir = "default-dev"

// Manager creates, deletes, and inspects project directories under a base
// directory.
type Manager struct {
	baseDir   string
	logger    *slog.Logger
	publisher events.Publisher
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithPublisher sets the event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// NewManager creates a Manager rooted at baseDir.
func NewManager(baseDir string, opts ...Option) *Manager {
	m := &Manager{
		baseDir:   baseDir,
		logger:    slog.Default(),
		publisher: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseDir returns the base directory the manager operates on.
func (m *Manager) BaseDir() string { return m.baseDir }

// Path returns the directory for a project ID.
func (m *Manager) Path(id string) string {
	return filepath.Join(m.baseDir, id)
}

// Exists reports whether the project directory is present.
func (m *Manager) Exists(id string) bool {
	info, err := os.Stat(m.Path(id))
	return err == nil && info.IsDir()
}

// Scaffold writes the standard project skeleton at path: a README with the
// description as heading, and the five status folders each containing the
// default developer subfolder.
func Scaffold(path, description string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}
	readme := filepath.Join(path, "README.md")
	if err := os.WriteFile(readme, []byte("# "+description+"\n"), 0644); err != nil {
		return fmt.Errorf("write README: %w", err)
	}
	for _, status := range task.CanonicalStatuses {
		dev := filepath.Join(path, status, DefaultDeveloperDir)
		if err := os.MkdirAll(dev, 0755); err != nil {
			return fmt.Errorf("create %s folder: %w", status, err)
		}
	}
	return nil
}

// Create scaffolds a new project. The ID doubles as the directory name;
// creating over an existing directory is a conflict, never an overwrite.
func (m *Manager) Create(id, description string) error {
	if id == "" {
		return firaerrors.ErrInvalidRequest("project id is required")
	}
	path := m.Path(id)
	if _, err := os.Stat(path); err == nil {
		return firaerrors.ErrProjectExists(id)
	}
	if description == "" {
		description = "Project " + id
	}
	if err := Scaffold(path, description); err != nil {
		return firaerrors.ErrIO("create project "+id, err)
	}

	m.logger.Info("created project", "project", id)
	m.publisher.Publish(events.Event{
		Type:      events.EventProjectCreated,
		ProjectID: id,
	})
	return nil
}

// Delete removes the project directory recursively.
func (m *Manager) Delete(id string) error {
	path := m.Path(id)
	if _, err := os.Stat(path); err != nil {
		return firaerrors.ErrProjectNotFound(id)
	}
	if err := os.RemoveAll(path); err != nil {
		return firaerrors.ErrIO("delete project "+id, err)
	}

	m.logger.Info("deleted project", "project", id)
	m.publisher.Publish(events.Event{
		Type:      events.EventProjectDeleted,
		ProjectID: id,
	})
	return nil
}

// Info is the per-project summary returned to the HTTP layer.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stats       Stats    `json:"stats"`
	Developers  []string `json:"developers"`
}

// Description reads the first non-empty README line with heading markers
// stripped, falling back to "Project <id>".
func (m *Manager) Description(id string) string {
	fallback := "Project " + id
	data, err := os.ReadFile(filepath.Join(m.Path(id), "README.md"))
	if err != nil {
		return fallback
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "#", ""))
		if line != "" {
			return line
		}
	}
	return fallback
}

// Info assembles the summary for one project.
func (m *Manager) Info(id string) (*Info, error) {
	if !m.Exists(id) {
		return nil, firaerrors.ErrProjectNotFound(id)
	}
	return &Info{
		ID:          id,
		Name:        id,
		Description: m.Description(id),
		Stats:       m.Stats(id),
		Developers:  m.Developers(id),
	}, nil
}

// UpdateInfo rewrites the README with a new description.
func (m *Manager) UpdateInfo(id, description string) error {
	if !m.Exists(id) {
		return firaerrors.ErrProjectNotFound(id)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil
	}
	content := "# " + id + "\n\n" + description + "\n"
	path := filepath.Join(m.Path(id), "README.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return firaerrors.ErrIO("update README for "+id, err)
	}
	return nil
}

// List returns summaries for every project, scanned concurrently and sorted
// by ID. Hidden directories are skipped.
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Info{}, nil
		}
		return nil, firaerrors.ErrIO("read projects directory", err)
	}

	var (
		g     errgroup.Group
		mu    sync.Mutex
		infos []*Info
	)
	g.SetLimit(8)

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		id := entry.Name()
		g.Go(func() error {
			info, err := m.Info(id)
			if err != nil {
				m.logger.Warn("skipping unreadable project", "project", id, "error", err)
				return nil
			}
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Developers returns the sorted set of developer subfolders (dev-* or
// tech-*) found under the progress, review, testing, and done folders.
// Backlog supports developer subfolders for storage but is not scanned here.
func (m *Manager) Developers(id string) []string {
	seen := make(map[string]bool)
	folders := []string{
		task.StatusProgress,
		task.StatusInProgress,
		task.StatusReview,
		task.StatusTesting,
		task.StatusDone,
	}
	for _, folder := range folders {
		entries, err := os.ReadDir(filepath.Join(m.Path(id), folder))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && task.IsDeveloperFolder(entry.Name()) {
				seen[entry.Name()] = true
			}
		}
	}

	devs := make([]string, 0, len(seen))
	for d := range seen {
		devs = append(devs, d)
	}
	sort.Strings(devs)
	return devs
}
