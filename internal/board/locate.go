// Package board implements the file-tree task repository: locating task
// files across the status-folder/developer-subfolder layout and the CRUD
// operations with move-on-status-change semantics.
package board

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/olehkavur/fira/internal/task"
)

// Location describes where a task file currently lives.
type Location struct {
	// Path is the absolute file path.
	Path string
	// Folder is the status folder name as found on disk (may be the
	// inprogress spelling).
	Folder string
	// Developer is the developer subfolder name, empty for a direct file.
	Developer string
}

// verifyIdentity checks that the file at path plausibly belongs to taskID:
// its content or its filename must contain the ID string. The filename leg
// is near-vacuous for files named <id>.md; the check is a best-effort guard
// against stale or colliding files, not a real identity proof. Unreadable
// files fail verification.
func verifyIdentity(path, taskID string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), taskID) ||
		strings.Contains(filepath.Base(path), taskID)
}

// Locate finds the file for taskID under projectPath. Status folders are
// checked in fixed order (backlog, progress, inprogress, review, testing,
// done); within each, a direct file wins over any developer subfolder
// match. Returns false when no verified file exists.
func Locate(projectPath, taskID string) (*Location, bool) {
	filename := taskID + ".md"

	for _, folder := range task.SearchFolders {
		folderPath := filepath.Join(projectPath, folder)
		if _, err := os.Stat(folderPath); err != nil {
			continue
		}

		direct := filepath.Join(folderPath, filename)
		if fileExists(direct) && verifyIdentity(direct, taskID) {
			return &Location{Path: direct, Folder: folder}, true
		}

		entries, err := os.ReadDir(folderPath)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			nested := filepath.Join(folderPath, entry.Name(), filename)
			if fileExists(nested) && verifyIdentity(nested, taskID) {
				return &Location{
					Path:      nested,
					Folder:    folder,
					Developer: entry.Name(),
				}, true
			}
		}
	}
	return nil, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
