// Package lock provides per-project mutual exclusion for board mutations.
//
// Board mutations run locate-then-write against the file tree, so two
// concurrent moves of the same task could race between locate and delete and
// leave duplicates. Serializing mutations per project closes that window for
// a single process. Cross-process writers are still unsynchronized.
package lock

import "sync"

// ProjectLocker hands out one mutex per project ID.
type ProjectLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProjectLocker creates an empty locker.
func NewProjectLocker() *ProjectLocker {
	return &ProjectLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for projectID, creating it on first use.
func (l *ProjectLocker) Lock(projectID string) {
	l.get(projectID).Lock()
}

// Unlock releases the mutex for projectID.
func (l *ProjectLocker) Unlock(projectID string) {
	l.get(projectID).Unlock()
}

func (l *ProjectLocker) get(projectID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[projectID] = m
	}
	return m
}
