// Package events provides in-process publish/subscribe of board changes.
// The API layer forwards these to websocket clients so boards refresh
// without polling.
package events

import "time"

// EventType defines the type of event.
type EventType string

const (
	// EventTaskCreated indicates a new task file was written.
	EventTaskCreated EventType = "task_created"
	// EventTaskUpdated indicates a task was rewritten in place.
	EventTaskUpdated EventType = "task_updated"
	// EventTaskMoved indicates a task changed status folder or developer.
	EventTaskMoved EventType = "task_moved"
	// EventTaskDeleted indicates a task file was removed.
	EventTaskDeleted EventType = "task_deleted"
	// EventTaskBlocked indicates a task gained the blocked overlay.
	EventTaskBlocked EventType = "task_blocked"
	// EventTaskUnblocked indicates a task lost the blocked overlay.
	EventTaskUnblocked EventType = "task_unblocked"

	// EventProjectCreated indicates a new project directory was scaffolded.
	EventProjectCreated EventType = "project_created"
	// EventProjectDeleted indicates a project directory was removed.
	EventProjectDeleted EventType = "project_deleted"
)

// Event represents a published board change.
type Event struct {
	Type      EventType `json:"type"`
	ProjectID string    `json:"project_id"`
	TaskID    string    `json:"task_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Time      time.Time `json:"time"`
}

// Publisher defines the interface for event publishing.
type Publisher interface {
	// Publish sends an event to all subscribers of the project.
	Publish(event Event)
	// Subscribe returns a channel receiving events for the given project.
	// Use GlobalProjectID ("*") to receive events for all projects.
	Subscribe(projectID string) <-chan Event
	// Unsubscribe removes a subscription channel.
	Unsubscribe(projectID string, ch <-chan Event)
	// Close shuts down the publisher and all subscriptions.
	Close()
}
