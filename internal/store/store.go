package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a task id is not present in the store.
var ErrNotFound = errors.New("task not found")

// Task is the storage representation of a task, shaped for JSON (used by the
// REST API and SSE).
type Task struct {
	// ID is the opaque task identifier used in URLs.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Status is the current status value (e.g., "pending", "completed").
	Status string `json:"status"`

	// UpdatedAt is the time of the last accepted change.
	UpdatedAt time.Time `json:"updated_at"`
}

// Change describes an accepted status transition.
type Change struct {
	TaskID    string    `json:"task_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// Store defines the interface for storing tasks and subscribing to changes.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Put inserts or replaces a task without publishing a change.
	Put(task Task)

	// Get returns the task with the given id.
	Get(id string) (Task, bool)

	// GetAll returns a snapshot of all tasks ordered by id.
	GetAll() []Task

	// SetStatus changes a task's status and publishes a [Change].
	// Returns [ErrNotFound] if the id is unknown.
	SetStatus(id, status string) (Change, error)

	// Subscribe returns a channel that receives changes.
	// The returned channel has a buffer; slow consumers may miss changes.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Change

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Change)
}
