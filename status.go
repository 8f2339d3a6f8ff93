package hostpulse

import (
	"fmt"
	"time"

	"github.com/jpalmerr/hostpulse/internal/taskstatus"
)

// TaskStatus is the workflow state of a task.
//
// TaskStatus is a string type holding one of four predefined values:
// [StatusPending], [StatusInProgress], [StatusCompleted] or [StatusCancelled].
type TaskStatus string

const (
	// StatusPending is the initial state of a task.
	StatusPending TaskStatus = taskstatus.Pending

	// StatusInProgress indicates work has started.
	StatusInProgress TaskStatus = taskstatus.InProgress

	// StatusCompleted indicates the task is done.
	StatusCompleted TaskStatus = taskstatus.Completed

	// StatusCancelled indicates the task was abandoned.
	StatusCancelled TaskStatus = taskstatus.Cancelled
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the predefined statuses.
func (s TaskStatus) Valid() bool {
	return taskstatus.Valid(string(s))
}

// Label returns the display label, e.g. "In Progress".
// Unknown statuses are returned verbatim.
func (s TaskStatus) Label() string {
	return taskstatus.Label(string(s))
}

// BadgeClass returns the badge style class, e.g. "bg-success".
// Unknown statuses get the neutral "bg-secondary".
func (s TaskStatus) BadgeClass() string {
	return taskstatus.Class(string(s))
}

// ParseTaskStatus converts s to a [TaskStatus], rejecting unknown values.
func ParseTaskStatus(s string) (TaskStatus, error) {
	if !taskstatus.Valid(s) {
		return "", fmt.Errorf("unknown task status %q (expected one of %v)", s, taskstatus.All())
	}
	return TaskStatus(s), nil
}

// StatusChange describes an accepted status change on the server.
//
// StatusChange is passed to callbacks registered with [WithStatusCallback].
type StatusChange struct {
	// TaskID identifies the changed task.
	TaskID string

	// From is the status before the change.
	From TaskStatus

	// To is the status after the change.
	To TaskStatus

	// ChangedAt is when the server accepted the change.
	ChangedAt time.Time
}
