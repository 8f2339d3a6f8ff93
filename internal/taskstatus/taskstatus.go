// Package taskstatus defines the task status vocabulary shared by the server
// and the status-update client.
//
// Every status maps to a display label and a badge style class. Unknown
// values are passed through as their literal string with the neutral
// "bg-secondary" class so that a newer server never breaks an older page.
package taskstatus

const (
	Pending    = "pending"
	InProgress = "in_progress"
	Completed  = "completed"
	Cancelled  = "cancelled"
)

// NeutralClass is the badge class used for statuses outside the known set.
const NeutralClass = "bg-secondary"

var labels = map[string]string{
	Pending:    "Pending",
	InProgress: "In Progress",
	Completed:  "Completed",
	Cancelled:  "Cancelled",
}

var classes = map[string]string{
	Pending:    "bg-warning",
	InProgress: "bg-info",
	Completed:  "bg-success",
	Cancelled:  "bg-danger",
}

// All returns the known statuses in workflow order.
func All() []string {
	return []string{Pending, InProgress, Completed, Cancelled}
}

// Valid reports whether s is one of the known statuses.
func Valid(s string) bool {
	_, ok := labels[s]
	return ok
}

// Label returns the human-readable label for s, or s itself if unknown.
func Label(s string) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return s
}

// Class returns the badge style class for s, or [NeutralClass] if unknown.
func Class(s string) string {
	if c, ok := classes[s]; ok {
		return c
	}
	return NeutralClass
}
