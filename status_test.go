package hostpulse

import (
	"strings"
	"testing"
)

func TestTaskStatus_Mapping(t *testing.T) {
	tests := []struct {
		status    TaskStatus
		label     string
		class     string
		wantValid bool
	}{
		{StatusPending, "Pending", "bg-warning", true},
		{StatusInProgress, "In Progress", "bg-info", true},
		{StatusCompleted, "Completed", "bg-success", true},
		{StatusCancelled, "Cancelled", "bg-danger", true},
		{TaskStatus("blocked"), "blocked", "bg-secondary", false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if got := tt.status.BadgeClass(); got != tt.class {
				t.Errorf("BadgeClass() = %q, want %q", got, tt.class)
			}
			if got := tt.status.Valid(); got != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", got, tt.wantValid)
			}
		})
	}
}

func TestParseTaskStatus(t *testing.T) {
	got, err := ParseTaskStatus("in_progress")
	if err != nil || got != StatusInProgress {
		t.Errorf("ParseTaskStatus(in_progress) = %q, %v", got, err)
	}

	if _, err := ParseTaskStatus("In Progress"); err == nil {
		t.Error("ParseTaskStatus should reject labels")
	}
}

func TestNewTask(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		title   string
		status  TaskStatus
		wantErr string
	}{
		{"valid", "42", "Organize youth programs", StatusPending, ""},
		{"empty title allowed", "43", "", StatusCompleted, ""},
		{"missing id", "", "x", StatusPending, "id is required"},
		{"slash in id", "a/b", "x", StatusPending, "id must not contain"},
		{"long title", "44", strings.Repeat("t", 201), StatusPending, "title must be at most 200"},
		{"bad status", "45", "x", TaskStatus("done"), "status must be one of"},
		{"empty status", "46", "x", "", "status is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask(tt.id, tt.title, tt.status)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewTask() error = %v", err)
				}
				if task.ID() != tt.id || task.Title() != tt.title || task.Status() != tt.status {
					t.Errorf("NewTask() = %+v", task)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewTask() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
