package hostpulse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// taskValidator is safe for concurrent use and caches struct metadata.
var taskValidator = validator.New()

// taskSpec carries the constraints checked by [NewTask].
type taskSpec struct {
	ID     string `validate:"required,max=64,excludesall=/?#"`
	Title  string `validate:"max=200"`
	Status string `validate:"required,oneof=pending in_progress completed cancelled"`
}

// Task is an immutable task shown on the status page board.
//
// Create tasks with [NewTask]; the zero value is not valid.
type Task struct {
	id     string
	title  string
	status TaskStatus
}

// NewTask creates a [Task].
//
// The id must be non-empty, at most 64 characters and free of '/', '?' and
// '#' so it can appear in a URL path segment. Titles are limited to 200
// characters. The status must be one of the predefined values.
func NewTask(id, title string, status TaskStatus) (Task, error) {
	spec := taskSpec{ID: id, Title: title, Status: string(status)}
	if err := taskValidator.Struct(spec); err != nil {
		return Task{}, fmt.Errorf("task %q: %w", id, describeValidation(err))
	}
	return Task{id: id, title: title, status: status}, nil
}

// ID returns the task identifier.
func (t Task) ID() string { return t.id }

// Title returns the display title.
func (t Task) Title() string { return t.title }

// Status returns the initial status.
func (t Task) Status() TaskStatus { return t.status }

// describeValidation flattens validator errors into one readable error.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		case "excludesall":
			msgs = append(msgs, fmt.Sprintf("%s must not contain any of %q", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
