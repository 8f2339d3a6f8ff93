package statusupdate

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jpalmerr/hostpulse/internal/taskstatus"
)

// Widget is the state of one status select control.
//
// All fields are guarded by the widget's own lock; read them through
// [Widget.State].
type Widget struct {
	taskID string

	mu         sync.Mutex
	value      string
	confirmed  string
	disabled   bool
	loading    bool
	gen        uint64
	settledGen uint64
	cancel     context.CancelFunc
}

// WidgetState is a point-in-time copy of a [Widget].
type WidgetState struct {
	TaskID string

	// Value is the status currently shown by the control.
	Value string

	// Confirmed is the last status the server accepted, or the initial value.
	Confirmed string

	Disabled bool
	Loading  bool
}

// NewWidget returns an idle, enabled widget showing initial.
func NewWidget(taskID, initial string) *Widget {
	return &Widget{
		taskID:    taskID,
		value:     initial,
		confirmed: initial,
	}
}

// TaskID returns the task the widget controls.
func (w *Widget) TaskID() string { return w.taskID }

// State returns a snapshot of the widget.
func (w *Widget) State() WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WidgetState{
		TaskID:    w.taskID,
		Value:     w.value,
		Confirmed: w.confirmed,
		Disabled:  w.disabled,
		Loading:   w.loading,
	}
}

// begin moves the widget to Pending for status, cancelling any request
// already in flight. ok is false when status is already displayed.
func (w *Widget) begin(ctx context.Context, status string) (reqCtx context.Context, gen uint64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if status == w.value {
		return nil, 0, false
	}
	if w.cancel != nil {
		w.cancel()
	}

	w.gen++
	w.value = status
	w.disabled = true
	w.loading = true

	reqCtx, w.cancel = context.WithCancel(ctx)
	return reqCtx, w.gen, true
}

// Badge is a small label reflecting a task's status.
type Badge struct {
	TaskID  string
	Text    string
	Classes []string
}

// HasClass reports whether the badge carries class c.
func (b Badge) HasClass(c string) bool {
	return slices.Contains(b.Classes, c)
}

// ClassName returns the classes joined as in an HTML class attribute.
func (b Badge) ClassName() string {
	return strings.Join(b.Classes, " ")
}

// Board holds every badge on a page. It is safe for concurrent use.
type Board struct {
	mu     sync.RWMutex
	badges []*Badge
}

// NewBoard returns an empty [Board].
func NewBoard() *Board {
	return &Board{}
}

// AddBadge binds a new badge to taskID.
func (b *Board) AddBadge(taskID, text string, classes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.badges = append(b.badges, &Badge{
		TaskID:  taskID,
		Text:    text,
		Classes: slices.Clone(classes),
	})
}

// Badges returns copies of the badges bound to taskID.
func (b *Board) Badges(taskID string) []Badge {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Badge
	for _, bg := range b.badges {
		if bg.TaskID == taskID {
			cp := *bg
			cp.Classes = slices.Clone(bg.Classes)
			out = append(out, cp)
		}
	}
	return out
}

// ApplyStatus relabels every badge bound to taskID for status.
//
// Existing "bg-*" style classes are replaced; other classes are kept.
// Returns the number of badges updated.
func (b *Board) ApplyStatus(taskID, status string) int {
	label := taskstatus.Label(status)
	class := taskstatus.Class(status)

	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, bg := range b.badges {
		if bg.TaskID != taskID {
			continue
		}
		bg.Text = label
		bg.Classes = slices.DeleteFunc(bg.Classes, func(c string) bool {
			return strings.HasPrefix(c, "bg-")
		})
		bg.Classes = append(bg.Classes, class)
		n++
	}
	return n
}
