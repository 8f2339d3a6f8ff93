package statusupdate

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 5 * time.Second

// Kind is the visual style of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindDanger  Kind = "danger"
)

// Notification is a transient message shown after a status change settles.
type Notification struct {
	ID      string
	Kind    Kind
	Message string
	ShownAt time.Time
}

// Notifier shows notifications and dismisses them after a fixed TTL.
//
// It keeps no history: dismissed notifications are gone. Safe for concurrent use.
type Notifier struct {
	ttl    time.Duration
	onShow []func(Notification)

	mu     sync.Mutex
	active []Notification
	timers map[string]*time.Timer
	closed bool
}

// NotifierOption configures a [Notifier].
type NotifierOption func(*Notifier)

// WithTTL sets how long notifications stay visible. Non-positive values are ignored.
func WithTTL(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.ttl = d
		}
	}
}

// WithOnShow registers a hook called for every shown notification.
// Hooks run on the caller's goroutine and must not block.
func WithOnShow(fn func(Notification)) NotifierOption {
	return func(n *Notifier) {
		if fn != nil {
			n.onShow = append(n.onShow, fn)
		}
	}
}

// NewNotifier returns a [Notifier] using [DefaultNotificationTTL] unless overridden.
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		ttl:    DefaultNotificationTTL,
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show displays a notification and schedules its dismissal.
func (n *Notifier) Show(kind Kind, message string) Notification {
	note := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		ShownAt: time.Now(),
	}

	n.mu.Lock()
	if !n.closed {
		n.active = append(n.active, note)
		n.timers[note.ID] = time.AfterFunc(n.ttl, func() { n.Dismiss(note.ID) })
	}
	n.mu.Unlock()

	for _, fn := range n.onShow {
		fn(note)
	}
	return note
}

// Dismiss removes a notification early. Unknown ids are ignored.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	n.active = slices.DeleteFunc(n.active, func(note Notification) bool {
		return note.ID == id
	})
}

// Active returns the notifications currently visible, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.active)
}

// Close dismisses everything and stops pending timers.
// Notifications shown after Close are passed to hooks but never displayed.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
	n.active = nil
	n.closed = true
}
