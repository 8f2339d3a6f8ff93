package store

import (
	"cmp"
	"slices"
	"strconv"
	"sync"
	"time"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Subscribers receive changes via buffered channels (buffer size 100). Changes
// are sent non-blocking; if a subscriber's buffer is full, the change is
// dropped for that subscriber to prevent blocking the entire system.
type MemoryStore struct {
	mu          sync.RWMutex
	tasks       map[string]Task
	subscribers map[chan Change]struct{}
	subMu       sync.RWMutex
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:       make(map[string]Task),
		subscribers: make(map[chan Change]struct{}),
		now:         time.Now,
	}
}

// Put stores a task keyed by its ID, replacing any previous value.
func (m *MemoryStore) Put(task Task) {
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = m.now()
	}
	m.mu.Lock()
	m.tasks[task.ID] = task
	m.mu.Unlock()
}

// Get returns the task with the given id.
func (m *MemoryStore) Get(id string) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	return t, ok
}

// GetAll returns a snapshot of all tasks.
//
// Numeric ids sort numerically and before non-numeric ids, which sort
// lexically. The returned slice is a copy.
func (m *MemoryStore) GetAll() []Task {
	m.mu.RLock()
	results := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		results = append(results, t)
	}
	m.mu.RUnlock()

	slices.SortFunc(results, func(a, b Task) int {
		return compareIDs(a.ID, b.ID)
	})
	return results
}

// SetStatus updates the status of a task and notifies all subscribers.
//
// Setting a task to the status it already holds is accepted and still
// published, matching a client that re-submits its current value.
func (m *MemoryStore) SetStatus(id, status string) (Change, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return Change{}, ErrNotFound
	}
	change := Change{
		TaskID:    id,
		From:      t.Status,
		To:        status,
		ChangedAt: m.now(),
	}
	t.Status = status
	t.UpdatedAt = change.ChangedAt
	m.tasks[id] = t
	m.mu.Unlock()

	m.notifySubscribers(change)
	return change, nil
}

// Subscribe creates a new subscription and returns a channel for receiving changes.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Change {
	ch := make(chan Change, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Change) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the change to all active subscribers without blocking.
func (m *MemoryStore) notifySubscribers(change Change) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- change:
		default:
			// subscriber is slow, drop the message
		}
	}
}

func compareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
