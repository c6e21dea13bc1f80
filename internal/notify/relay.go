// Package notify delivers transient, non-blocking acknowledgements of
// state changes. Messages live in a bounded FIFO: the oldest is evicted
// when the cap is reached, and every message auto-expires unless dismissed
// earlier.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess     Kind = "success"
	KindInfo        Kind = "info"
	KindDestructive Kind = "destructive"
)

// State is the per-message lifecycle: active -> dismissing -> removed.
type State int

const (
	StateActive State = iota
	StateDismissing
	StateRemoved
)

// Message is one acknowledgement.
type Message struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       State     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type entry struct {
	msg          Message
	expireTimer  *time.Timer
	removalTimer *time.Timer
}

// Relay is the canonical notification queue. Safe for concurrent use;
// timer callbacks fire on their own goroutines.
type Relay struct {
	mu           sync.Mutex
	capacity     int
	autoDismiss  time.Duration
	removalDelay time.Duration
	entries      []*entry // oldest first
}

// NewRelay builds a relay holding at most capacity visible messages. Each
// message auto-dismisses after autoDismiss and is removed removalDelay
// after dismissal begins.
func NewRelay(capacity int, autoDismiss, removalDelay time.Duration) *Relay {
	if capacity < 1 {
		capacity = 1
	}
	return &Relay{capacity: capacity, autoDismiss: autoDismiss, removalDelay: removalDelay}
}

// Notify enqueues a message and returns its id. When the relay is full the
// oldest message is evicted first.
func (r *Relay) Notify(kind Kind, title, description string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.entries) >= r.capacity {
		r.evictLocked(r.entries[0])
	}

	e := &entry{msg: Message{
		ID:          uuid.NewString(),
		Kind:        kind,
		Title:       title,
		Description: description,
		State:       StateActive,
		CreatedAt:   time.Now(),
	}}
	id := e.msg.ID
	e.expireTimer = time.AfterFunc(r.autoDismiss, func() { r.Dismiss(id) })
	r.entries = append(r.entries, e)
	return id
}

// Dismiss moves a message from active to dismissing and schedules its
// removal. The auto-dismiss timer is cancelled so an early manual dismiss
// leaks nothing. Dismissing twice is a no-op.
func (r *Relay) Dismiss(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.findLocked(id)
	if e == nil || e.msg.State != StateActive {
		return
	}
	e.msg.State = StateDismissing
	e.expireTimer.Stop()
	e.removalTimer = time.AfterFunc(r.removalDelay, func() { r.remove(id) })
}

// Active returns the currently visible messages, oldest first. A message
// in the dismissing state is no longer visible.
func (r *Relay) Active() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]Message, 0, len(r.entries))
	for _, e := range r.entries {
		if e.msg.State == StateActive {
			active = append(active, e.msg)
		}
	}
	return active
}

// Close cancels every outstanding timer and drops all messages.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries
	r.entries = nil
	for _, e := range entries {
		if e.expireTimer != nil {
			e.expireTimer.Stop()
		}
		if e.removalTimer != nil {
			e.removalTimer.Stop()
		}
		e.msg.State = StateRemoved
	}
}

// findLocked returns the entry with the given id, or nil. Caller holds mu.
func (r *Relay) findLocked(id string) *entry {
	for _, e := range r.entries {
		if e.msg.ID == id {
			return e
		}
	}
	return nil
}

func (r *Relay) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.msg.ID == id {
			e.msg.State = StateRemoved
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// evictLocked drops one entry immediately, cancelling its timers.
func (r *Relay) evictLocked(victim *entry) {
	if victim.expireTimer != nil {
		victim.expireTimer.Stop()
	}
	if victim.removalTimer != nil {
		victim.removalTimer.Stop()
	}
	victim.msg.State = StateRemoved
	for i, e := range r.entries {
		if e == victim {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}
