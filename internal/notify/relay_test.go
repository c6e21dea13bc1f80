package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCapEvictsOldestFirst(t *testing.T) {
	relay := NewRelay(4, time.Minute, time.Minute)
	defer relay.Close()

	ids := make([]string, 0, 5)
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		ids = append(ids, relay.Notify(KindInfo, title, ""))
	}

	active := relay.Active()
	assert.Len(t, active, 4)
	assert.Equal(t, "two", active[0].Title)
	assert.Equal(t, "five", active[3].Title)

	// the evicted message is gone even if dismissed later
	relay.Dismiss(ids[0])
	assert.Len(t, relay.Active(), 4)
}

func TestDismissIsTwoPhase(t *testing.T) {
	relay := NewRelay(4, time.Minute, 20*time.Millisecond)
	defer relay.Close()

	id := relay.Notify(KindSuccess, "intro sent", "")
	assert.Len(t, relay.Active(), 1)

	// phase one: no longer visible
	relay.Dismiss(id)
	assert.Empty(t, relay.Active())

	// phase two: eventually removed
	assert.Eventually(t, func() bool {
		relay.mu.Lock()
		defer relay.mu.Unlock()
		return len(relay.entries) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestAutoDismissAfterDuration(t *testing.T) {
	relay := NewRelay(4, 20*time.Millisecond, 10*time.Millisecond)
	defer relay.Close()

	relay.Notify(KindInfo, "expiring", "")
	assert.Len(t, relay.Active(), 1)

	assert.Eventually(t, func() bool {
		return len(relay.Active()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDoubleDismissIsNoOp(t *testing.T) {
	relay := NewRelay(4, time.Minute, time.Minute)
	defer relay.Close()

	id := relay.Notify(KindDestructive, "deleted", "")
	relay.Dismiss(id)
	relay.Dismiss(id)
	assert.Empty(t, relay.Active())
}

func TestDismissUnknownIDIsNoOp(t *testing.T) {
	relay := NewRelay(4, time.Minute, time.Minute)
	defer relay.Close()

	relay.Notify(KindInfo, "kept", "")
	relay.Dismiss("no-such-id")
	assert.Len(t, relay.Active(), 1)
}

func TestCloseCancelsEverything(t *testing.T) {
	relay := NewRelay(4, time.Minute, time.Minute)
	relay.Notify(KindInfo, "a", "")
	relay.Notify(KindInfo, "b", "")

	relay.Close()
	assert.Empty(t, relay.Active())
}

func TestCloseStopsEveryTimer(t *testing.T) {
	relay := NewRelay(4, time.Hour, time.Hour)
	for _, title := range []string{"a", "b", "c", "d"} {
		relay.Notify(KindInfo, title, "")
	}

	relay.mu.Lock()
	entries := append([]*entry(nil), relay.entries...)
	relay.mu.Unlock()

	relay.Close()
	assert.Empty(t, relay.Active())

	for _, e := range entries {
		assert.Equal(t, StateRemoved, e.msg.State, "%s left un-removed", e.msg.Title)
		// Stop reports false on an already-stopped timer.
		assert.False(t, e.expireTimer.Stop(), "%s auto-dismiss timer left running", e.msg.Title)
	}
}
