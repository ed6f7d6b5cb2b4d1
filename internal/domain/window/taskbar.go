package window

import (
	"sync"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// Taskbar tracks one entry per open window in opening order. At most one
// entry is active at a time; activating an entry deactivates whichever
// was active before. Every mutation publishes a taskbar.updated event
// carrying the full entry list.
type Taskbar struct {
	mu      sync.Mutex
	entries []types.TaskbarEntry
	bus     *events.Bus
}

// NewTaskbar creates an empty taskbar.
func NewTaskbar(bus *events.Bus) *Taskbar {
	return &Taskbar{bus: bus}
}

// Add appends an entry for a newly opened window. Duplicate ids update
// the existing entry in place.
func (t *Taskbar) Add(id, title, icon string) {
	t.mu.Lock()
	found := false
	for i := range t.entries {
		if t.entries[i].ID == id {
			t.entries[i].Title = title
			t.entries[i].Icon = icon
			found = true
			break
		}
	}
	if !found {
		t.entries = append(t.entries, types.TaskbarEntry{ID: id, Title: title, Icon: icon})
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snapshot)
}

// Remove deletes the entry for a closed window.
func (t *Taskbar) Remove(id string) {
	t.mu.Lock()
	for i := range t.entries {
		if t.entries[i].ID == id {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			break
		}
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snapshot)
}

// Activate marks one entry active and every other entry inactive in the
// same step.
func (t *Taskbar) Activate(id string) {
	t.mu.Lock()
	for i := range t.entries {
		t.entries[i].Active = t.entries[i].ID == id
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snapshot)
}

// Deactivate clears the active mark on one entry, used when the active
// window minimizes.
func (t *Taskbar) Deactivate(id string) {
	t.mu.Lock()
	changed := false
	for i := range t.entries {
		if t.entries[i].ID == id && t.entries[i].Active {
			t.entries[i].Active = false
			changed = true
		}
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	if changed {
		t.publish(snapshot)
	}
}

// ActiveID returns the active entry's window id, or "".
func (t *Taskbar) ActiveID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.Active {
			return e.ID
		}
	}
	return ""
}

// Entries returns a copy of the current entry list.
func (t *Taskbar) Entries() []types.TaskbarEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Len returns the entry count.
func (t *Taskbar) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Taskbar) snapshotLocked() []types.TaskbarEntry {
	out := make([]types.TaskbarEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Taskbar) publish(entries []types.TaskbarEntry) {
	if t.bus != nil {
		t.bus.Emit(events.TaskbarUpdated, entries)
	}
}
