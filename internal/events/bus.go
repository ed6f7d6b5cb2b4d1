package events

import (
	"sync"
	"sync/atomic"
)

// Event types published by the desktop core.
const (
	WindowCreated   = "window.created"
	WindowClosed    = "window.closed"
	WindowMinimized = "window.minimized"
	WindowRestored  = "window.restored"
	WindowFocused   = "window.focused"
	WindowGeometry  = "window.geometry"
	WindowMode      = "window.mode"
	TaskbarUpdated  = "taskbar.updated"
	SnapPreview     = "snap.preview"
	OverlayShown    = "overlay.shown"
	OverlayClosed   = "overlay.closed"
	LevelChanged    = "level.changed"
	LevelTimeUp     = "level.timeup"
	PlayerDamage    = "player.damage"
)

// Event is one desktop occurrence with an opaque payload.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Bus fans events out to subscribers over buffered channels.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	nextID  uint64
	buffer  int
	dropped atomic.Uint64
}

const defaultBuffer = 256

// New creates a bus with the default per-subscriber buffer.
func New() *Bus {
	return NewWithBuffer(defaultBuffer)
}

// NewWithBuffer creates a bus with a custom per-subscriber buffer size.
func NewWithBuffer(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		subs:   make(map[uint64]chan Event),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The returned cancel function
// removes the subscription and closes the channel; it is safe to call
// more than once.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
// Events to subscribers with full buffers are dropped.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Emit is shorthand for publishing a typed event.
func (b *Bus) Emit(eventType string, payload interface{}) {
	b.Publish(Event{Type: eventType, Payload: payload})
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns the number of events dropped due to full buffers.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
