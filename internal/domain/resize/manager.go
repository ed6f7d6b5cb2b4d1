package resize

import (
	"strings"
	"sync"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// Handle names the border or corner region a resize grabs.
type Handle string

const (
	HandleLeft        Handle = "left"
	HandleRight       Handle = "right"
	HandleTop         Handle = "top"
	HandleBottom      Handle = "bottom"
	HandleTopLeft     Handle = "top-left"
	HandleTopRight    Handle = "top-right"
	HandleBottomLeft  Handle = "bottom-left"
	HandleBottomRight Handle = "bottom-right"
)

// Valid reports whether the handle names a known region.
func (h Handle) Valid() bool {
	switch h {
	case HandleLeft, HandleRight, HandleTop, HandleBottom,
		HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return true
	}
	return false
}

func (h Handle) hasLeft() bool   { return h == HandleLeft || strings.HasSuffix(string(h), "-left") }
func (h Handle) hasRight() bool  { return h == HandleRight || strings.HasSuffix(string(h), "-right") }
func (h Handle) hasTop() bool    { return h == HandleTop || strings.HasPrefix(string(h), "top-") }
func (h Handle) hasBottom() bool { return h == HandleBottom || strings.HasPrefix(string(h), "bottom-") }

// Raiser is the window-manager back-reference used to bring a window to
// the front when a resize begins.
type Raiser interface {
	Focus(id string) bool
}

type session struct {
	handle  Handle
	start   types.Rect
	anchorX float64
	anchorY float64
}

// Manager tracks live resize interactions. Like the snap manager it is a
// pure geometry utility: callers pass pointer positions in and apply the
// returned rectangles themselves.
type Manager struct {
	mu        sync.Mutex
	raiser    Raiser
	minWidth  float64
	minHeight float64
	sessions  map[string]*session
	log       *logging.Logger
}

// NewManager creates a resize manager with the given size floors.
func NewManager(raiser Raiser, minWidth, minHeight float64, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		raiser:    raiser,
		minWidth:  minWidth,
		minHeight: minHeight,
		sessions:  make(map[string]*session),
		log:       log.Scope("resize"),
	}
}

// Begin starts a resize session and raises the window. Returns false for
// an unknown handle.
func (m *Manager) Begin(id string, handle Handle, current types.Rect, x, y float64) bool {
	if !handle.Valid() {
		return false
	}

	m.mu.Lock()
	m.sessions[id] = &session{handle: handle, start: current, anchorX: x, anchorY: y}
	m.mu.Unlock()

	if m.raiser != nil {
		m.raiser.Focus(id)
	}
	return true
}

// Move computes the window's rectangle for the current pointer position,
// clamped to the size floors. The fixed edge stays fixed when a moving
// edge hits its floor. Returns false when no session is active for id.
func (m *Manager) Move(id string, x, y float64) (types.Rect, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return types.Rect{}, false
	}

	dx := x - s.anchorX
	dy := y - s.anchorY
	r := s.start

	switch {
	case s.handle.hasRight():
		r.Width = max(s.start.Width+dx, m.minWidth)
	case s.handle.hasLeft():
		r.Width = max(s.start.Width-dx, m.minWidth)
		r.X = s.start.X + s.start.Width - r.Width
	}

	switch {
	case s.handle.hasBottom():
		r.Height = max(s.start.Height+dy, m.minHeight)
	case s.handle.hasTop():
		r.Height = max(s.start.Height-dy, m.minHeight)
		r.Y = s.start.Y + s.start.Height - r.Height
	}

	return r, true
}

// End finishes a resize session. Returns false when none was active.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Active reports whether a resize session is in progress for id.
func (m *Manager) Active(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Release drops any session for one window, used when it closes.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Cleanup releases every session, used during bulk teardown.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	m.sessions = make(map[string]*session)
	m.mu.Unlock()
}
