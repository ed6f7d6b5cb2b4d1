package snap

import (
	"sync"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"go.uber.org/zap"
)

// Zone identifies a snap target region of the desktop surface.
type Zone string

const (
	ZoneNone  Zone = ""
	ZoneLeft  Zone = "left"
	ZoneRight Zone = "right"
	ZoneTop   Zone = "top"
)

// DefaultThreshold is the edge band, in pixels, that activates a zone
// while the pointer drags a window.
const DefaultThreshold = 20

// Preview is the snap.preview event payload.
type Preview struct {
	Zone   Zone       `json:"zone"`
	Bounds types.Rect `json:"bounds"`
}

type snapped struct {
	prior types.Rect
	zone  Zone
}

// Manager computes snap-zone geometry and applies or reverts snapped
// layout for windows. It holds no window state beyond the pre-snap
// rectangle needed to reverse a snap; callers pass current geometry in
// and apply the returned geometry themselves.
type Manager struct {
	mu        sync.Mutex
	viewport  func() types.Rect
	threshold float64
	preview   Zone
	windows   map[string]snapped
	bus       *events.Bus
	log       *logging.Logger
}

// NewManager creates a snap manager over a live viewport. The viewport
// function returns the desktop surface bounds (excluding the taskbar) so
// zone geometry tracks browser resizes.
func NewManager(viewport func() types.Rect, bus *events.Bus, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		viewport:  viewport,
		threshold: DefaultThreshold,
		windows:   make(map[string]snapped),
		bus:       bus,
		log:       log.Scope("snap"),
	}
}

// WithThreshold overrides the edge activation band.
func (m *Manager) WithThreshold(px float64) *Manager {
	m.threshold = px
	return m
}

// ZoneAt returns the zone the pointer activates, or ZoneNone. Side edges
// win over the top edge so corner drags snap to halves.
func (m *Manager) ZoneAt(x, y float64) Zone {
	vp := m.viewport()
	switch {
	case x <= vp.X+m.threshold:
		return ZoneLeft
	case x >= vp.X+vp.Width-m.threshold:
		return ZoneRight
	case y <= vp.Y+m.threshold:
		return ZoneTop
	default:
		return ZoneNone
	}
}

// ZoneBounds returns the geometry a window adopts when snapped to zone.
func (m *Manager) ZoneBounds(zone Zone) types.Rect {
	vp := m.viewport()
	switch zone {
	case ZoneLeft:
		return types.Rect{X: vp.X, Y: vp.Y, Width: vp.Width / 2, Height: vp.Height}
	case ZoneRight:
		return types.Rect{X: vp.X + vp.Width/2, Y: vp.Y, Width: vp.Width / 2, Height: vp.Height}
	case ZoneTop:
		return vp
	default:
		return types.Rect{}
	}
}

// HandleDragMove reports the active zone at the pointer position and
// publishes a preview event whenever the zone changes.
func (m *Manager) HandleDragMove(x, y float64) Zone {
	zone := m.ZoneAt(x, y)

	m.mu.Lock()
	changed := zone != m.preview
	m.preview = zone
	m.mu.Unlock()

	if changed && m.bus != nil {
		m.bus.Emit(events.SnapPreview, Preview{Zone: zone, Bounds: m.ZoneBounds(zone)})
	}
	return zone
}

// HandleDragEnd commits a snap when the pointer was released inside a
// zone. It stores the window's pre-snap geometry, clears the preview, and
// returns the snapped bounds for the caller to apply. The boolean reports
// whether a snap happened.
func (m *Manager) HandleDragEnd(id string, current types.Rect, x, y float64) (types.Rect, Zone, bool) {
	zone := m.ZoneAt(x, y)
	m.HidePreview()

	if zone == ZoneNone {
		return types.Rect{}, ZoneNone, false
	}

	m.mu.Lock()
	// A drag that ends in a zone while already snapped keeps the original
	// pre-snap rect, so unsnap restores the true free geometry.
	prior := current
	if s, ok := m.windows[id]; ok {
		prior = s.prior
	}
	m.windows[id] = snapped{prior: prior, zone: zone}
	m.mu.Unlock()

	m.log.Debug("Window snapped",
		zap.String("window_id", id),
		zap.String("zone", string(zone)))
	return m.ZoneBounds(zone), zone, true
}

// HandleDragStart re-baselines an already-snapped window at the start of
// a drag: the window regains its pre-snap size, positioned so the pointer
// keeps its relative grip on the header. Returns false when the window is
// not snapped; the caller then baselines on current geometry as usual.
func (m *Manager) HandleDragStart(id string, current types.Rect, x float64) (types.Rect, bool) {
	m.mu.Lock()
	s, ok := m.windows[id]
	if ok {
		delete(m.windows, id)
	}
	m.mu.Unlock()

	if !ok {
		return types.Rect{}, false
	}

	grip := 0.5
	if current.Width > 0 {
		grip = (x - current.X) / current.Width
	}
	restored := types.Rect{
		X:      x - s.prior.Width*grip,
		Y:      current.Y,
		Width:  s.prior.Width,
		Height: s.prior.Height,
	}
	return restored, true
}

// IsSnapped reports whether the window is currently snapped.
func (m *Manager) IsSnapped(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.windows[id]
	return ok
}

// SnappedZone returns the zone a window is snapped to, or ZoneNone.
func (m *Manager) SnappedZone(id string) Zone {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.windows[id].zone
}

// Unsnap restores the pre-snap geometry. Returns false when the window
// was not snapped.
func (m *Manager) Unsnap(id string) (types.Rect, bool) {
	m.mu.Lock()
	s, ok := m.windows[id]
	if ok {
		delete(m.windows, id)
	}
	m.mu.Unlock()

	if !ok {
		return types.Rect{}, false
	}
	return s.prior, true
}

// HidePreview clears any visible snap preview.
func (m *Manager) HidePreview() {
	m.mu.Lock()
	visible := m.preview != ZoneNone
	m.preview = ZoneNone
	m.mu.Unlock()

	if visible && m.bus != nil {
		m.bus.Emit(events.SnapPreview, Preview{Zone: ZoneNone})
	}
}

// Release drops snap state for one window, used when it closes.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	delete(m.windows, id)
	m.mu.Unlock()
}

// Cleanup releases all snap state and hides the preview, used during bulk
// teardown.
func (m *Manager) Cleanup() {
	m.HidePreview()
	m.mu.Lock()
	m.windows = make(map[string]snapped)
	m.mu.Unlock()
}
