package apps

import (
	"runtime"
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// SysMon is the system monitor: a windowed diagnostics panel that
// manages its own maximize geometry instead of leaving it to the window
// manager.
type SysMon struct {
	mu        sync.Mutex
	maximized bool
	prior     types.Rect
	started   time.Time
}

// NewSysMon creates a monitor instance.
func NewSysMon() *SysMon {
	return &SysMon{started: time.Now()}
}

// IconClass implements app.App.
func (s *SysMon) IconClass() string { return "icon-sysmon" }

// CreateWindow implements app.WindowApp. The document carries a
// point-in-time sample; refreshes go over the event stream.
func (s *SysMon) CreateWindow() types.Content {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return types.Content{
		"kind":           "sysmon",
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc":     mem.HeapAlloc,
		"heap_objects":   mem.HeapObjects,
		"gc_cycles":      mem.NumGC,
		"uptime_seconds": time.Since(s.started).Seconds(),
	}
}

// Maximize implements app.Maximizer, toggling between the full viewport
// and the rect it was invoked from.
func (s *SysMon) Maximize(current, viewport types.Rect) (types.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maximized {
		s.maximized = false
		return s.prior, false
	}
	s.prior = current
	s.maximized = true
	return viewport, true
}

// Maximized implements app.Maximizer.
func (s *SysMon) Maximized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maximized
}

// RestoreUnderPointer implements app.Maximizer: leave the maximized
// state and return the prior rect re-centered under the pointer at the
// top of the viewport, clamped to stay fully on screen.
func (s *SysMon) RestoreUnderPointer(pointerX float64, viewport types.Rect) types.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maximized = false

	bounds := s.prior
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = types.Rect{Width: viewport.Width / 2, Height: viewport.Height / 2}
	}

	x := pointerX - bounds.Width/2
	if x < viewport.X {
		x = viewport.X
	}
	if limit := viewport.X + viewport.Width - bounds.Width; x > limit {
		x = limit
	}
	return types.Rect{X: x, Y: viewport.Y, Width: bounds.Width, Height: bounds.Height}
}
