package launcher

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/registry"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/window"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/scheduler"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"go.uber.org/zap"
)

// DefaultTutorialDelay is how long after a first-time open the tutorial
// start hook fires, giving the window time to mount and animate.
const DefaultTutorialDelay = 1500 * time.Millisecond

// TutorialManager runs named tutorial hooks. Check decides whether a
// tutorial should start; Start begins it.
type TutorialManager interface {
	Check(hook string) (bool, error)
	Start(hook string) error
}

// Result describes a completed open.
type Result struct {
	ID        string            `json:"id"`
	Window    *types.WindowInfo `json:"window,omitempty"`
	Overlay   bool              `json:"overlay"`
	FirstTime bool              `json:"first_time"`
}

// Deps wires the launcher's collaborators.
type Deps struct {
	Registry  *registry.Manager
	Windows   *window.Manager
	Surface   app.Surface
	Tutorials TutorialManager
	Scheduler *scheduler.Scheduler
	Bus       *events.Bus

	// DeferredIDs are excluded from level auto-open; they wait for an
	// explicit narrative trigger.
	DeferredIDs []string

	Log *logging.Logger
}

// Launcher mediates "open this application for this level" requests. It
// is the only component that understands level gating and first-time
// semantics; the registry and window manager stay game-agnostic.
type Launcher struct {
	mu       sync.Mutex
	level    types.Level
	overlays map[string]app.OverlayApp

	reg       *registry.Manager
	wins      *window.Manager
	surface   app.Surface
	tutorials TutorialManager
	sched     *scheduler.Scheduler
	bus       *events.Bus
	deferred  map[string]bool
	delay     time.Duration
	log       *logging.Logger
	metrics   *monitoring.Metrics
}

// NewLauncher creates a launcher.
func NewLauncher(d Deps) *Launcher {
	log := d.Log
	if log == nil {
		log = logging.NewNop()
	}
	deferred := make(map[string]bool, len(d.DeferredIDs))
	for _, id := range d.DeferredIDs {
		deferred[id] = true
	}
	return &Launcher{
		overlays:  make(map[string]app.OverlayApp),
		reg:       d.Registry,
		wins:      d.Windows,
		surface:   d.Surface,
		tutorials: d.Tutorials,
		sched:     d.Scheduler,
		bus:       d.Bus,
		deferred:  deferred,
		delay:     DefaultTutorialDelay,
		log:       log.Scope("launcher"),
	}
}

// WithMetrics attaches a metrics collector.
func (l *Launcher) WithMetrics(metrics *monitoring.Metrics) *Launcher {
	l.metrics = metrics
	return l
}

// WithTutorialDelay overrides the delay before the tutorial start hook.
func (l *Launcher) WithTutorialDelay(d time.Duration) *Launcher {
	l.delay = d
	return l
}

// SetLevel stores the current level and auto-opens every registered
// application gated to it with AutoOpen set, except deferred ids.
// Individual failures are logged and the sweep continues.
func (l *Launcher) SetLevel(ctx context.Context, level types.Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Emit(events.LevelChanged, level)
	}
	l.log.Info("Level set", zap.String("level", level.String()))

	for id, d := range l.reg.All() {
		if !d.AutoOpen || d.Level.IsZero() || !d.Level.Matches(level) {
			continue
		}
		if l.deferred[id] {
			l.log.Debug("Deferring auto-open until its trigger", zap.String("app_id", id))
			continue
		}
		if err := l.LaunchLevelSpecific(ctx, id); err != nil {
			l.log.Warn("Auto-open failed",
				zap.String("app_id", id),
				zap.Error(err))
			if l.metrics != nil {
				l.metrics.IncAutoOpenFailures()
			}
		}
	}
}

// Level returns the current level.
func (l *Launcher) Level() types.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Open opens an application. Unknown ids are a hard error; a level-gated
// application outside the current level returns (nil, nil). A successful
// open constructs the instance, routes overlays to the desktop surface
// and windowed apps to the window manager, persists the first-open
// marker, and schedules the tutorial hooks on a first-time open.
func (l *Launcher) Open(ctx context.Context, id, title string, opts *types.WindowOptions) (*Result, error) {
	d, ok := l.reg.Get(id)
	if !ok {
		l.recordLaunch(id, "not_found")
		return nil, fmt.Errorf("failed to open application %s: %w", id, registry.ErrNotFound)
	}

	if !d.Level.IsZero() && !d.Level.Matches(l.Level()) {
		l.log.Info("Application not available at this level",
			zap.String("app_id", id),
			zap.String("app_level", d.Level.String()),
			zap.String("current_level", l.Level().String()))
		l.recordLaunch(id, "level_gated")
		return nil, nil
	}

	// The first-time decision reflects history before this open.
	firstTime := d.Tracked() && !l.reg.WasOpened(id)

	if l.hasOverlay(id) {
		l.recordLaunch(id, "ok")
		return &Result{ID: id, Overlay: true}, nil
	}

	instance, err := l.reg.CreateInstance(ctx, id)
	if err != nil {
		l.recordLaunch(id, "load_failed")
		return nil, fmt.Errorf("failed to open application %s: %w", id, err)
	}

	if overlay, isOverlay := instance.(app.OverlayApp); isOverlay {
		return l.openOverlay(id, d, overlay, firstTime)
	}

	if title == "" {
		title = d.Title
	}
	info, err := l.wins.Open(window.OpenRequest{
		ID:           id,
		Title:        title,
		App:          instance,
		Options:      opts,
		Persistent:   d.Persistent,
		NonResizable: d.NonResizable,
	})
	if err != nil {
		l.recordLaunch(id, "window_failed")
		return nil, fmt.Errorf("failed to open application %s: %w", id, err)
	}

	l.reg.MarkOpened(id)
	l.maybeStartTutorial(id, d, firstTime)
	l.recordLaunch(id, "ok")
	return &Result{ID: id, Window: &info, FirstTime: firstTime}, nil
}

func (l *Launcher) openOverlay(id string, d registry.Descriptor, overlay app.OverlayApp, firstTime bool) (*Result, error) {
	overlay.AppendTo(l.surface)
	if init, ok := overlay.(app.Initializer); ok {
		init.Initialize()
	}

	l.mu.Lock()
	l.overlays[id] = overlay
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Emit(events.OverlayShown, id)
	}
	l.log.Info("Overlay shown", zap.String("app_id", id))

	l.reg.MarkOpened(id)
	l.maybeStartTutorial(id, d, firstTime)
	l.recordLaunch(id, "ok")
	return &Result{ID: id, Overlay: true, FirstTime: firstTime}, nil
}

// maybeStartTutorial runs the check hook on a first-time open and, when
// it signals yes, schedules the start hook after the mount delay. Hook
// failures are logged and swallowed.
func (l *Launcher) maybeStartTutorial(id string, d registry.Descriptor, firstTime bool) {
	if !firstTime || !d.HasTutorial() || l.tutorials == nil {
		return
	}

	should, err := l.tutorials.Check(d.TutorialCheck)
	if err != nil {
		l.log.Warn("Tutorial check failed",
			zap.String("app_id", id),
			zap.String("hook", d.TutorialCheck),
			zap.Error(err))
		return
	}
	if !should {
		return
	}

	start := d.TutorialStart
	l.sched.After(id, l.delay, func() {
		if !l.wins.IsOpen(id) && !l.hasOverlay(id) {
			return
		}
		if err := l.tutorials.Start(start); err != nil {
			l.log.Warn("Tutorial start failed",
				zap.String("app_id", id),
				zap.String("hook", start),
				zap.Error(err))
		}
	})
}

// Launch opens an application and reports only success or failure. The
// soft level-gated outcome counts as failure.
func (l *Launcher) Launch(ctx context.Context, id, title string) bool {
	r, err := l.Open(ctx, id, title, nil)
	if err != nil {
		l.log.Warn("Launch failed", zap.String("app_id", id), zap.Error(err))
		return false
	}
	return r != nil
}

// LaunchLevelSpecific opens a level-gated application, logging a
// distinguishable skip when the level does not match. Used by the
// auto-open sweep.
func (l *Launcher) LaunchLevelSpecific(ctx context.Context, id string) error {
	d, ok := l.reg.Get(id)
	if !ok {
		return fmt.Errorf("failed to open application %s: %w", id, registry.ErrNotFound)
	}
	if !d.Level.IsZero() && !d.Level.Matches(l.Level()) {
		l.log.Info("Skipping level-specific application",
			zap.String("app_id", id),
			zap.String("app_level", d.Level.String()),
			zap.String("current_level", l.Level().String()))
		return nil
	}
	_, err := l.Open(ctx, id, "", nil)
	return err
}

// LevelApps returns the registered applications gated to the given
// level, defaulting to the current one.
func (l *Launcher) LevelApps(level types.Level) map[string]registry.Descriptor {
	if level.IsZero() {
		level = l.Level()
	}
	out := make(map[string]registry.Descriptor)
	for id, d := range l.reg.All() {
		if !d.Level.IsZero() && d.Level.Matches(level) {
			out[id] = d
		}
	}
	return out
}

// IsOpen forwards to the window manager.
func (l *Launcher) IsOpen(id string) bool {
	return l.wins.IsOpen(id)
}

// OpenApps forwards to the window manager.
func (l *Launcher) OpenApps() []string {
	return l.wins.OpenIDs()
}

// CloseApp forwards to the window manager.
func (l *Launcher) CloseApp(id string) bool {
	return l.wins.Close(id)
}

// Overlays returns the ids of overlays currently held by the launcher.
func (l *Launcher) Overlays() []string {
	l.mu.Lock()
	ids := make([]string, 0, len(l.overlays))
	for id := range l.overlays {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// Overlay returns a live overlay instance, for callers that drive
// overlay-specific behavior through capability assertions.
func (l *Launcher) Overlay(id string) (app.OverlayApp, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	overlay, ok := l.overlays[id]
	return overlay, ok
}

// CloseOverlay detaches an overlay from the desktop surface and cleans
// it up.
func (l *Launcher) CloseOverlay(id string) bool {
	l.mu.Lock()
	overlay, ok := l.overlays[id]
	if ok {
		delete(l.overlays, id)
	}
	l.mu.Unlock()
	if !ok {
		return false
	}

	if l.sched != nil {
		l.sched.Cancel(id)
	}
	l.surface.Detach(id)
	if c, ok := overlay.(app.Cleaner); ok {
		c.Cleanup()
	}
	if l.bus != nil {
		l.bus.Emit(events.OverlayClosed, id)
	}
	l.log.Info("Overlay closed", zap.String("app_id", id))
	return true
}

// CloseOverlays closes every overlay, used on shutdown.
func (l *Launcher) CloseOverlays() int {
	closed := 0
	for _, id := range l.Overlays() {
		if l.CloseOverlay(id) {
			closed++
		}
	}
	return closed
}

func (l *Launcher) hasOverlay(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.overlays[id]
	return ok
}

func (l *Launcher) recordLaunch(id, outcome string) {
	if l.metrics != nil {
		l.metrics.RecordLaunch(id, outcome)
	}
}
