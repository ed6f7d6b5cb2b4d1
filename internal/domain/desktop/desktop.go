package desktop

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/apps"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/launcher"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/registry"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/resize"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/session"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/snap"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/window"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/config"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/scheduler"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/storage"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// Options carries optional cross-cutting collaborators.
type Options struct {
	Metrics   *monitoring.Metrics
	Usage     *monitoring.Usage
	Tutorials launcher.TutorialManager
	Log       *logging.Logger
}

// Desktop composes the domain managers into one addressable unit and
// implements the surface overlay applications attach to. Transports
// receive a Desktop and reach everything through it.
type Desktop struct {
	cfg     config.DesktopConfig
	log     *logging.Logger
	bus     *events.Bus
	flags   *storage.Store
	sched   *scheduler.Scheduler
	metrics *monitoring.Metrics
	usage   *monitoring.Usage

	registry *registry.Manager
	windows  *window.Manager
	snaps    *snap.Manager
	resizes  *resize.Manager
	launcher *launcher.Launcher
	sessions *session.Manager

	mu       sync.RWMutex
	viewport types.Rect
	overlays map[string]types.Content
}

// lateRaiser defers the resize manager's back-reference to the window
// manager, which does not exist yet when the resize manager is built.
type lateRaiser struct {
	wins *window.Manager
}

func (r *lateRaiser) Focus(id string) bool {
	if r.wins == nil {
		return false
	}
	return r.wins.Focus(id)
}

// New builds the desktop: flag store, event bus, registry with the
// compiled-in catalog, interaction managers, launcher, and session
// manager. Catalog descriptor files are loaded separately via Seed.
func New(cfg config.DesktopConfig, opts Options) (*Desktop, error) {
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Scope("desktop")

	flags, err := storage.Open(filepath.Join(cfg.DataDir, "flags.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open flag store: %w", err)
	}

	bus := events.New()
	reg := registry.NewManager(cfg.Namespace, flags, log)
	if err := apps.RegisterAll(reg, bus); err != nil {
		return nil, err
	}

	d := &Desktop{
		cfg:     cfg,
		log:     log,
		bus:     bus,
		flags:   flags,
		sched:   scheduler.New(),
		metrics: opts.Metrics,
		usage:   opts.Usage,
		viewport: types.Rect{
			Width:  cfg.ViewportWidth,
			Height: cfg.ViewportHeight,
		},
		overlays: make(map[string]types.Content),
		registry: reg,
	}

	d.snaps = snap.NewManager(d.WorkArea, bus, log)
	raiser := &lateRaiser{}
	d.resizes = resize.NewManager(raiser, cfg.MinWindowSize, cfg.MinWindowSize, log)

	d.windows = window.NewManager(window.Deps{
		Registry:  reg,
		Taskbar:   window.NewTaskbar(bus),
		Snaps:     d.snaps,
		Resizes:   d.resizes,
		Scheduler: d.sched,
		Bus:       bus,
		Viewport:  d.WorkArea,
		Log:       log,
	})
	if opts.Metrics != nil {
		d.windows.WithMetrics(opts.Metrics)
	}
	if opts.Usage != nil {
		d.windows.WithUsage(opts.Usage)
	}
	raiser.wins = d.windows

	d.launcher = launcher.NewLauncher(launcher.Deps{
		Registry:    reg,
		Windows:     d.windows,
		Surface:     d,
		Tutorials:   opts.Tutorials,
		Scheduler:   d.sched,
		Bus:         bus,
		DeferredIDs: cfg.DeferredIDs,
		Log:         log,
	})
	if opts.Metrics != nil {
		d.launcher.WithMetrics(opts.Metrics)
	}
	if cfg.TutorialDelay > 0 {
		d.launcher.WithTutorialDelay(time.Duration(cfg.TutorialDelay) * time.Millisecond)
	}

	d.sessions = session.NewManager(d.windows, d.launcher, filepath.Join(cfg.DataDir, "sessions"), log)
	if opts.Metrics != nil {
		d.sessions.WithMetrics(opts.Metrics)
	}

	d.setRegistryGauge()
	return d, nil
}

// Seed loads catalog descriptor files on top of the compiled-in
// registry. Missing catalog directories are not an error.
func (d *Desktop) Seed(ctx context.Context) error {
	seeder := registry.NewSeeder(d.registry, d.cfg.CatalogDir, apps.Builtins(d.bus), d.log)
	if err := seeder.Seed(ctx); err != nil {
		return err
	}
	d.setRegistryGauge()
	return nil
}

// BuiltinLoader resolves a compiled-in implementation name to a lazy
// loader, for registrations that arrive over the API instead of from
// descriptor files.
func (d *Desktop) BuiltinLoader(impl string) (registry.Loader, error) {
	builtins := apps.Builtins(d.bus)
	factory, ok := builtins[impl]
	if !ok {
		return nil, fmt.Errorf("unknown implementation %q", impl)
	}
	return registry.Static(factory), nil
}

// Attach implements app.Surface.
func (d *Desktop) Attach(id string, content types.Content) {
	d.mu.Lock()
	d.overlays[id] = content
	d.mu.Unlock()
}

// Detach implements app.Surface.
func (d *Desktop) Detach(id string) {
	d.mu.Lock()
	delete(d.overlays, id)
	d.mu.Unlock()
}

// OverlayContent returns the documents currently attached to the
// desktop surface.
func (d *Desktop) OverlayContent() map[string]types.Content {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]types.Content, len(d.overlays))
	for id, content := range d.overlays {
		out[id] = content
	}
	return out
}

// SetViewport records the browser viewport size reported over the
// stream. Subsequent placement, snapping, and maximizing use it.
func (d *Desktop) SetViewport(width, height float64) {
	d.mu.Lock()
	d.viewport = types.Rect{Width: width, Height: height}
	d.mu.Unlock()
	d.log.Debug("Viewport updated")
}

// Viewport returns the full browser viewport.
func (d *Desktop) Viewport() types.Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewport
}

// WorkArea returns the viewport minus the taskbar strip at the bottom.
func (d *Desktop) WorkArea() types.Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	area := d.viewport
	area.Height -= d.cfg.TaskbarHeight
	if area.Height < 0 {
		area.Height = 0
	}
	return area
}

// Stats summarizes the live desktop.
func (d *Desktop) Stats() types.DesktopStats {
	wins := d.windows.Windows()
	minimized := 0
	for _, w := range wins {
		if w.Minimized {
			minimized++
		}
	}

	stats := types.DesktopStats{
		OpenWindows: len(wins),
		Minimized:   minimized,
		Overlays:    len(d.launcher.Overlays()),
		Level:       d.launcher.Level(),
	}
	if active := d.windows.Taskbar().ActiveID(); active != "" {
		stats.ActiveWindow = &active
	}
	return stats
}

// HUD returns the mission HUD when its overlay is live.
func (d *Desktop) HUD() (*apps.HUD, bool) {
	overlay, ok := d.launcher.Overlay(apps.HUDID)
	if !ok {
		return nil, false
	}
	hud, ok := overlay.(*apps.HUD)
	return hud, ok
}

// Registry exposes the application catalog.
func (d *Desktop) Registry() *registry.Manager { return d.registry }

// Windows exposes the window manager.
func (d *Desktop) Windows() *window.Manager { return d.windows }

// Launcher exposes the application launcher.
func (d *Desktop) Launcher() *launcher.Launcher { return d.launcher }

// Sessions exposes the session manager.
func (d *Desktop) Sessions() *session.Manager { return d.sessions }

// Bus exposes the event stream.
func (d *Desktop) Bus() *events.Bus { return d.bus }

// Close tears the desktop down: every window is force-closed with
// cleanup, overlays are detached, and pending timers cancelled.
func (d *Desktop) Close() {
	d.windows.CloseAll(true)
	d.launcher.CloseOverlays()
	d.sched.Close()
	d.log.Info("Desktop closed")
}

func (d *Desktop) setRegistryGauge() {
	if d.metrics != nil {
		d.metrics.SetRegistryApps(len(d.registry.IDs()))
	}
}
