package launcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/registry"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/resize"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/snap"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/window"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/scheduler"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

type memFlags struct {
	mu    sync.Mutex
	flags map[string]bool
}

func newMemFlags() *memFlags {
	return &memFlags{flags: make(map[string]bool)}
}

func (f *memFlags) GetBool(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[key]
}

func (f *memFlags) SetBool(key string, v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[key] = v
	return nil
}

func (f *memFlags) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.flags, key)
	return nil
}

type winApp struct {
	icon string
}

func (a *winApp) IconClass() string { return a.icon }

func (a *winApp) CreateWindow() types.Content {
	return types.Content{"kind": "test"}
}

type overlayApp struct {
	mu       sync.Mutex
	appends  int
	cleanups int
}

func (a *overlayApp) IconClass() string { return "icon-overlay" }

func (a *overlayApp) AppendTo(surface app.Surface) {
	a.mu.Lock()
	a.appends++
	a.mu.Unlock()
	surface.Attach("hud", types.Content{"kind": "overlay"})
}

func (a *overlayApp) Cleanup() {
	a.mu.Lock()
	a.cleanups++
	a.mu.Unlock()
}

type fakeSurface struct {
	mu       sync.Mutex
	attached map[string]types.Content
	detaches int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{attached: make(map[string]types.Content)}
}

func (s *fakeSurface) Attach(id string, content types.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached[id] = content
}

func (s *fakeSurface) Detach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attached, id)
	s.detaches++
}

func (s *fakeSurface) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attached[id]
	return ok
}

type fakeTutorials struct {
	mu       sync.Mutex
	checks   []string
	starts   []string
	should   bool
	checkErr error
	startErr error
}

func (f *fakeTutorials) Check(hook string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, hook)
	return f.should, f.checkErr
}

func (f *fakeTutorials) Start(hook string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, hook)
	return f.startErr
}

func (f *fakeTutorials) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checks)
}

func (f *fakeTutorials) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

type fixture struct {
	l       *Launcher
	reg     *registry.Manager
	wins    *window.Manager
	surface *fakeSurface
	tuts    *fakeTutorials
	sched   *scheduler.Scheduler
	bus     *events.Bus
}

type raiser struct {
	m *window.Manager
}

func (r *raiser) Focus(id string) bool {
	if r.m == nil {
		return false
	}
	return r.m.Focus(id)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := events.New()
	viewport := func() types.Rect {
		return types.Rect{Width: 1920, Height: 1032}
	}
	snaps := snap.NewManager(viewport, bus, nil)
	r := &raiser{}
	resizes := resize.NewManager(r, 200, 150, nil)
	sched := scheduler.New()
	t.Cleanup(sched.Close)
	reg := registry.NewManager("phalanx", newMemFlags(), nil)

	wins := window.NewManager(window.Deps{
		Registry:  reg,
		Taskbar:   window.NewTaskbar(bus),
		Snaps:     snaps,
		Resizes:   resizes,
		Scheduler: sched,
		Bus:       bus,
		Viewport:  viewport,
	})
	r.m = wins

	surface := newFakeSurface()
	tuts := &fakeTutorials{should: true}
	l := NewLauncher(Deps{
		Registry:    reg,
		Windows:     wins,
		Surface:     surface,
		Tutorials:   tuts,
		Scheduler:   sched,
		Bus:         bus,
		DeferredIDs: []string{"hud"},
	}).WithTutorialDelay(5 * time.Millisecond)

	return &fixture{l: l, reg: reg, wins: wins, surface: surface, tuts: tuts, sched: sched, bus: bus}
}

func registerWindowed(t *testing.T, f *fixture, id string, cfg registry.Config) {
	t.Helper()
	if cfg.Loader == nil {
		cfg.Loader = registry.Static(func() app.App { return &winApp{icon: "icon-" + id} })
	}
	if err := f.reg.Register(id, cfg); err != nil {
		t.Fatalf("Register %s failed: %v", id, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestOpenUnknownIsHardError(t *testing.T) {
	f := newFixture(t)

	_, err := f.l.Open(context.Background(), "ghost", "", nil)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLevelGatingIsSoft(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "scanner", registry.Config{Level: "3"})
	f.l.SetLevel(context.Background(), "2")

	r, err := f.l.Open(context.Background(), "scanner", "", nil)
	if err != nil {
		t.Fatalf("Expected soft outcome, got error %v", err)
	}
	if r != nil {
		t.Errorf("Expected nil result for a gated app, got %+v", r)
	}
	if f.wins.IsOpen("scanner") {
		t.Error("Expected no window for a gated app")
	}
}

func TestLevelMatchingIsLoose(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "scanner", registry.Config{Level: "3"})

	// "3.0" and "3" name the same level.
	f.l.SetLevel(context.Background(), "3.0")
	r, err := f.l.Open(context.Background(), "scanner", "", nil)
	if err != nil || r == nil {
		t.Fatalf("Expected loose numeric match to open, got r=%v err=%v", r, err)
	}
	if !f.wins.IsOpen("scanner") {
		t.Error("Expected window open")
	}
}

func TestSetLevelAutoOpens(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "briefing", registry.Config{Level: "2", AutoOpen: true})
	registerWindowed(t, f, "manual", registry.Config{Level: "2"})
	registerWindowed(t, f, "other-level", registry.Config{Level: "3", AutoOpen: true})

	// hud is in the deferred set and must wait for its trigger.
	f.reg.Register("hud", registry.Config{
		Loader:   registry.Static(func() app.App { return &overlayApp{} }),
		Level:    "2",
		AutoOpen: true,
	})

	// A broken loader must not stop the rest of the sweep.
	f.reg.Register("broken", registry.Config{
		Loader: registry.LoaderFunc(func(context.Context) (app.Factory, error) {
			return nil, fmt.Errorf("import exploded")
		}),
		Level:    "2",
		AutoOpen: true,
	})

	f.l.SetLevel(context.Background(), "2")

	if !f.wins.IsOpen("briefing") {
		t.Error("Expected auto-open of the matching app")
	}
	if f.wins.IsOpen("manual") {
		t.Error("Expected no auto-open without the flag")
	}
	if f.wins.IsOpen("other-level") {
		t.Error("Expected no auto-open for another level")
	}
	if len(f.l.Overlays()) != 0 {
		t.Error("Expected deferred overlay to stay closed")
	}
}

func TestFirstTimeDecidedBeforeMarking(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "notes", registry.Config{
		TutorialCheck: "notes.check",
		TutorialStart: "notes.start",
	})

	r, err := f.l.Open(context.Background(), "notes", "", nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !r.FirstTime {
		t.Error("Expected first open to be first-time")
	}
	if !f.reg.WasOpened("notes") {
		t.Error("Expected opened marker persisted after open")
	}
	if f.tuts.checkCount() != 1 {
		t.Fatalf("Expected one tutorial check, got %d", f.tuts.checkCount())
	}

	waitFor(t, "tutorial start", func() bool { return f.tuts.startCount() == 1 })
	f.tuts.mu.Lock()
	started := f.tuts.starts[0]
	f.tuts.mu.Unlock()
	if started != "notes.start" {
		t.Errorf("Expected notes.start hook, got %s", started)
	}

	// Close and reopen: the persisted marker makes it a repeat open and
	// the hooks stay quiet.
	f.wins.Close("notes")
	r, err = f.l.Open(context.Background(), "notes", "", nil)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if r.FirstTime {
		t.Error("Expected repeat open to not be first-time")
	}
	if f.tuts.checkCount() != 1 {
		t.Errorf("Expected no further tutorial checks, got %d", f.tuts.checkCount())
	}
}

func TestTutorialSkippedWhenCheckSaysNo(t *testing.T) {
	f := newFixture(t)
	f.tuts.should = false
	registerWindowed(t, f, "notes", registry.Config{
		TutorialCheck: "notes.check",
		TutorialStart: "notes.start",
	})

	f.l.Open(context.Background(), "notes", "", nil)

	time.Sleep(30 * time.Millisecond)
	if f.tuts.startCount() != 0 {
		t.Error("Expected no tutorial start when the check declines")
	}
}

func TestTutorialHookFailuresSwallowed(t *testing.T) {
	f := newFixture(t)
	f.tuts.checkErr = fmt.Errorf("hook crashed")
	registerWindowed(t, f, "notes", registry.Config{
		TutorialCheck: "notes.check",
		TutorialStart: "notes.start",
	})

	r, err := f.l.Open(context.Background(), "notes", "", nil)
	if err != nil || r == nil {
		t.Fatalf("Expected open to survive a failing check hook, got r=%v err=%v", r, err)
	}
	if !f.wins.IsOpen("notes") {
		t.Error("Expected window open despite hook failure")
	}
}

func TestTutorialCancelledWhenWindowCloses(t *testing.T) {
	f := newFixture(t)
	f.l.WithTutorialDelay(50 * time.Millisecond)
	registerWindowed(t, f, "notes", registry.Config{
		TutorialCheck: "notes.check",
		TutorialStart: "notes.start",
	})

	f.l.Open(context.Background(), "notes", "", nil)
	f.wins.Close("notes")

	time.Sleep(150 * time.Millisecond)
	if f.tuts.startCount() != 0 {
		t.Error("Expected pending tutorial cancelled with its window")
	}
}

func TestOverlayBranch(t *testing.T) {
	f := newFixture(t)
	ov := &overlayApp{}
	f.reg.Register("hud", registry.Config{
		Loader: registry.Static(func() app.App { return ov }),
	})

	r, err := f.l.Open(context.Background(), "hud", "", nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !r.Overlay || r.Window != nil {
		t.Errorf("Expected overlay result, got %+v", r)
	}
	if !f.surface.has("hud") {
		t.Error("Expected overlay attached to the desktop surface")
	}
	if f.wins.IsOpen("hud") {
		t.Error("Overlay must not reach the window manager")
	}
	if f.wins.Taskbar().Len() != 0 {
		t.Error("Overlay must not appear in the taskbar")
	}
	if got := f.l.Overlays(); len(got) != 1 || got[0] != "hud" {
		t.Errorf("Expected launcher to hold the overlay, got %v", got)
	}

	// A second open is idempotent and does not re-append.
	f.l.Open(context.Background(), "hud", "", nil)
	ov.mu.Lock()
	appends := ov.appends
	ov.mu.Unlock()
	if appends != 1 {
		t.Errorf("Expected one append, got %d", appends)
	}

	if !f.l.CloseOverlay("hud") {
		t.Fatal("CloseOverlay failed")
	}
	if f.surface.has("hud") {
		t.Error("Expected overlay detached")
	}
	ov.mu.Lock()
	cleanups := ov.cleanups
	ov.mu.Unlock()
	if cleanups != 1 {
		t.Errorf("Expected one cleanup, got %d", cleanups)
	}
	if f.l.CloseOverlay("hud") {
		t.Error("Expected second CloseOverlay to report false")
	}
}

func TestPersistentDescriptorFlowsToWindow(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "secure-panel", registry.Config{Persistent: true, NonResizable: true})

	f.l.Open(context.Background(), "secure-panel", "", nil)

	if f.l.CloseApp("secure-panel") {
		t.Error("Expected persistent window to refuse close")
	}
	if f.wins.Maximize("secure-panel") {
		t.Error("Expected non-resizable window to refuse maximize")
	}
}

func TestLaunchBool(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "notes", registry.Config{})
	registerWindowed(t, f, "gated", registry.Config{Level: "9"})

	if !f.l.Launch(context.Background(), "notes", "") {
		t.Error("Expected launch success")
	}
	if f.l.Launch(context.Background(), "ghost", "") {
		t.Error("Expected launch failure for unknown id")
	}
	if f.l.Launch(context.Background(), "gated", "") {
		t.Error("Expected launch failure for a gated app")
	}
}

func TestLevelApps(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "a", registry.Config{Level: "2"})
	registerWindowed(t, f, "b", registry.Config{Level: "2"})
	registerWindowed(t, f, "c", registry.Config{Level: "3"})
	registerWindowed(t, f, "ungated", registry.Config{})

	apps := f.l.LevelApps("2")
	if len(apps) != 2 {
		t.Errorf("Expected 2 level-2 apps, got %d", len(apps))
	}

	f.l.SetLevel(context.Background(), "3")
	apps = f.l.LevelApps("")
	if len(apps) != 1 {
		t.Errorf("Expected current level default, got %d apps", len(apps))
	}
}

func TestWindowTitleDefaultsToDescriptor(t *testing.T) {
	f := newFixture(t)
	registerWindowed(t, f, "notes", registry.Config{Title: "Field Notes"})

	r, err := f.l.Open(context.Background(), "notes", "", nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if r.Window.Title != "Field Notes" {
		t.Errorf("Expected descriptor title, got %q", r.Window.Title)
	}
}
