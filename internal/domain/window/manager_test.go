package window

import (
	"errors"
	"testing"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/registry"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/resize"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/snap"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/scheduler"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

type fakeApp struct {
	icon        string
	created     int
	initialized int
	cleanups    int
	state       map[string]interface{}
}

func (f *fakeApp) IconClass() string { return f.icon }

func (f *fakeApp) CreateWindow() types.Content {
	f.created++
	return types.Content{"kind": "fake"}
}

func (f *fakeApp) Initialize() { f.initialized++ }
func (f *fakeApp) Cleanup()    { f.cleanups++ }

type statefulApp struct {
	fakeApp
}

func (s *statefulApp) State() map[string]interface{} { return s.state }

func (s *statefulApp) SetState(state map[string]interface{}) { s.state = state }

type maximizerApp struct {
	fakeApp
	maximized bool
	prior     types.Rect
}

func (a *maximizerApp) Maximize(current, viewport types.Rect) (types.Rect, bool) {
	if a.maximized {
		a.maximized = false
		return a.prior, false
	}
	a.prior = current
	a.maximized = true
	return viewport, true
}

func (a *maximizerApp) Maximized() bool { return a.maximized }

func (a *maximizerApp) RestoreUnderPointer(pointerX float64, viewport types.Rect) types.Rect {
	a.maximized = false
	return types.Rect{
		X:      pointerX - a.prior.Width/2,
		Y:      0,
		Width:  a.prior.Width,
		Height: a.prior.Height,
	}
}

type bareApp struct{}

func (bareApp) IconClass() string { return "icon-bare" }

type testRaiser struct {
	m *Manager
}

func (r *testRaiser) Focus(id string) bool {
	if r.m == nil {
		return false
	}
	return r.m.Focus(id)
}

type fixture struct {
	m     *Manager
	bus   *events.Bus
	snaps *snap.Manager
	sched *scheduler.Scheduler
}

func viewport() types.Rect {
	return types.Rect{X: 0, Y: 0, Width: 1920, Height: 1032}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := events.New()
	snaps := snap.NewManager(viewport, bus, nil)
	raiser := &testRaiser{}
	resizes := resize.NewManager(raiser, 200, 150, nil)
	sched := scheduler.New()
	t.Cleanup(sched.Close)
	reg := registry.NewManager("phalanx", nil, nil)

	m := NewManager(Deps{
		Registry:  reg,
		Taskbar:   NewTaskbar(bus),
		Snaps:     snaps,
		Resizes:   resizes,
		Scheduler: sched,
		Bus:       bus,
		Viewport:  viewport,
	})
	raiser.m = m
	return &fixture{m: m, bus: bus, snaps: snaps, sched: sched}
}

func mustOpen(t *testing.T, m *Manager, id string, a app.App) types.WindowInfo {
	t.Helper()
	info, err := m.Open(OpenRequest{ID: id, Title: id, App: a})
	if err != nil {
		t.Fatalf("Open %s failed: %v", id, err)
	}
	return info
}

func TestOpenIdempotent(t *testing.T) {
	f := newFixture(t)
	first := &fakeApp{icon: "icon-notes"}

	info1 := mustOpen(t, f.m, "notes", first)
	if first.created != 1 || first.initialized != 1 {
		t.Fatalf("Expected one create and one initialize, got %d/%d", first.created, first.initialized)
	}

	// A second open of the same id focuses the existing window and
	// constructs nothing from the new instance.
	second := &fakeApp{icon: "icon-notes"}
	info2, err := f.m.Open(OpenRequest{ID: "notes", Title: "notes", App: second})
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	if second.created != 0 || second.initialized != 0 {
		t.Error("Expected duplicate open to construct nothing")
	}
	if info2.InstanceID != info1.InstanceID {
		t.Error("Expected the existing window back")
	}
	if info2.Z <= info1.Z {
		t.Errorf("Expected focus to raise z above %d, got %d", info1.Z, info2.Z)
	}
	if f.m.Count() != 1 {
		t.Errorf("Expected 1 window, got %d", f.m.Count())
	}
}

func TestOpenContractViolation(t *testing.T) {
	f := newFixture(t)

	_, err := f.m.Open(OpenRequest{ID: "bad", Title: "bad", App: bareApp{}})
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("Expected ErrContractViolation, got %v", err)
	}
	_, err = f.m.Open(OpenRequest{ID: "nil", Title: "nil", App: nil})
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("Expected ErrContractViolation for nil app, got %v", err)
	}
	if f.m.Count() != 0 {
		t.Error("Expected no windows after rejected opens")
	}
}

func TestZOrderMonotonic(t *testing.T) {
	f := newFixture(t)
	mustOpen(t, f.m, "a", &fakeApp{icon: "ia"})
	b := mustOpen(t, f.m, "b", &fakeApp{icon: "ib"})

	last := b.Z
	for i := 0; i < 5; i++ {
		f.m.Focus("a")
		f.m.Focus("b")
		wins := f.m.Windows()
		top := wins[len(wins)-1]
		if top.ID != "b" {
			t.Fatalf("Expected b on top after focus, got %s", top.ID)
		}
		if top.Z <= last {
			t.Fatalf("Expected strictly increasing z, got %d after %d", top.Z, last)
		}
		last = top.Z
	}

	// Closing never frees a z value for reuse.
	f.m.Close("b")
	c := mustOpen(t, f.m, "c", &fakeApp{icon: "ic"})
	if c.Z <= last {
		t.Errorf("Expected fresh z above every prior value, got %d", c.Z)
	}
}

func TestCloseRunsCleanupOnce(t *testing.T) {
	f := newFixture(t)
	a := &fakeApp{icon: "ia"}
	mustOpen(t, f.m, "notes", a)

	if !f.m.Close("notes") {
		t.Fatal("Close failed")
	}
	if f.m.Close("notes") {
		t.Error("Expected second close to be a no-op")
	}
	if a.cleanups != 1 {
		t.Errorf("Expected exactly one cleanup, got %d", a.cleanups)
	}
	if f.m.IsOpen("notes") {
		t.Error("Expected window gone")
	}
	if f.m.Taskbar().Len() != 0 {
		t.Error("Expected taskbar entry removed")
	}
}

func TestCloseCancelsScheduledWork(t *testing.T) {
	f := newFixture(t)
	mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	fired := false
	f.sched.After("notes", time.Hour, func() { fired = true })

	f.m.Close("notes")
	if f.sched.Pending("notes") != 0 {
		t.Error("Expected pending timers cancelled on close")
	}
	if fired {
		t.Error("Timer must not fire after cancel")
	}
}

func TestPersistentRefusals(t *testing.T) {
	f := newFixture(t)
	a := &fakeApp{icon: "ia"}
	_, err := f.m.Open(OpenRequest{ID: "hud", Title: "hud", App: a, Persistent: true})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if f.m.Close("hud") {
		t.Error("Expected persistent window to refuse close")
	}
	if f.m.Minimize("hud") {
		t.Error("Expected persistent window to refuse minimize")
	}
	if a.cleanups != 0 {
		t.Error("Cleanup must not run on a refused close")
	}

	// Shutdown paths force the teardown.
	if n := f.m.CloseAll(true); n != 1 {
		t.Errorf("Expected forced close-all to close 1, got %d", n)
	}
	if a.cleanups != 1 {
		t.Errorf("Expected cleanup after forced close, got %d", a.cleanups)
	}
}

func TestNonResizableSuppressesMaximizeAndResize(t *testing.T) {
	f := newFixture(t)
	f.m.Open(OpenRequest{ID: "hud", Title: "hud", App: &fakeApp{icon: "ia"}, NonResizable: true})

	if f.m.Maximize("hud") {
		t.Error("Expected non-resizable window to refuse maximize")
	}
	if f.m.ResizeBegin("hud", resize.HandleRight, 0, 0) {
		t.Error("Expected non-resizable window to refuse resize")
	}
}

func TestMinimizeAndToggle(t *testing.T) {
	f := newFixture(t)
	mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	if f.m.Taskbar().ActiveID() != "notes" {
		t.Fatal("Expected notes active after open")
	}

	if !f.m.Minimize("notes") {
		t.Fatal("Minimize failed")
	}
	w, _ := f.m.Get("notes")
	if !w.Minimized {
		t.Error("Expected minimized state")
	}
	if f.m.Taskbar().ActiveID() != "" {
		t.Error("Expected active taskbar state cleared on minimize")
	}

	beforeZ := w.Z
	if !f.m.Toggle("notes") {
		t.Fatal("Toggle failed")
	}
	w, _ = f.m.Get("notes")
	if w.Minimized {
		t.Error("Expected toggle to restore")
	}
	if w.Z <= beforeZ {
		t.Error("Expected restore to raise the window")
	}
	if f.m.Taskbar().ActiveID() != "notes" {
		t.Error("Expected restore to re-activate the taskbar entry")
	}

	// Toggling a visible window minimizes it again.
	f.m.Toggle("notes")
	if w, _ := f.m.Get("notes"); !w.Minimized {
		t.Error("Expected second toggle to minimize")
	}
}

func TestSingleActiveTaskbarEntry(t *testing.T) {
	f := newFixture(t)
	mustOpen(t, f.m, "a", &fakeApp{icon: "ia"})
	mustOpen(t, f.m, "b", &fakeApp{icon: "ib"})

	f.m.Focus("a")
	active := 0
	for _, e := range f.m.Taskbar().Entries() {
		if e.Active {
			active++
			if e.ID != "a" {
				t.Errorf("Expected a active, got %s", e.ID)
			}
		}
	}
	if active != 1 {
		t.Errorf("Expected exactly one active entry, got %d", active)
	}
}

func TestMaximizeBookkeeping(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	if !f.m.Maximize("notes") {
		t.Fatal("Maximize failed")
	}
	w, _ := f.m.Get("notes")
	if w.Mode != types.ModeMaximized {
		t.Errorf("Expected maximized mode, got %s", w.Mode)
	}
	if w.Bounds != viewport() {
		t.Errorf("Expected full-bleed bounds, got %+v", w.Bounds)
	}

	f.m.Maximize("notes")
	w, _ = f.m.Get("notes")
	if w.Mode != types.ModeNormal {
		t.Errorf("Expected normal mode after toggle, got %s", w.Mode)
	}
	if w.Bounds != info.Bounds {
		t.Errorf("Expected original bounds %+v restored, got %+v", info.Bounds, w.Bounds)
	}
}

func TestMaximizeDelegatesToApp(t *testing.T) {
	f := newFixture(t)
	a := &maximizerApp{fakeApp: fakeApp{icon: "ia"}}
	info := mustOpen(t, f.m, "sysmon", a)

	f.m.Maximize("sysmon")
	if !a.maximized {
		t.Error("Expected delegation to the app's maximize")
	}
	w, _ := f.m.Get("sysmon")
	if w.Mode != types.ModeMaximized || w.Bounds != viewport() {
		t.Errorf("Expected app-maximized window, got %+v", w)
	}

	f.m.Maximize("sysmon")
	w, _ = f.m.Get("sysmon")
	if w.Mode != types.ModeNormal || w.Bounds != info.Bounds {
		t.Errorf("Expected app-restored window, got %+v", w)
	}
}

func TestSnapWinsOverMaximize(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	// Drag into the left edge band and release to snap.
	f.m.DragStart("notes", info.Bounds.X+10, info.Bounds.Y+5)
	f.m.DragMove("notes", 5, 500)
	f.m.DragEnd("notes", 5, 500)

	w, _ := f.m.Get("notes")
	if w.Mode != types.ModeSnapped || w.Zone != string(snap.ZoneLeft) {
		t.Fatalf("Expected left-snapped window, got %+v", w)
	}

	// Maximize on a snapped window un-snaps instead.
	if !f.m.Maximize("notes") {
		t.Fatal("Maximize failed")
	}
	w, _ = f.m.Get("notes")
	if w.Mode != types.ModeNormal {
		t.Fatalf("Expected un-snap instead of maximize, got mode %s", w.Mode)
	}
	if w.Bounds.Width != info.Bounds.Width || w.Bounds.Height != info.Bounds.Height {
		t.Errorf("Expected pre-snap size restored, got %+v", w.Bounds)
	}
}

func TestDragMovesWindow(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	startX := info.Bounds.X + 50
	startY := info.Bounds.Y + 10
	if !f.m.DragStart("notes", startX, startY) {
		t.Fatal("DragStart failed")
	}
	bounds, ok := f.m.DragMove("notes", startX+120, startY+80)
	if !ok {
		t.Fatal("DragMove failed")
	}
	if bounds.X != info.Bounds.X+120 || bounds.Y != info.Bounds.Y+80 {
		t.Errorf("Expected translated bounds, got %+v", bounds)
	}
	f.m.DragEnd("notes", startX+120, startY+80)

	w, _ := f.m.Get("notes")
	if w.Mode != types.ModeNormal {
		t.Errorf("Expected normal mode after free drag, got %s", w.Mode)
	}
}

func TestDragRebaselinesManagerMaximized(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})
	f.m.Maximize("notes")

	// Grab the middle of the maximized header and pull down.
	grabX := viewport().Width / 2
	f.m.DragStart("notes", grabX, 10)
	bounds, _ := f.m.DragMove("notes", grabX, 60)

	if bounds.Width != info.Bounds.Width || bounds.Height != info.Bounds.Height {
		t.Errorf("Expected restored size on first drag frame, got %+v", bounds)
	}
	w, _ := f.m.Get("notes")
	if w.Mode != types.ModeNormal {
		t.Errorf("Expected drag to pop out of maximize, got %s", w.Mode)
	}
	// Grabbing the center of the header keeps the center under the
	// pointer after the restore.
	if want := grabX - info.Bounds.Width/2; bounds.X != want {
		t.Errorf("Expected window re-anchored at %v, got %v", want, bounds.X)
	}
}

func TestDragRebaselinesAppMaximized(t *testing.T) {
	f := newFixture(t)
	a := &maximizerApp{fakeApp: fakeApp{icon: "ia"}}
	info := mustOpen(t, f.m, "sysmon", a)
	f.m.Maximize("sysmon")

	f.m.DragStart("sysmon", 400, 10)
	bounds, _ := f.m.DragMove("sysmon", 400, 11)

	if a.maximized {
		t.Error("Expected the app to leave maximized state")
	}
	if bounds.Width != info.Bounds.Width {
		t.Errorf("Expected app-restored width, got %+v", bounds)
	}
}

func TestDragRebaselinesSnapped(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	f.m.DragStart("notes", info.Bounds.X+10, info.Bounds.Y+5)
	f.m.DragMove("notes", 5, 500)
	f.m.DragEnd("notes", 5, 500)

	// Dragging the snapped window pops it back to pre-snap size.
	f.m.DragStart("notes", 400, 20)
	bounds, _ := f.m.DragMove("notes", 410, 30)

	if bounds.Width != info.Bounds.Width || bounds.Height != info.Bounds.Height {
		t.Errorf("Expected pre-snap size during drag, got %+v", bounds)
	}
	w, _ := f.m.Get("notes")
	if w.Mode != types.ModeNormal || w.Zone != "" {
		t.Errorf("Expected un-snapped mode during drag, got %+v", w)
	}
	if f.snaps.IsSnapped("notes") {
		t.Error("Expected snap state cleared once the drag starts")
	}
}

func TestDoubleClickTogglesMaximize(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	now := time.Now()
	f.m.now = func() time.Time { return now }

	x := info.Bounds.X + 40
	y := info.Bounds.Y + 8
	f.m.DragStart("notes", x, y)
	f.m.DragEnd("notes", x, y)

	now = now.Add(150 * time.Millisecond)
	f.m.DragStart("notes", x+1, y+1)
	f.m.DragEnd("notes", x+1, y+1)

	w, _ := f.m.Get("notes")
	if w.Mode != types.ModeMaximized {
		t.Errorf("Expected double click to maximize, got %s", w.Mode)
	}
}

func TestSlowClicksDoNotMaximize(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	now := time.Now()
	f.m.now = func() time.Time { return now }

	x := info.Bounds.X + 40
	y := info.Bounds.Y + 8
	f.m.DragStart("notes", x, y)
	f.m.DragEnd("notes", x, y)

	now = now.Add(time.Second)
	f.m.DragStart("notes", x, y)
	f.m.DragEnd("notes", x, y)

	if w, _ := f.m.Get("notes"); w.Mode != types.ModeNormal {
		t.Errorf("Expected slow clicks to leave the window alone, got %s", w.Mode)
	}
}

func TestResizeThroughManager(t *testing.T) {
	f := newFixture(t)
	info := mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})

	edgeX := info.Bounds.X + info.Bounds.Width
	edgeY := info.Bounds.Y + 100
	if !f.m.ResizeBegin("notes", resize.HandleRight, edgeX, edgeY) {
		t.Fatal("ResizeBegin failed")
	}

	// Resize-start raises the window.
	if w, _ := f.m.Get("notes"); w.Z <= info.Z {
		t.Error("Expected resize start to raise the window")
	}

	bounds, ok := f.m.ResizeMove("notes", edgeX+60, edgeY)
	if !ok {
		t.Fatal("ResizeMove failed")
	}
	if bounds.Width != info.Bounds.Width+60 {
		t.Errorf("Expected widened window, got %+v", bounds)
	}
	if !f.m.ResizeEnd("notes") {
		t.Error("ResizeEnd failed")
	}
}

func TestBatchOperations(t *testing.T) {
	f := newFixture(t)
	mustOpen(t, f.m, "a", &fakeApp{icon: "ia"})
	mustOpen(t, f.m, "b", &fakeApp{icon: "ib"})
	f.m.Open(OpenRequest{ID: "hud", Title: "hud", App: &fakeApp{icon: "ih"}, Persistent: true})

	if n := f.m.MinimizeAll(); n != 2 {
		t.Errorf("Expected 2 minimized (persistent exempt), got %d", n)
	}

	if n := f.m.CloseAll(false); n != 2 {
		t.Errorf("Expected 2 closed without force, got %d", n)
	}
	if !f.m.IsOpen("hud") {
		t.Error("Expected persistent window to survive close-all")
	}

	if n := f.m.CloseAll(true); n != 1 {
		t.Errorf("Expected forced close-all to take the persistent window, got %d", n)
	}
}

func TestSaveAndRestoreStates(t *testing.T) {
	f := newFixture(t)
	a := &statefulApp{fakeApp: fakeApp{icon: "ia"}}
	a.state = map[string]interface{}{"text": "draft"}
	mustOpen(t, f.m, "notes", a)
	mustOpen(t, f.m, "plain", &fakeApp{icon: "ib"})

	states := f.m.SaveStates()
	if len(states) != 1 {
		t.Fatalf("Expected only stateful apps saved, got %d", len(states))
	}
	if states["notes"]["text"] != "draft" {
		t.Errorf("Unexpected saved state: %+v", states["notes"])
	}

	applied := f.m.RestoreStates(map[string]map[string]interface{}{
		"notes": {"text": "restored"},
		"ghost": {"text": "nope"},
	})
	if applied != 1 {
		t.Errorf("Expected 1 state applied, got %d", applied)
	}
	if a.state["text"] != "restored" {
		t.Errorf("Expected state replaced, got %+v", a.state)
	}
}

func TestPlacementOptions(t *testing.T) {
	f := newFixture(t)

	info, err := f.m.Open(OpenRequest{
		ID:    "notes",
		Title: "notes",
		App:   &fakeApp{icon: "ia"},
		Options: &types.WindowOptions{
			Position: &types.Point{X: 10, Y: 20},
			Size:     &types.Size{Width: 300, Height: 200},
		},
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	want := types.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	if info.Bounds != want {
		t.Errorf("Expected %+v, got %+v", want, info.Bounds)
	}
}

func TestWindowEvents(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.bus.Subscribe()
	defer cancel()

	mustOpen(t, f.m, "notes", &fakeApp{icon: "ia"})
	f.m.Minimize("notes")
	f.m.Toggle("notes")
	f.m.Close("notes")

	seen := map[string]bool{}
drain:
	for {
		select {
		case evt := <-ch:
			seen[evt.Type] = true
		default:
			break drain
		}
	}

	for _, want := range []string{
		events.WindowCreated,
		events.WindowMinimized,
		events.WindowRestored,
		events.WindowClosed,
		events.TaskbarUpdated,
	} {
		if !seen[want] {
			t.Errorf("Expected %s event", want)
		}
	}
}

func TestRegistryPassthroughs(t *testing.T) {
	f := newFixture(t)

	err := f.m.RegisterApplication("notes", registry.Config{
		Loader: registry.Static(func() app.App { return &fakeApp{icon: "ia"} }),
	})
	if err != nil {
		t.Fatalf("RegisterApplication failed: %v", err)
	}

	if !f.m.IsApplicationRegistered("notes") {
		t.Error("Expected registration visible through the manager")
	}
	if len(f.m.RegisteredApplications()) != 1 {
		t.Error("Expected one registered application")
	}
	if !f.m.UnregisterApplication("notes") {
		t.Error("Expected unregistration through the manager")
	}
}
