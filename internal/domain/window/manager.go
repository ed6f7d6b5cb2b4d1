package window

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/registry"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/resize"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/snap"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/scheduler"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/id"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"go.uber.org/zap"
)

// ErrContractViolation indicates an open request whose application does
// not implement the window contract. Bare-content windows are
// unsupported.
var ErrContractViolation = errors.New("application does not satisfy the window contract")

const (
	// zBase is the first z-index assigned. The counter only ever
	// increases; indexes are never reused.
	zBase = 100

	defaultWidth  = 720
	defaultHeight = 480

	cascadeBaseX = 72
	cascadeBaseY = 56
	cascadeStep  = 32
	cascadeWrap  = 10

	// clickSlop is the maximum pointer travel for a press-release pair to
	// count as a click.
	clickSlop = 5.0

	// doubleClickInterval is the maximum gap between two clicks forming a
	// double click.
	doubleClickInterval = 400 * time.Millisecond
)

// OpenRequest carries everything needed to open one window.
type OpenRequest struct {
	ID           string
	Title        string
	App          app.App
	Options      *types.WindowOptions
	Persistent   bool
	NonResizable bool
}

// CreatedPayload is the window.created event payload: the window record
// plus the application's root content document.
type CreatedPayload struct {
	Window  types.WindowInfo `json:"window"`
	Content types.Content    `json:"content"`
}

type record struct {
	id         string
	instanceID id.InstanceID
	title      string
	icon       string
	bounds     types.Rect
	restore    types.Rect
	z          uint64
	mode       types.WindowMode
	zone       string
	minimized  bool
	persistent bool
	resizable  bool
	content    types.Content
}

func (r *record) info() types.WindowInfo {
	return types.WindowInfo{
		ID:         r.id,
		InstanceID: r.instanceID.String(),
		Title:      r.title,
		Icon:       r.icon,
		Bounds:     r.bounds,
		Z:          r.z,
		Mode:       r.mode,
		Zone:       r.zone,
		Minimized:  r.minimized,
		Persistent: r.persistent,
		Resizable:  r.resizable,
	}
}

type dragSession struct {
	startX, startY float64
	baseX, baseY   float64
	origin         types.Rect
	rebased        bool
	moved          bool
}

type clickStamp struct {
	at   time.Time
	x, y float64
}

// Deps wires the manager's collaborators.
type Deps struct {
	Registry  *registry.Manager
	Taskbar   *Taskbar
	Snaps     *snap.Manager
	Resizes   *resize.Manager
	Scheduler *scheduler.Scheduler
	Bus       *events.Bus
	Viewport  func() types.Rect
	Log       *logging.Logger
}

// Manager is the central authority over the open-window set: lifecycle,
// z-order, geometry, drag and resize interaction, and the taskbar.
type Manager struct {
	mu       sync.Mutex
	windows  map[string]*record
	apps     map[string]app.App
	drags    map[string]*dragSession
	clicks   map[string]clickStamp
	zCounter uint64
	cascade  int

	reg      *registry.Manager
	taskbar  *Taskbar
	snaps    *snap.Manager
	resizes  *resize.Manager
	sched    *scheduler.Scheduler
	bus      *events.Bus
	viewport func() types.Rect
	now      func() time.Time
	log      *logging.Logger
	metrics  *monitoring.Metrics
	usage    *monitoring.Usage
}

// NewManager creates a window manager. All Deps fields except Log are
// expected to be non-nil in normal wiring.
func NewManager(d Deps) *Manager {
	log := d.Log
	if log == nil {
		log = logging.NewNop()
	}
	viewport := d.Viewport
	if viewport == nil {
		viewport = func() types.Rect {
			return types.Rect{Width: 1920, Height: 1032}
		}
	}
	return &Manager{
		windows:  make(map[string]*record),
		apps:     make(map[string]app.App),
		drags:    make(map[string]*dragSession),
		clicks:   make(map[string]clickStamp),
		zCounter: zBase,
		reg:      d.Registry,
		taskbar:  d.Taskbar,
		snaps:    d.Snaps,
		resizes:  d.Resizes,
		sched:    d.Scheduler,
		bus:      d.Bus,
		viewport: viewport,
		now:      time.Now,
		log:      log.Scope("window"),
	}
}

// WithMetrics attaches a metrics collector.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithUsage attaches a usage aggregator.
func (m *Manager) WithUsage(usage *monitoring.Usage) *Manager {
	m.usage = usage
	return m
}

// Open creates a window for the request's application. Opening an id that
// already has a window brings the existing one to front and returns it
// unchanged; nothing is constructed. The application must implement the
// window contract.
func (m *Manager) Open(req OpenRequest) (types.WindowInfo, error) {
	if req.App == nil {
		return types.WindowInfo{}, fmt.Errorf("failed to open window %s: %w", req.ID, ErrContractViolation)
	}
	wa, ok := req.App.(app.WindowApp)
	if !ok {
		return types.WindowInfo{}, fmt.Errorf("failed to open window %s: %w", req.ID, ErrContractViolation)
	}

	m.mu.Lock()
	if rec, exists := m.windows[req.ID]; exists {
		info := m.raiseLocked(rec)
		m.mu.Unlock()
		m.afterFocus(info)
		return info, nil
	}
	m.mu.Unlock()

	content := wa.CreateWindow()

	m.mu.Lock()
	if rec, exists := m.windows[req.ID]; exists {
		// Lost the race to another open of the same id. The fresh content
		// is discarded and the existing window wins.
		info := m.raiseLocked(rec)
		m.mu.Unlock()
		m.afterFocus(info)
		return info, nil
	}

	rec := &record{
		id:         req.ID,
		instanceID: id.NewInstanceID(),
		title:      req.Title,
		icon:       req.App.IconClass(),
		bounds:     m.placementLocked(req.Options),
		z:          m.nextZLocked(),
		mode:       types.ModeNormal,
		persistent: req.Persistent,
		resizable:  !req.NonResizable,
		content:    content,
	}
	m.windows[req.ID] = rec
	m.apps[req.ID] = req.App
	info := rec.info()
	open := len(m.windows)
	m.mu.Unlock()

	m.taskbar.Add(req.ID, req.Title, info.Icon)
	m.taskbar.Activate(req.ID)
	m.emit(events.WindowCreated, CreatedPayload{Window: info, Content: content})

	if m.metrics != nil {
		m.metrics.IncWindowsCreated()
		m.metrics.SetWindowsOpen(open)
	}
	if m.usage != nil {
		m.usage.RecordOpen(req.ID)
		m.usage.FocusChanged(req.ID)
	}

	if init, ok := req.App.(app.Initializer); ok {
		init.Initialize()
	}

	m.log.Info("Window opened",
		zap.String("window_id", req.ID),
		zap.Uint64("z", info.Z))
	return info, nil
}

// Close closes a window. Persistent windows refuse; no-op for unknown
// ids.
func (m *Manager) Close(id string) bool {
	return m.close(id, false)
}

func (m *Manager) close(windowID string, force bool) bool {
	m.mu.Lock()
	rec, ok := m.windows[windowID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if rec.persistent && !force {
		m.mu.Unlock()
		m.log.Debug("Refused close of persistent window", zap.String("window_id", windowID))
		return false
	}
	a := m.apps[windowID]
	delete(m.windows, windowID)
	delete(m.apps, windowID)
	delete(m.drags, windowID)
	delete(m.clicks, windowID)
	info := rec.info()
	open := len(m.windows)
	m.mu.Unlock()

	// The record was removed atomically above, so a second Close finds
	// nothing and Cleanup runs at most once per instance.
	if c, ok := a.(app.Cleaner); ok {
		c.Cleanup()
	}
	if m.sched != nil {
		m.sched.Cancel(windowID)
	}
	m.snaps.Release(windowID)
	m.resizes.Release(windowID)
	m.taskbar.Remove(windowID)
	m.emit(events.WindowClosed, info)

	if m.metrics != nil {
		m.metrics.IncWindowsClosed()
		m.metrics.SetWindowsOpen(open)
	}
	if m.usage != nil {
		m.usage.WindowClosed(windowID)
	}

	m.log.Info("Window closed", zap.String("window_id", windowID))
	return true
}

// Minimize hides a window without destroying it. Persistent windows
// refuse.
func (m *Manager) Minimize(id string) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if rec.persistent {
		m.mu.Unlock()
		m.log.Debug("Refused minimize of persistent window", zap.String("window_id", id))
		return false
	}
	if rec.minimized {
		m.mu.Unlock()
		return true
	}
	rec.minimized = true
	info := rec.info()
	m.mu.Unlock()

	m.taskbar.Deactivate(id)
	m.emit(events.WindowMinimized, info)
	if m.usage != nil {
		m.usage.FocusChanged("")
	}
	return true
}

// Toggle minimizes a visible window and restores a minimized one.
func (m *Manager) Toggle(id string) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if !rec.minimized {
		m.mu.Unlock()
		return m.Minimize(id)
	}
	rec.minimized = false
	info := m.raiseLocked(rec)
	m.mu.Unlock()

	m.emit(events.WindowRestored, info)
	m.afterFocus(info)
	return true
}

// Focus brings a window to the front: strictly increasing z, single
// active taskbar entry. Minimized windows are restored first.
func (m *Manager) Focus(id string) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	wasMinimized := rec.minimized
	rec.minimized = false
	info := m.raiseLocked(rec)
	m.mu.Unlock()

	if wasMinimized {
		m.emit(events.WindowRestored, info)
	}
	m.afterFocus(info)
	return true
}

// Maximize toggles a window's maximized state. A snapped window un-snaps
// instead; snap wins on toggle. Applications managing their own maximize
// geometry are delegated to; otherwise the manager keeps the prior rect
// itself. Non-resizable windows refuse.
func (m *Manager) Maximize(id string) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok || !rec.resizable {
		m.mu.Unlock()
		return false
	}

	if rec.mode == types.ModeSnapped {
		prior, wasSnapped := m.snaps.Unsnap(id)
		if wasSnapped {
			rec.bounds = prior
		}
		rec.mode = types.ModeNormal
		rec.zone = ""
		info := rec.info()
		m.mu.Unlock()

		m.emit(events.WindowMode, info)
		m.emit(events.WindowGeometry, info)
		return true
	}

	a := m.apps[id]
	current := rec.bounds
	m.mu.Unlock()

	vp := m.viewport()
	if mx, ok := a.(app.Maximizer); ok {
		bounds, maximized := mx.Maximize(current, vp)
		return m.applyMaximize(id, bounds, maximized, types.Rect{})
	}

	m.mu.Lock()
	rec, ok = m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if rec.mode == types.ModeMaximized {
		rec.bounds = rec.restore
		rec.mode = types.ModeNormal
	} else {
		rec.restore = rec.bounds
		rec.bounds = vp
		rec.mode = types.ModeMaximized
	}
	info := rec.info()
	m.mu.Unlock()

	m.emit(events.WindowMode, info)
	m.emit(events.WindowGeometry, info)
	return true
}

func (m *Manager) applyMaximize(id string, bounds types.Rect, maximized bool, restore types.Rect) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	rec.bounds = bounds
	if maximized {
		rec.mode = types.ModeMaximized
		rec.restore = restore
	} else {
		rec.mode = types.ModeNormal
	}
	info := rec.info()
	m.mu.Unlock()

	m.emit(events.WindowMode, info)
	m.emit(events.WindowGeometry, info)
	return true
}

// DragStart begins a header drag: the window is raised and the drag
// anchor recorded. Minimized windows cannot be dragged.
func (m *Manager) DragStart(id string, x, y float64) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok || rec.minimized {
		m.mu.Unlock()
		return false
	}
	m.drags[id] = &dragSession{
		startX: x, startY: y,
		baseX: x, baseY: y,
		origin: rec.bounds,
	}
	info := m.raiseLocked(rec)
	m.mu.Unlock()

	m.afterFocus(info)
	return true
}

// DragMove advances a drag. The first frame re-baselines three cases
// before applying deltas: an application-maximized window restores under
// the pointer, a snapped window regains its pre-snap size, and a
// manager-maximized window restores its stored rect. Every frame also
// feeds the snap manager for live zone previews.
func (m *Manager) DragMove(dragID string, x, y float64) (types.Rect, bool) {
	m.mu.Lock()
	rec, okRec := m.windows[dragID]
	s, okDrag := m.drags[dragID]
	if !okRec || !okDrag {
		m.mu.Unlock()
		return types.Rect{}, false
	}

	if !s.rebased {
		s.rebased = true
		m.rebaselineLocked(dragID, rec, s, x, y)
	}

	rec.bounds.X = s.origin.X + (x - s.baseX)
	rec.bounds.Y = s.origin.Y + (y - s.baseY)
	if math.Hypot(x-s.startX, y-s.startY) > clickSlop {
		s.moved = true
	}
	info := rec.info()
	m.mu.Unlock()

	m.snaps.HandleDragMove(x, y)
	m.emit(events.WindowGeometry, info)
	return info.Bounds, true
}

// rebaselineLocked pops the window out of maximized or snapped geometry
// at the start of a drag and re-anchors the drag math on the restored
// rect.
func (m *Manager) rebaselineLocked(dragID string, rec *record, s *dragSession, x, y float64) {
	a := m.apps[dragID]

	if mx, ok := a.(app.Maximizer); ok && mx.Maximized() {
		rec.bounds = mx.RestoreUnderPointer(x, m.viewport())
		rec.mode = types.ModeNormal
		rec.zone = ""
		s.origin = rec.bounds
		s.baseX, s.baseY = x, y
		return
	}

	if rec.mode == types.ModeSnapped {
		if restored, ok := m.snaps.HandleDragStart(dragID, rec.bounds, x); ok {
			rec.bounds = restored
			rec.mode = types.ModeNormal
			rec.zone = ""
			s.origin = restored
			s.baseX, s.baseY = x, y
		}
		return
	}

	if rec.mode == types.ModeMaximized {
		grip := 0.5
		if rec.bounds.Width > 0 {
			grip = (x - rec.bounds.X) / rec.bounds.Width
		}
		restored := rec.restore
		restored.X = x - restored.Width*grip
		restored.Y = rec.bounds.Y
		rec.bounds = restored
		rec.mode = types.ModeNormal
		s.origin = restored
		s.baseX, s.baseY = x, y
	}
}

// DragEnd finishes a drag: commit a snap when released inside a zone,
// otherwise clear the preview. A release that never left the click slop
// participates in double-click detection, which toggles maximize, or
// un-snaps a snapped window.
func (m *Manager) DragEnd(dragID string, x, y float64) bool {
	m.mu.Lock()
	rec, okRec := m.windows[dragID]
	s, okDrag := m.drags[dragID]
	if !okDrag {
		m.mu.Unlock()
		return false
	}
	delete(m.drags, dragID)
	if !okRec {
		m.mu.Unlock()
		return false
	}
	isClick := !s.moved && math.Hypot(x-s.startX, y-s.startY) <= clickSlop
	bounds := rec.bounds
	m.mu.Unlock()

	if !isClick {
		if snappedBounds, zone, ok := m.snaps.HandleDragEnd(dragID, bounds, x, y); ok {
			m.mu.Lock()
			if rec, still := m.windows[dragID]; still {
				rec.bounds = snappedBounds
				rec.mode = types.ModeSnapped
				rec.zone = string(zone)
				info := rec.info()
				m.mu.Unlock()
				m.emit(events.WindowMode, info)
				m.emit(events.WindowGeometry, info)
			} else {
				m.mu.Unlock()
			}
		}
		return true
	}

	m.snaps.HidePreview()

	m.mu.Lock()
	last, seen := m.clicks[dragID]
	now := m.now()
	double := seen &&
		now.Sub(last.at) <= doubleClickInterval &&
		math.Hypot(x-last.x, y-last.y) <= clickSlop
	if double {
		delete(m.clicks, dragID)
	} else {
		m.clicks[dragID] = clickStamp{at: now, x: x, y: y}
	}
	m.mu.Unlock()

	if double {
		m.Maximize(dragID)
	}
	return true
}

// ResizeBegin starts a resize on a border or corner handle. Only normal
// resizable windows accept one.
func (m *Manager) ResizeBegin(id string, handle resize.Handle, x, y float64) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok || !rec.resizable || rec.minimized || rec.mode != types.ModeNormal {
		m.mu.Unlock()
		return false
	}
	bounds := rec.bounds
	m.mu.Unlock()

	return m.resizes.Begin(id, handle, bounds, x, y)
}

// ResizeMove advances a resize and applies the clamped geometry.
func (m *Manager) ResizeMove(id string, x, y float64) (types.Rect, bool) {
	bounds, ok := m.resizes.Move(id, x, y)
	if !ok {
		return types.Rect{}, false
	}

	m.mu.Lock()
	rec, still := m.windows[id]
	if !still {
		m.mu.Unlock()
		return types.Rect{}, false
	}
	rec.bounds = bounds
	info := rec.info()
	m.mu.Unlock()

	m.emit(events.WindowGeometry, info)
	return bounds, true
}

// ResizeEnd finishes a resize session.
func (m *Manager) ResizeEnd(id string) bool {
	return m.resizes.End(id)
}

// CloseAll closes every tracked window, then releases all snap and
// resize state. Persistent windows are only torn down when force is set,
// used on shutdown paths.
func (m *Manager) CloseAll(force bool) int {
	closed := 0
	for _, id := range m.orderedIDs() {
		if m.close(id, force) {
			closed++
		}
	}
	m.snaps.Cleanup()
	m.resizes.Cleanup()
	return closed
}

// MinimizeAll minimizes every tracked window, then releases all snap and
// resize state.
func (m *Manager) MinimizeAll() int {
	minimized := 0
	for _, id := range m.orderedIDs() {
		if m.Minimize(id) {
			minimized++
		}
	}
	m.snaps.Cleanup()
	m.resizes.Cleanup()
	return minimized
}

// SaveStates collects state from every open application that supports
// it, keyed by window id. Applications without state support are
// skipped.
func (m *Manager) SaveStates() map[string]map[string]interface{} {
	m.mu.Lock()
	apps := make(map[string]app.App, len(m.apps))
	for id, a := range m.apps {
		apps[id] = a
	}
	m.mu.Unlock()

	states := make(map[string]map[string]interface{})
	for id, a := range apps {
		if st, ok := a.(app.Stateful); ok {
			states[id] = st.State()
		}
	}
	return states
}

// RestoreStates applies previously saved state to matching open
// applications. Returns how many were applied.
func (m *Manager) RestoreStates(states map[string]map[string]interface{}) int {
	applied := 0
	for id, state := range states {
		m.mu.Lock()
		a := m.apps[id]
		m.mu.Unlock()
		if a == nil {
			continue
		}
		if st, ok := a.(app.Stateful); ok {
			st.SetState(state)
			applied++
		}
	}
	return applied
}

// SetBounds replaces a window's geometry directly, used by session
// restore.
func (m *Manager) SetBounds(id string, bounds types.Rect) bool {
	m.mu.Lock()
	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	rec.bounds = bounds
	info := rec.info()
	m.mu.Unlock()

	m.emit(events.WindowGeometry, info)
	return true
}

// Windows returns every window ordered by z, back to front.
func (m *Manager) Windows() []types.WindowInfo {
	m.mu.Lock()
	out := make([]types.WindowInfo, 0, len(m.windows))
	for _, rec := range m.windows {
		out = append(out, rec.info())
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Get returns one window's snapshot.
func (m *Manager) Get(id string) (types.WindowInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.windows[id]
	if !ok {
		return types.WindowInfo{}, false
	}
	return rec.info(), true
}

// Content returns a window's root content document, used when a client
// reconnects and needs the full desktop state.
func (m *Manager) Content(id string) (types.Content, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.windows[id]
	if !ok {
		return nil, false
	}
	return rec.content, true
}

// IsOpen reports whether id has an open window.
func (m *Manager) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.windows[id]
	return ok
}

// OpenIDs returns the open window ids ordered by z.
func (m *Manager) OpenIDs() []string {
	return m.orderedIDs()
}

// Count returns the number of open windows.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Taskbar returns the taskbar owned by this manager.
func (m *Manager) Taskbar() *Taskbar {
	return m.taskbar
}

// IsApplicationRegistered forwards to the shared registry.
func (m *Manager) IsApplicationRegistered(id string) bool {
	return m.reg.Has(id)
}

// RegisteredApplications forwards to the shared registry.
func (m *Manager) RegisteredApplications() map[string]registry.Descriptor {
	return m.reg.All()
}

// RegisterApplication forwards to the shared registry.
func (m *Manager) RegisterApplication(id string, cfg registry.Config) error {
	return m.reg.Register(id, cfg)
}

// UnregisterApplication forwards to the shared registry.
func (m *Manager) UnregisterApplication(id string) bool {
	return m.reg.Deregister(id)
}

// raiseLocked bumps the window to the top of the z-order and returns its
// snapshot. Callers complete the focus with afterFocus once unlocked.
func (m *Manager) raiseLocked(rec *record) types.WindowInfo {
	rec.z = m.nextZLocked()
	return rec.info()
}

func (m *Manager) afterFocus(info types.WindowInfo) {
	m.taskbar.Activate(info.ID)
	m.emit(events.WindowFocused, info)
	if m.metrics != nil {
		m.metrics.IncFocusChanges()
	}
	if m.usage != nil {
		m.usage.FocusChanged(info.ID)
	}
}

func (m *Manager) nextZLocked() uint64 {
	m.zCounter++
	return m.zCounter
}

// placementLocked produces the next cascade position, then applies any
// explicit options over it.
func (m *Manager) placementLocked(opts *types.WindowOptions) types.Rect {
	step := float64(m.cascade%cascadeWrap) * cascadeStep
	m.cascade++

	r := types.Rect{
		X:      cascadeBaseX + step,
		Y:      cascadeBaseY + step,
		Width:  defaultWidth,
		Height: defaultHeight,
	}
	if opts != nil {
		if opts.Position != nil {
			r.X = opts.Position.X
			r.Y = opts.Position.Y
		}
		if opts.Size != nil {
			r.Width = opts.Size.Width
			r.Height = opts.Size.Height
		}
	}
	return r
}

func (m *Manager) orderedIDs() []string {
	m.mu.Lock()
	type zid struct {
		id string
		z  uint64
	}
	pairs := make([]zid, 0, len(m.windows))
	for id, rec := range m.windows {
		pairs = append(pairs, zid{id: id, z: rec.z})
	}
	m.mu.Unlock()

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].z < pairs[j].z })
	ids := make([]string, len(pairs))
	for i, p := range pairs {
		ids[i] = p.id
	}
	return ids
}

func (m *Manager) emit(eventType string, payload interface{}) {
	if m.bus != nil {
		m.bus.Emit(eventType, payload)
	}
}
