package http

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/desktop"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/registry"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/utils"
)

// Handlers contains HTTP request handlers for the desktop API.
type Handlers struct {
	desktop *desktop.Desktop
	metrics *monitoring.Metrics
	usage   *monitoring.Usage
	log     *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(d *desktop.Desktop, metrics *monitoring.Metrics, usage *monitoring.Usage, log *logging.Logger) *Handlers {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{
		desktop: d,
		metrics: metrics,
		usage:   usage,
		log:     log.Scope("http"),
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Phalanx Desktop Service (Go)",
		"version": "0.2.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"desktop":  h.desktop.Stats(),
		"registry": h.desktop.Registry().Stats(),
		"sessions": h.desktop.Sessions().Stats(),
	})
}

// ListRegistryApps lists all registered applications
func (h *Handlers) ListRegistryApps(c *gin.Context) {
	reg := h.desktop.Registry()
	all := reg.All()

	category := c.Query("category")
	apps := make([]registry.Descriptor, 0, len(all))
	for _, d := range all {
		if category != "" && d.Category != category {
			continue
		}
		apps = append(apps, d)
	}

	c.JSON(http.StatusOK, gin.H{
		"apps":  apps,
		"stats": reg.Stats(),
	})
}

// GetRegistryApp gets a single registered application
func (h *Handlers) GetRegistryApp(c *gin.Context) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, ok := h.desktop.Registry().Get(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"app":        d,
		"open":       h.desktop.Launcher().IsOpen(appID),
		"was_opened": h.desktop.Registry().WasOpened(appID),
	})
}

// registerRequest is the JSON shape for registering an application over
// HTTP. The implementation field names a compiled-in factory; it
// defaults to the app id.
type registerRequest struct {
	ID             string                 `json:"id"`
	Implementation string                 `json:"implementation"`
	Title          string                 `json:"title"`
	Icon           string                 `json:"icon"`
	Category       string                 `json:"category"`
	StorageKey     *string                `json:"storage_key"`
	Level          interface{}            `json:"level"`
	AutoOpen       bool                   `json:"auto_open"`
	Persistent     bool                   `json:"persistent"`
	NonResizable   bool                   `json:"non_resizable"`
	TutorialCheck  string                 `json:"tutorial_check"`
	TutorialStart  string                 `json:"tutorial_start"`
	Extra          map[string]interface{} `json:"extra"`
}

// RegisterApp registers an application backed by a built-in implementation
func (h *Handlers) RegisterApp(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateAppID(req.ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateTitle(req.Title, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateCategory(req.Category, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	impl := req.Implementation
	if impl == "" {
		impl = req.ID
	}
	loader, err := h.desktop.BuiltinLoader(impl)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := registry.Config{
		Loader:        loader,
		Title:         req.Title,
		Icon:          req.Icon,
		Category:      req.Category,
		StorageKey:    req.StorageKey,
		Level:         types.LevelOf(req.Level),
		AutoOpen:      req.AutoOpen,
		Persistent:    req.Persistent,
		NonResizable:  req.NonResizable,
		TutorialCheck: req.TutorialCheck,
		TutorialStart: req.TutorialStart,
		Extra:         req.Extra,
	}

	if err := h.desktop.Registry().Register(req.ID, cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	d, _ := h.desktop.Registry().Get(req.ID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app":     d,
	})
}

// DeleteRegistryApp deregisters an application
func (h *Handlers) DeleteRegistryApp(c *gin.Context) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.desktop.Registry().Deregister(appID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app_id":  appID,
	})
}

// ResetAppOpened clears the first-open marker for an application
func (h *Handlers) ResetAppOpened(c *gin.Context) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.desktop.Registry().Has(appID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}

	h.desktop.Registry().ResetOpened(appID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app_id":  appID,
	})
}

// ResetAllOpened clears every first-open marker
func (h *Handlers) ResetAllOpened(c *gin.Context) {
	h.desktop.Registry().ResetAllOpened()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.desktop.Registry().Stats(),
	})
}

// OpenApp opens an application window or overlay
func (h *Handlers) OpenApp(c *gin.Context) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Title   string               `json:"title"`
		Options *types.WindowOptions `json:"options"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	res, err := h.desktop.Launcher().Open(c.Request.Context(), appID, req.Title, req.Options)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res == nil {
		// Gated below the current level.
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"app_id":  appID,
			"reason":  "level_gated",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"app_id":     res.ID,
		"window":     res.Window,
		"overlay":    res.Overlay,
		"first_time": res.FirstTime,
	})
}

// ListWindows lists all open windows
func (h *Handlers) ListWindows(c *gin.Context) {
	wins := h.desktop.Windows()

	c.JSON(http.StatusOK, gin.H{
		"windows": wins.Windows(),
		"taskbar": wins.Taskbar().Entries(),
		"stats":   h.desktop.Stats(),
	})
}

// GetWindow gets a single open window
func (h *Handlers) GetWindow(c *gin.Context) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, ok := h.desktop.Windows().Get(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// FocusWindow brings a window to foreground
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windowCommand(c, h.desktop.Windows().Focus)
}

// CloseWindow closes a window
func (h *Handlers) CloseWindow(c *gin.Context) {
	h.windowCommand(c, h.desktop.Windows().Close)
}

// MinimizeWindow minimizes a window
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowCommand(c, h.desktop.Windows().Minimize)
}

// ToggleWindow toggles a window between minimized and restored
func (h *Handlers) ToggleWindow(c *gin.Context) {
	h.windowCommand(c, h.desktop.Windows().Toggle)
}

// MaximizeWindow toggles a window between maximized and restored
func (h *Handlers) MaximizeWindow(c *gin.Context) {
	h.windowCommand(c, h.desktop.Windows().Maximize)
}

// windowCommand runs a boolean window operation with the shared
// validate-and-envelope plumbing.
func (h *Handlers) windowCommand(c *gin.Context, op func(string) bool) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	success := op(appID)

	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"app_id":  appID,
	})
}

// SetWindowBounds moves and resizes a window directly
func (h *Handlers) SetWindowBounds(c *gin.Context) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var bounds types.Rect
	if err := c.ShouldBindJSON(&bounds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bounds must have positive dimensions"})
		return
	}

	if !h.desktop.Windows().SetBounds(appID, bounds) {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return
	}

	info, _ := h.desktop.Windows().Get(appID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"window":  info,
	})
}

// GetLevel returns the current mission level
func (h *Handlers) GetLevel(c *gin.Context) {
	level := h.desktop.Launcher().Level()

	c.JSON(http.StatusOK, gin.H{
		"level": level,
		"apps":  h.desktop.Launcher().LevelApps(level),
	})
}

// SetLevel changes the mission level and opens its auto-open apps
func (h *Handlers) SetLevel(c *gin.Context) {
	var req struct {
		Level interface{} `json:"level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	level := types.LevelOf(req.Level)
	if level.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level is required"})
		return
	}

	h.desktop.Launcher().SetLevel(c.Request.Context(), level)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"level":   level,
		"desktop": h.desktop.Stats(),
	})
}

// LaunchLevelApp opens the level-specific variant of an application
func (h *Handlers) LaunchLevelApp(c *gin.Context) {
	appID := c.Param("id")

	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.desktop.Launcher().LaunchLevelSpecific(c.Request.Context(), appID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app_id":  appID,
	})
}

// ListOverlays lists open overlay content keyed by app id
func (h *Handlers) ListOverlays(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"overlays": h.desktop.OverlayContent(),
	})
}

// CloseOverlays closes every open overlay
func (h *Handlers) CloseOverlays(c *gin.Context) {
	closed := h.desktop.Launcher().CloseOverlays()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"closed":  closed,
	})
}

// Damage applies mission damage through the HUD
func (h *Handlers) Damage(c *gin.Context) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	hud, ok := h.desktop.HUD()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "hud not open"})
		return
	}

	remaining := hud.TakeDamage(req.Amount)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"integrity": remaining,
	})
}

// SaveSession saves the current workspace under a name
func (h *Handlers) SaveSession(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateSessionName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.desktop.Sessions().Save(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": snap.Metadata(),
	})
}

// SaveDefaultSession saves the workspace under the autosave name
func (h *Handlers) SaveDefaultSession(c *gin.Context) {
	snap, err := h.desktop.Sessions().SaveDefault(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": snap.Metadata(),
	})
}

// ListSessions lists all saved sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.desktop.Sessions().List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"stats":    h.desktop.Sessions().Stats(),
	})
}

// GetSession gets details of a specific session
func (h *Handlers) GetSession(c *gin.Context) {
	name := c.Param("name")

	if err := utils.ValidateSessionName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.desktop.Sessions().Load(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// RestoreSession restores a saved session
func (h *Handlers) RestoreSession(c *gin.Context) {
	name := c.Param("name")

	if err := utils.ValidateSessionName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.desktop.Sessions().Restore(c.Request.Context(), name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"desktop": h.desktop.Stats(),
		"windows": h.desktop.Windows().Windows(),
	})
}

// DeleteSession deletes a saved session
func (h *Handlers) DeleteSession(c *gin.Context) {
	name := c.Param("name")

	if err := utils.ValidateSessionName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.desktop.Sessions().Delete(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": name,
	})
}

// Stats aggregates statistics from every subsystem
func (h *Handlers) Stats(c *gin.Context) {
	body := gin.H{
		"desktop":  h.desktop.Stats(),
		"registry": h.desktop.Registry().Stats(),
		"sessions": h.desktop.Sessions().Stats(),
	}
	if h.usage != nil {
		body["usage"] = h.usage.Stats()
	}
	if h.metrics != nil {
		snap := h.metrics.GetSnapshot()
		body["requests"] = gin.H{
			"total":  snap.TotalRequests,
			"errors": snap.TotalErrors,
		}
		body["uptime_seconds"] = h.metrics.UptimeSeconds()
	}

	c.JSON(http.StatusOK, body)
}
