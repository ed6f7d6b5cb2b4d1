package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/desktop"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/resize"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is the inbound command envelope from the browser shell.
// Fields beyond Type are optional and message-type dependent.
type Message struct {
	Type   string  `json:"type"`
	ID     string  `json:"id,omitempty"`
	Title  string  `json:"title,omitempty"`
	Handle string  `json:"handle,omitempty"`
	Level  string  `json:"level,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Handler manages WebSocket connections
type Handler struct {
	desktop *desktop.Desktop
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(d *desktop.Desktop, metrics *monitoring.Metrics, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{
		desktop: d,
		metrics: metrics,
		log:     log.Scope("ws"),
	}
}

// session owns the outbound queue for one connection. Every socket write
// happens on the write pump goroutine; everything else enqueues.
type session struct {
	id  string
	out chan interface{}
}

func (s *session) send(data interface{}) {
	select {
	case s.out <- data:
	default:
		// Slow consumer. The client resyncs from desktop.sync on
		// reconnect, so dropping events here is safe.
	}
}

func (s *session) sendError(msg string) {
	s.send(map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.incConnections()
	defer h.decConnections()

	reqCtx := c.Request.Context()

	s := &session{id: uuid.NewString(), out: make(chan interface{}, 64)}
	stop := make(chan struct{})
	defer close(stop)
	go h.writePump(conn, s, stop)

	h.log.Debug("WebSocket client connected", zap.String("client_id", s.id))
	defer h.log.Debug("WebSocket client disconnected", zap.String("client_id", s.id))

	// Welcome plus a full state snapshot so reconnecting clients resync
	s.send(map[string]interface{}{
		"type":      "system",
		"message":   "Connected to Phalanx desktop",
		"client_id": s.id,
		"timestamp": time.Now().Unix(),
	})
	s.send(h.syncMessage())

	// Stream desktop events for the lifetime of the connection
	eventCh, cancel := h.desktop.Bus().Subscribe()
	defer cancel()
	go h.forwardEvents(eventCh, s)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("WebSocket read error", zap.Error(err))
			}
			break
		}
		h.recordMessage("in", msg.Type)
		h.dispatch(reqCtx, s, msg)
	}
}

// syncMessage snapshots the full desktop state for one client.
func (h *Handler) syncMessage() map[string]interface{} {
	wins := h.desktop.Windows()
	return map[string]interface{}{
		"type":      "desktop.sync",
		"windows":   wins.Windows(),
		"taskbar":   wins.Taskbar().Entries(),
		"overlays":  h.desktop.OverlayContent(),
		"viewport":  h.desktop.Viewport(),
		"level":     h.desktop.Launcher().Level(),
		"timestamp": time.Now().Unix(),
	}
}

func (h *Handler) forwardEvents(ch <-chan events.Event, s *session) {
	for evt := range ch {
		h.recordMessage("out", evt.Type)
		s.send(map[string]interface{}{
			"type":      evt.Type,
			"payload":   evt.Payload,
			"timestamp": time.Now().Unix(),
		})
	}
}

func (h *Handler) writePump(conn *websocket.Conn, s *session, stop <-chan struct{}) {
	for {
		select {
		case data := <-s.out:
			if err := conn.WriteJSON(data); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// dispatch routes one inbound message to the desktop core. Pointer and
// resize streams fail silently because the browser fires them at pointer
// frequency; command messages report their failures.
func (h *Handler) dispatch(ctx context.Context, s *session, msg Message) {
	wins := h.desktop.Windows()

	switch msg.Type {
	case "pointer.down":
		wins.DragStart(msg.ID, msg.X, msg.Y)
	case "pointer.move":
		wins.DragMove(msg.ID, msg.X, msg.Y)
	case "pointer.up":
		wins.DragEnd(msg.ID, msg.X, msg.Y)

	case "resize.start":
		handle := resize.Handle(msg.Handle)
		if !handle.Valid() {
			s.sendError("unknown resize handle: " + msg.Handle)
			return
		}
		wins.ResizeBegin(msg.ID, handle, msg.X, msg.Y)
	case "resize.move":
		wins.ResizeMove(msg.ID, msg.X, msg.Y)
	case "resize.end":
		wins.ResizeEnd(msg.ID)

	case "viewport":
		if msg.Width <= 0 || msg.Height <= 0 {
			s.sendError("viewport dimensions must be positive")
			return
		}
		h.desktop.SetViewport(msg.Width, msg.Height)

	case "app.open":
		h.handleOpen(ctx, s, msg)

	case "window.close":
		if !wins.Close(msg.ID) {
			s.sendError("cannot close window: " + msg.ID)
		}
	case "window.minimize":
		if !wins.Minimize(msg.ID) {
			s.sendError("cannot minimize window: " + msg.ID)
		}
	case "window.toggle":
		if !wins.Toggle(msg.ID) {
			s.sendError("cannot toggle window: " + msg.ID)
		}
	case "window.focus":
		if !wins.Focus(msg.ID) {
			s.sendError("window not found: " + msg.ID)
		}
	case "window.maximize":
		if !wins.Maximize(msg.ID) {
			s.sendError("cannot maximize window: " + msg.ID)
		}

	case "level.set":
		h.desktop.Launcher().SetLevel(ctx, types.LevelOf(msg.Level))

	case "ping":
		s.send(map[string]interface{}{"type": "pong", "timestamp": time.Now().Unix()})

	default:
		s.sendError("unknown message type: " + msg.Type)
	}
}

func (h *Handler) handleOpen(ctx context.Context, s *session, msg Message) {
	if msg.ID == "" {
		s.sendError("app id required")
		return
	}
	res, err := h.desktop.Launcher().Open(ctx, msg.ID, msg.Title, nil)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	if res == nil {
		// Gated below the current level
		s.send(map[string]interface{}{
			"type":      "app.denied",
			"id":        msg.ID,
			"timestamp": time.Now().Unix(),
		})
		return
	}

	// Window and overlay creation broadcast on the bus; this ack is for
	// the requesting client alone.
	s.send(map[string]interface{}{
		"type":       "app.opened",
		"id":         res.ID,
		"overlay":    res.Overlay,
		"first_time": res.FirstTime,
		"timestamp":  time.Now().Unix(),
	})
}

func (h *Handler) incConnections() {
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

func (h *Handler) decConnections() {
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func (h *Handler) recordMessage(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
