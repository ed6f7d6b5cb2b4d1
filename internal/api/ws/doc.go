// Package ws streams the desktop over WebSocket.
//
// The browser renders whatever the backend tells it to and reports raw
// input back. One connection carries both directions: inbound pointer,
// viewport, and command messages, and outbound desktop events fanned out
// from the event bus. Each connection gets a full desktop.sync snapshot
// on connect so reconnects need no client-side state.
//
// Message Types (Client → Server):
//   - pointer.down / pointer.move / pointer.up: drag a window by its title bar
//   - resize.start / resize.move / resize.end: resize from a border or corner
//   - viewport: report the browser viewport size
//   - app.open: open an application by id
//   - window.close / window.minimize / window.toggle / window.focus / window.maximize
//   - level.set: set the mission level
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system: connection banner
//   - desktop.sync: full state snapshot
//   - app.opened / app.denied: open acknowledgements
//   - window.*, taskbar.updated, snap.preview, overlay.*, level.*, player.damage:
//     bus events, forwarded with their payloads
//   - pong: ping reply
//   - error: command failure
//
// Example Usage:
//
//	handler := ws.NewHandler(desktop, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
