// Package http provides HTTP handlers and routing for the desktop REST API.
//
// This package implements all HTTP endpoints using the Gin framework,
// including health checks, the application catalog, window commands,
// level control, and session management. The WebSocket stream carries
// the interactive traffic; these endpoints cover the request/response
// surface: catalog administration, mission control, and persistence.
//
// Endpoints:
//   - Health: / and /health
//   - Registry: /registry/apps, /registry/apps/:id, /registry/apps/:id/reset
//   - Apps: /apps/:id/open, /apps/:id/launch-level
//   - Windows: /windows, /windows/:id plus focus, close, minimize,
//     toggle, maximize, and bounds commands
//   - Level: /level
//   - Overlays: /overlays, /hud/damage
//   - Sessions: /sessions, /sessions/:name, /sessions/:name/restore
//   - Stats: /stats
//   - Client logs: /logs/stream
//
// Features:
//   - JSON request/response handling
//   - Proper HTTP status codes
//   - Error response formatting
//   - Request validation
//
// Example Usage:
//
//	handlers := http.NewHandlers(desktop, metrics, usage, logger)
//	router.GET("/health", handlers.Health)
//	router.POST("/apps/:id/open", handlers.OpenApp)
package http
