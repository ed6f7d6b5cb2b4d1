// Package main is the entry point for the Phalanx desktop service.
//
// The service is the authoritative half of the in-browser training
// desktop: the browser renders, this process decides. It owns the app
// registry, window geometry, level gating, and session snapshots, and
// pushes every state change to connected clients.
//
// Architecture:
//
//	Browser (renderer) → Go desktop service → Progression service (HTTP)
//
// The server provides:
//   - REST API for registry, window, level, and session operations
//   - WebSocket stream for pointer input and desktop events
//   - Descriptor catalog seeding from the data directory
//   - Prometheus metrics at /metrics
//
// Configuration comes from environment variables with development
// defaults; the -port flag overrides PORT.
//
// Usage:
//
//	# Defaults (port 8000, ./data)
//	./server
//
//	# Explicit port
//	./server -port 9000
//
// SIGINT and SIGTERM trigger a graceful shutdown that closes the
// desktop and flushes the logger.
package main
