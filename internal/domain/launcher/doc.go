// Package launcher mediates application-open requests: level gating,
// auto-open sweeps when a level activates, first-time-open tutorial
// hooks, and the overlay path for applications that live outside the
// window system.
package launcher
