// Package types provides shared data structures for the desktop backend.
//
// This package defines core types used across all backend components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - Rect, Point, Size: Window geometry
//   - Level: Training-level identifier with loose numeric/string equality
//   - WindowInfo: Serializable snapshot of a managed window
//   - TaskbarEntry: One taskbar slot per open window
//   - Content: Opaque view document rendered by the frontend
//
// Request Types:
//   - RegisterAppRequest, OpenAppRequest: Registry and launcher operations
//   - SetLevelRequest: Level activation
//   - WSMessage: WebSocket communication
//
// State Management:
//   - WindowMode: Geometry sub-state (normal, maximized, snapped)
//   - RegistryStats, DesktopStats: System statistics
//
// Example Usage:
//
//	info := types.WindowInfo{
//	    ID:     "notes",
//	    Title:  "Notes",
//	    Bounds: types.Rect{X: 120, Y: 80, Width: 640, Height: 480},
//	    Mode:   types.ModeNormal,
//	}
package types
