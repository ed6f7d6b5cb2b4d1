// Package resize tracks live window-resize interactions: per-handle edge
// and corner math, minimum-size floors, and a window-manager back
// reference that raises the window when a resize begins.
package resize
