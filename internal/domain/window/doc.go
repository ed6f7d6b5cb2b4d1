// Package window is the central authority over the open-window set. It
// owns the per-id lifecycle state machine (open, minimized, restored,
// closed) with maximized and snapped as geometry sub-states, the
// monotonic z-order counter, header-drag and resize interaction, and the
// taskbar with its single-active-entry invariant.
package window
