// Package events provides the in-process event bus for the desktop.
//
// Window lifecycle, taskbar, snap preview, and overlay-dispatched game
// events are published here and streamed to the frontend by the WebSocket
// layer. Publishing never blocks: slow subscribers drop events and the
// drop count is tracked for diagnostics.
package events
