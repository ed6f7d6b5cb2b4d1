package app

import (
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// App is the base capability every application implementation satisfies.
type App interface {
	// IconClass returns the icon identifier used by the taskbar and
	// desktop icons.
	IconClass() string
}

// WindowApp is an application that renders inside a managed window.
type WindowApp interface {
	App

	// CreateWindow produces the application's root content document.
	// The application owns its chrome and content; the window manager
	// treats the document as opaque.
	CreateWindow() types.Content
}

// Surface is where overlay applications attach themselves. The desktop
// composition root implements it.
type Surface interface {
	// Attach places overlay content on the desktop surface.
	Attach(id string, content types.Content)

	// Detach removes previously attached overlay content.
	Detach(id string)
}

// OverlayApp is an application that renders as a fixed on-screen element
// outside the window system. Overlay apps never appear in the taskbar and
// are excluded from window batch operations.
type OverlayApp interface {
	App

	// AppendTo attaches the overlay to the desktop surface.
	AppendTo(surface Surface)
}

// Initializer is implemented by applications needing post-mount setup.
// Initialize is called once, after the window or overlay is attached.
type Initializer interface {
	Initialize()
}

// Cleaner is implemented by applications holding resources. Cleanup is
// called exactly once when the window is destroyed.
type Cleaner interface {
	Cleanup()
}

// Stateful is implemented by applications participating in workspace
// save/restore. Applications without it are silently skipped.
type Stateful interface {
	State() map[string]interface{}
	SetState(state map[string]interface{})
}

// Maximizer is implemented by applications that manage their own
// maximize geometry. The window manager delegates to it when present and
// falls back to its own bookkeeping otherwise.
type Maximizer interface {
	// Maximize toggles between full-bleed and restored geometry. It
	// receives the window's current bounds and the desktop viewport and
	// returns the new bounds plus whether the window is now maximized.
	// The application remembers the prior bounds itself.
	Maximize(current, viewport types.Rect) (types.Rect, bool)

	// Maximized reports whether the application is currently maximized.
	Maximized() bool

	// RestoreUnderPointer computes restored bounds positioned so the
	// window header sits under the pointer, used when a drag begins on a
	// maximized window.
	RestoreUnderPointer(pointerX float64, viewport types.Rect) types.Rect
}

// Factory constructs a fresh application instance. Instances take no
// constructor arguments; configuration happens through Initialize.
type Factory func() App
