// Package app defines the capability contract every application
// implementation satisfies.
//
// The window manager and launcher only ever see these interfaces. A
// registered application is either a WindowApp (renders inside a managed
// window) or an OverlayApp (renders as a fixed on-screen element outside
// the window and taskbar system). Optional capabilities are discovered by
// interface assertion: Initializer, Cleaner, Stateful, Maximizer.
package app
