// Package desktop composes the domain managers into the simulated PC
// handed to the transports.
//
// The Desktop owns the registry, window manager, snap and resize
// managers, launcher, and session manager, plus the pieces they share:
// the event bus, the persisted flag store, and the timer scheduler. It
// also implements the surface overlay applications attach to, and
// tracks the browser viewport reported over the stream.
//
// Construction order matters only in one place: the resize manager
// needs to raise windows but exists before the window manager does, so
// it gets a late-bound back-reference.
package desktop
