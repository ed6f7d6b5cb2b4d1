// Package scheduler provides cancellable delayed continuations.
//
// The desktop sequences UI follow-ups with short fixed delays (tutorial
// offers after a window mounts, narrative kick-off after the desktop
// appears). Each continuation is registered under an owner key so closing
// a window cancels everything still pending for it. Continuations that
// fire anyway must re-check their target exists before acting.
package scheduler
