// Package progress reports desktop lifecycle telemetry to the external
// progression service.
//
// The desktop owns no XP or scoring logic. When levels change, applications
// open or close, or a mission clock expires, the reporter posts an opaque
// lifecycle event and moves on. The client composes retries, a rate limiter,
// and a circuit breaker so a slow or dead progression service never degrades
// the desktop itself.
package progress
