// Package storage provides the persisted flag store for the desktop.
//
// Flags are string key-value pairs that survive restarts: per-application
// "<namespace>_<appname>_opened" first-run markers, level started/completed
// markers, and the current level. The store holds everything in memory and
// rewrites a single JSON file on mutation, using an atomic rename so a
// crash never leaves a torn file.
//
// The key namespace is owned by callers; the store never invents keys.
package storage
