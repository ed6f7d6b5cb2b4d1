// Package registry is the single source of truth for what applications
// exist and how to load them.
//
// A Manager maps application identifiers to descriptors. Each descriptor
// carries a Loader that resolves the application's implementation on first
// use; resolved factories are cached so repeat loads are cheap and return
// the identical reference. Lookup operations (Get, Has) answer quietly for
// unknown ids; load and construct operations fail loudly with ErrNotFound.
//
// First-open tracking ("has the user ever opened this") is persisted
// through a Flags store under each descriptor's storage key.
package registry
