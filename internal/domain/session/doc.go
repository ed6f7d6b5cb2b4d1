// Package session provides workspace checkpointing for the desktop.
//
// A snapshot captures the open windows (geometry, stacking order,
// minimized state) and the per-application state reported by stateful
// apps, then persists it as a gzip-compressed JSON file named after the
// session. Restoring replays the snapshot through the launcher so the
// usual gating, descriptors, and first-open bookkeeping apply, pins
// each window back to its saved rect, and hands the saved state back to
// the applications.
//
// Restoration process:
//  1. Load and decompress the snapshot from disk
//  2. Close all current non-persistent windows
//  3. Reopen saved windows in ascending z order
//  4. Pin saved geometry and re-minimize where recorded
//  5. Apply saved per-application state
//
// Snapshots record the level they were taken at, but restoring does not
// change the current level; windows the current level gates out are
// skipped.
//
// Example usage:
//
//	manager := session.NewManager(windows, launcher, cfg.SessionsDir, log)
//	snap, err := manager.Save(ctx, "my-workspace", "before the firewall mission")
//	err = manager.Restore(ctx, snap.Name)
package session
