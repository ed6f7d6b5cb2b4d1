package apps

import (
	"fmt"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/registry"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
)

// Application identifiers of the compiled-in catalog.
const (
	NotesID  = "notes"
	SysMonID = "sysmon"
	HUDID    = "hud"
)

// Builtins returns the factory table for the compiled-in applications,
// keyed by the implementation names file descriptors may reference.
// Factories close over the bus so instances can dispatch events without
// global state.
func Builtins(bus *events.Bus) map[string]app.Factory {
	return map[string]app.Factory{
		NotesID:  func() app.App { return NewNotes() },
		SysMonID: func() app.App { return NewSysMon() },
		HUDID:    func() app.App { return NewHUD(bus) },
	}
}

// RegisterAll registers the compiled-in catalog. File descriptors
// seeded afterwards may override these entries.
func RegisterAll(reg *registry.Manager, bus *events.Bus) error {
	builtins := Builtins(bus)
	untracked := ""

	entries := []struct {
		id  string
		cfg registry.Config
	}{
		{NotesID, registry.Config{
			Title:         "Field Notes",
			Icon:          "icon-notes",
			Category:      "tools",
			TutorialCheck: "notes.first-run",
			TutorialStart: "notes.walkthrough",
		}},
		{SysMonID, registry.Config{
			Title:    "System Monitor",
			Icon:     "icon-sysmon",
			Category: "diagnostics",
		}},
		{HUDID, registry.Config{
			Title:      "Mission HUD",
			Icon:       "icon-hud",
			Category:   "mission",
			Persistent: true,
			StorageKey: &untracked,
		}},
	}

	for _, e := range entries {
		cfg := e.cfg
		cfg.Loader = registry.Static(builtins[e.id])
		if err := reg.Register(e.id, cfg); err != nil {
			return fmt.Errorf("failed to register builtin %s: %w", e.id, err)
		}
	}
	return nil
}
