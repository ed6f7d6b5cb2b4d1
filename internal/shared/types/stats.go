package types

import "time"

// RegistryStats summarizes catalog and first-open tracking state.
type RegistryStats struct {
	Total    int `json:"total"`
	Opened   int `json:"opened"`
	Unopened int `json:"unopened"`
}

// DesktopStats summarizes the live desktop state.
type DesktopStats struct {
	OpenWindows  int     `json:"open_windows"`
	Minimized    int     `json:"minimized"`
	Overlays     int     `json:"overlays"`
	ActiveWindow *string `json:"active_window,omitempty"`
	Level        Level   `json:"level,omitempty"`
}

// SessionMetadata describes a saved workspace snapshot.
type SessionMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	WindowCount int       `json:"window_count"`
	Level       Level     `json:"level,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionStats summarizes saved-session persistence activity.
type SessionStats struct {
	TotalSessions int        `json:"total_sessions"`
	LastSaved     *time.Time `json:"last_saved,omitempty"`
	LastRestored  *time.Time `json:"last_restored,omitempty"`
}
