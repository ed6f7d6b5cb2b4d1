package types

// RegisterAppRequest registers or overwrites an application descriptor.
type RegisterAppRequest struct {
	ID         string                 `json:"id" binding:"required"`
	Title      string                 `json:"title"`
	Icon       string                 `json:"icon"`
	Category   string                 `json:"category"`
	StorageKey *string                `json:"storage_key,omitempty"`
	Level      Level                  `json:"level,omitempty"`
	AutoOpen   bool                   `json:"auto_open"`
	Persistent bool                   `json:"persistent"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// UpdateAppRequest shallow-merges fields into an existing descriptor.
type UpdateAppRequest struct {
	Title      *string `json:"title,omitempty"`
	Icon       *string `json:"icon,omitempty"`
	Category   *string `json:"category,omitempty"`
	StorageKey *string `json:"storage_key,omitempty"`
	Level      *Level  `json:"level,omitempty"`
	AutoOpen   *bool   `json:"auto_open,omitempty"`
	Persistent *bool   `json:"persistent,omitempty"`
}

// OpenAppRequest opens an application through the launcher.
type OpenAppRequest struct {
	Title   string         `json:"title"`
	Options *WindowOptions `json:"options,omitempty"`
}

// SetLevelRequest activates a training level on the desktop.
type SetLevelRequest struct {
	Level Level `json:"level" binding:"required"`
}

// SaveSessionRequest checkpoints the current workspace.
type SaveSessionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// RestoreSessionRequest restores a saved workspace.
type RestoreSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// WSMessage represents a WebSocket message in either direction.
type WSMessage struct {
	Type    string                 `json:"type"`
	ID      string                 `json:"id,omitempty"`
	X       float64                `json:"x,omitempty"`
	Y       float64                `json:"y,omitempty"`
	Width   float64                `json:"width,omitempty"`
	Height  float64                `json:"height,omitempty"`
	Handle  string                 `json:"handle,omitempty"`
	Title   string                 `json:"title,omitempty"`
	Level   Level                  `json:"level,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
