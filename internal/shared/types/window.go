package types

// Content is the opaque view document an application renders itself as.
// The backend never interprets it; the frontend turns it into DOM.
type Content map[string]interface{}

// WindowMode is the geometry sub-state of an open window.
type WindowMode string

const (
	ModeNormal    WindowMode = "normal"
	ModeMaximized WindowMode = "maximized"
	ModeSnapped   WindowMode = "snapped"
)

// WindowInfo is a serializable snapshot of a managed window.
type WindowInfo struct {
	ID         string     `json:"id"`
	InstanceID string     `json:"instance_id"`
	Title      string     `json:"title"`
	Icon       string     `json:"icon"`
	Bounds     Rect       `json:"bounds"`
	Z          uint64     `json:"z"`
	Mode       WindowMode `json:"mode"`
	Zone       string     `json:"zone,omitempty"`
	Minimized  bool       `json:"minimized"`
	Persistent bool       `json:"persistent"`
	Resizable  bool       `json:"resizable"`
}

// WindowOptions carries optional placement applied after a window opens.
type WindowOptions struct {
	Position *Point `json:"position,omitempty"`
	Size     *Size  `json:"size,omitempty"`
}

// TaskbarEntry is one taskbar slot for an open window.
type TaskbarEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}
