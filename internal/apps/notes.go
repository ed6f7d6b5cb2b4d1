package apps

import (
	"sync"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// Notes is the field notebook: a windowed scratchpad whose text
// participates in workspace save/restore.
type Notes struct {
	mu   sync.Mutex
	body string
}

// NewNotes creates an empty notebook.
func NewNotes() *Notes {
	return &Notes{}
}

// IconClass implements app.App.
func (n *Notes) IconClass() string { return "icon-notes" }

// CreateWindow implements app.WindowApp.
func (n *Notes) CreateWindow() types.Content {
	n.mu.Lock()
	defer n.mu.Unlock()
	return types.Content{
		"kind":        "notes",
		"placeholder": "Log your findings...",
		"body":        n.body,
	}
}

// Body returns the current note text.
func (n *Notes) Body() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.body
}

// SetBody replaces the note text, called on editor input.
func (n *Notes) SetBody(body string) {
	n.mu.Lock()
	n.body = body
	n.mu.Unlock()
}

// State implements app.Stateful.
func (n *Notes) State() map[string]interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return map[string]interface{}{"body": n.body}
}

// SetState implements app.Stateful. Unknown or wrongly typed fields are
// ignored so stale snapshots degrade to an empty notebook.
func (n *Notes) SetState(state map[string]interface{}) {
	if state == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if body, ok := state["body"].(string); ok {
		n.body = body
	}
}
