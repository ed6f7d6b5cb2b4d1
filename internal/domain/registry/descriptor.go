package registry

import (
	"context"
	"strings"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// Loader resolves an application implementation. Resolution may be
// expensive; the manager caches the result per id.
type Loader interface {
	Load(ctx context.Context) (app.Factory, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (app.Factory, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (app.Factory, error) {
	return f(ctx)
}

// Static wraps an already-resolved factory as a Loader.
func Static(factory app.Factory) Loader {
	return LoaderFunc(func(context.Context) (app.Factory, error) {
		return factory, nil
	})
}

// Descriptor is the registry's metadata record for one application.
type Descriptor struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Icon       string      `json:"icon"`
	Category   string      `json:"category,omitempty"`
	StorageKey string      `json:"storage_key,omitempty"`
	Level      types.Level `json:"level,omitempty"`
	AutoOpen   bool        `json:"auto_open"`
	Persistent bool        `json:"persistent"`

	// NonResizable additionally suppresses maximize and resize handles
	// on persistent windows.
	NonResizable bool `json:"non_resizable"`

	// TutorialCheck and TutorialStart name the tutorial hooks invoked on
	// a first-time open. Both must be set for the hooks to fire.
	TutorialCheck string `json:"tutorial_check,omitempty"`
	TutorialStart string `json:"tutorial_start,omitempty"`

	// Loader resolves the implementation. Never nil for a registered
	// descriptor.
	Loader Loader `json:"-"`

	// Resolved holds the cached factory after the first successful load,
	// attached for introspection.
	Resolved app.Factory `json:"-"`
}

// Tracked reports whether first-open state is persisted for this app.
func (d Descriptor) Tracked() bool {
	return d.StorageKey != ""
}

// HasTutorial reports whether both tutorial hooks are configured.
func (d Descriptor) HasTutorial() bool {
	return d.TutorialCheck != "" && d.TutorialStart != ""
}

// Config is the registration surface for one application.
//
// StorageKey semantics: nil generates the default
// "<namespace>_<id>_opened" key; a pointer to the empty string disables
// open tracking; anything else is used verbatim.
type Config struct {
	Loader       Loader
	Title        string
	Icon         string
	Category     string
	StorageKey   *string
	Level        types.Level
	AutoOpen     bool
	Persistent   bool
	NonResizable bool

	TutorialCheck string
	TutorialStart string

	// Extra carries unrecognized configuration keys. They are accepted
	// with a warning for forward compatibility.
	Extra map[string]interface{}
}

// Patch shallow-merges fields into an existing descriptor. Nil fields are
// left untouched.
type Patch struct {
	Title        *string
	Icon         *string
	Category     *string
	StorageKey   *string
	Level        *types.Level
	AutoOpen     *bool
	Persistent   *bool
	NonResizable *bool
	Loader       Loader
}

// DefaultIcon is assigned to descriptors registered without one.
const DefaultIcon = "icon-app"

// titleFromID turns an identifier like "malware-scanner" into
// "Malware Scanner".
func titleFromID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
