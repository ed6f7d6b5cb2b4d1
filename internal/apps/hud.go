package apps

import (
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// DefaultMissionLength is the countdown armed when a level starts.
const DefaultMissionLength = 10 * time.Minute

// DefaultIntegrity is the operator's starting integrity score.
const DefaultIntegrity = 100

// HUD is the mission heads-up display: a persistent overlay pinned
// above the window system showing the mission countdown and operator
// integrity. It watches level changes on the bus and dispatches
// level.timeup when the clock runs out and player.damage when integrity
// drops.
type HUD struct {
	bus           *events.Bus
	missionLength time.Duration

	mu        sync.Mutex
	level     types.Level
	integrity int
	deadline  time.Time
	timer     *time.Timer
	cancel    func()
	done      chan struct{}
}

// NewHUD creates a HUD dispatching on bus.
func NewHUD(bus *events.Bus) *HUD {
	return &HUD{
		bus:           bus,
		missionLength: DefaultMissionLength,
		integrity:     DefaultIntegrity,
	}
}

// WithMissionLength overrides the countdown armed on level changes.
func (h *HUD) WithMissionLength(d time.Duration) *HUD {
	h.missionLength = d
	return h
}

// IconClass implements app.App.
func (h *HUD) IconClass() string { return "icon-hud" }

// AppendTo implements app.OverlayApp.
func (h *HUD) AppendTo(surface app.Surface) {
	surface.Attach(HUDID, h.document())
}

// Initialize implements app.Initializer: subscribe to level changes and
// arm the mission clock on each one.
func (h *HUD) Initialize() {
	if h.bus == nil {
		return
	}
	h.mu.Lock()
	if h.cancel != nil {
		h.mu.Unlock()
		return
	}
	ch, cancel := h.bus.Subscribe()
	done := make(chan struct{})
	h.cancel = cancel
	h.done = done
	h.mu.Unlock()

	go func() {
		defer close(done)
		for ev := range ch {
			if ev.Type != events.LevelChanged {
				continue
			}
			level, ok := ev.Payload.(types.Level)
			if !ok {
				continue
			}
			h.mu.Lock()
			h.level = level
			h.armLocked(h.missionLength)
			h.mu.Unlock()
		}
	}()
}

// Cleanup implements app.Cleaner: stop the clock and the bus watcher.
func (h *HUD) Cleanup() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.deadline = time.Time{}
	cancel := h.cancel
	done := h.done
	h.cancel = nil
	h.done = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// StartMission arms the countdown without waiting for a level change.
func (h *HUD) StartMission(length time.Duration) {
	h.mu.Lock()
	h.armLocked(length)
	h.mu.Unlock()
}

// armLocked replaces any running countdown. Callers must hold h.mu.
func (h *HUD) armLocked(length time.Duration) {
	if h.timer != nil {
		h.timer.Stop()
	}
	h.deadline = time.Now().Add(length)
	level := h.level
	h.timer = time.AfterFunc(length, func() {
		h.bus.Emit(events.LevelTimeUp, map[string]interface{}{
			"level": level.String(),
		})
	})
}

// TakeDamage lowers operator integrity, flooring at zero, and
// dispatches the damage event. It returns the remaining integrity.
func (h *HUD) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	h.mu.Lock()
	h.integrity -= amount
	if h.integrity < 0 {
		h.integrity = 0
	}
	remaining := h.integrity
	level := h.level
	h.mu.Unlock()

	if h.bus != nil {
		h.bus.Emit(events.PlayerDamage, map[string]interface{}{
			"amount":    amount,
			"remaining": remaining,
			"level":     level.String(),
		})
	}
	return remaining
}

// Integrity returns the current integrity score.
func (h *HUD) Integrity() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.integrity
}

// Remaining returns time left on the mission clock, zero when unarmed
// or expired.
func (h *HUD) Remaining() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deadline.IsZero() {
		return 0
	}
	left := time.Until(h.deadline)
	if left < 0 {
		return 0
	}
	return left
}

func (h *HUD) document() types.Content {
	h.mu.Lock()
	defer h.mu.Unlock()
	doc := types.Content{
		"kind":      "hud",
		"integrity": h.integrity,
	}
	if !h.level.IsZero() {
		doc["level"] = h.level.String()
	}
	if !h.deadline.IsZero() {
		doc["deadline"] = h.deadline.Format(time.RFC3339)
	}
	return doc
}
