package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/launcher"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/utils"
	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// snapExt is the on-disk suffix for saved snapshots.
const snapExt = ".json.gz"

// Windows is the window-manager surface used for capture and replay.
type Windows interface {
	Windows() []types.WindowInfo
	SaveStates() map[string]map[string]interface{}
	RestoreStates(states map[string]map[string]interface{}) int
	SetBounds(id string, bounds types.Rect) bool
	Minimize(id string) bool
	CloseAll(force bool) int
}

// Opener launches catalog applications through the level gate.
type Opener interface {
	Open(ctx context.Context, id, title string, opts *types.WindowOptions) (*launcher.Result, error)
	Level() types.Level
}

// Snapshot is the on-disk workspace payload. Windows are stored in
// ascending z order so replay rebuilds the same stacking.
type Snapshot struct {
	ID          string                            `json:"id"`
	Name        string                            `json:"name"`
	Description string                            `json:"description,omitempty"`
	Level       types.Level                       `json:"level,omitempty"`
	Windows     []types.WindowInfo                `json:"windows"`
	States      map[string]map[string]interface{} `json:"states,omitempty"`
	CreatedAt   time.Time                         `json:"created_at"`
}

// Metadata summarizes the snapshot for listings.
func (s *Snapshot) Metadata() types.SessionMetadata {
	return types.SessionMetadata{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		WindowCount: len(s.Windows),
		Level:       s.Level,
		CreatedAt:   s.CreatedAt,
	}
}

// Manager handles workspace checkpointing
type Manager struct {
	wins     Windows
	opener   Opener
	dir      string
	sessions sync.Map // name -> *Snapshot
	log      *logging.Logger
	metrics  *monitoring.Metrics

	mu           sync.RWMutex
	lastSaved    *time.Time
	lastRestored *time.Time
}

// NewManager creates a session manager persisting under dir.
func NewManager(wins Windows, opener Opener, dir string, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		wins:   wins,
		opener: opener,
		dir:    dir,
		log:    log.Scope("session"),
	}
}

// WithMetrics attaches save/restore counters.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Save captures the current workspace and writes it to disk. Saving
// under an existing name replaces that snapshot.
func (m *Manager) Save(ctx context.Context, name, description string) (*Snapshot, error) {
	if err := utils.ValidateSessionName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Capture workspace state without holding the lock.
	now := time.Now()
	snap := &Snapshot{
		ID:          fmt.Sprintf("session-%s", now.Format("20060102-150405")),
		Name:        name,
		Description: description,
		Level:       m.opener.Level(),
		Windows:     m.wins.Windows(),
		States:      m.wins.SaveStates(),
		CreatedAt:   now,
	}

	if err := m.writeSnapshot(snap); err != nil {
		return nil, err
	}

	m.sessions.Store(name, snap)

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSessionsSaved()
	}
	m.log.Info("Session saved",
		zap.String("name", name),
		zap.Int("windows", len(snap.Windows)))
	return snap, nil
}

// SaveDefault saves under the default name.
func (m *Manager) SaveDefault(ctx context.Context) (*Snapshot, error) {
	return m.Save(ctx, "default", "Auto-saved session")
}

// Load reads a snapshot by name, from cache when this process wrote or
// read it before, otherwise from disk.
func (m *Manager) Load(name string) (*Snapshot, error) {
	if err := utils.ValidateSessionName(name); err != nil {
		return nil, err
	}
	if cached, ok := m.sessions.Load(name); ok {
		return cached.(*Snapshot), nil
	}

	snap, err := m.readSnapshot(m.sessionPath(name))
	if err != nil {
		return nil, err
	}
	// The file name is authoritative, so a copied snapshot file works
	// under its new name.
	snap.Name = name

	m.sessions.Store(name, snap)
	return snap, nil
}

// Restore replays a saved snapshot onto the live desktop: close what is
// open, reopen the saved windows in stacking order, then hand the saved
// per-app state back. Windows gated out by the current level are
// skipped; a window whose application vanished from the catalog aborts
// the restore.
func (m *Manager) Restore(ctx context.Context, name string) error {
	// Load without holding the lock (does I/O).
	snap, err := m.Load(name)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	m.wins.CloseAll(false)

	opened := 0
	skipped := 0
	for i := range snap.Windows {
		w := &snap.Windows[i]
		opts := &types.WindowOptions{
			Position: &types.Point{X: w.Bounds.X, Y: w.Bounds.Y},
			Size:     &types.Size{Width: w.Bounds.Width, Height: w.Bounds.Height},
		}
		res, err := m.opener.Open(ctx, w.ID, w.Title, opts)
		if err != nil {
			return fmt.Errorf("failed to restore window %s: %w", w.ID, err)
		}
		if res == nil || res.Window == nil {
			// Level-gated now, or the descriptor turned into an
			// overlay since the save.
			m.log.Warn("Skipping window during restore",
				zap.String("app_id", w.ID),
				zap.String("session", name))
			skipped++
			continue
		}

		// Saved geometry wins over descriptor placement. Snapped and
		// maximized windows come back as normal windows at their
		// snapshot rect.
		m.wins.SetBounds(w.ID, w.Bounds)
		if w.Minimized {
			m.wins.Minimize(w.ID)
		}
		opened++
	}

	applied := m.wins.RestoreStates(snap.States)

	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSessionsRestored()
	}
	m.log.Info("Session restored",
		zap.String("name", name),
		zap.Int("opened", opened),
		zap.Int("skipped", skipped),
		zap.Int("states_applied", applied))
	return nil
}

// List returns metadata for every snapshot on disk, newest first.
func (m *Manager) List() ([]types.SessionMetadata, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.SessionMetadata{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	metadata := make([]types.SessionMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), snapExt)
		snap, err := m.Load(name)
		if err != nil {
			m.log.Warn("Skipping unreadable session file",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		metadata = append(metadata, snap.Metadata())
	}

	sort.Slice(metadata, func(i, j int) bool {
		return metadata[i].CreatedAt.After(metadata[j].CreatedAt)
	})
	return metadata, nil
}

// Delete removes a snapshot from disk and cache.
func (m *Manager) Delete(name string) error {
	if err := utils.ValidateSessionName(name); err != nil {
		return err
	}
	if err := os.Remove(m.sessionPath(name)); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", name, err)
	}
	m.sessions.Delete(name)
	return nil
}

// Stats returns session persistence statistics.
func (m *Manager) Stats() types.SessionStats {
	total := 0
	if entries, err := os.ReadDir(m.dir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), snapExt) {
				total++
			}
		}
	}

	m.mu.RLock()
	lastSaved := m.lastSaved
	lastRestored := m.lastRestored
	m.mu.RUnlock()

	return types.SessionStats{
		TotalSessions: total,
		LastSaved:     lastSaved,
		LastRestored:  lastRestored,
	}
}

// writeSnapshot marshals, compresses, and atomically replaces the file.
func (m *Manager) writeSnapshot(snap *Snapshot) error {
	data, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("failed to compress session: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress session: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	path := m.sessionPath(snap.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}

// readSnapshot loads and decompresses one snapshot file.
func (m *Manager) readSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress session: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress session: %w", err)
	}

	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if snap.ID == "" {
		return nil, fmt.Errorf("session file %s has an empty ID field", filepath.Base(path))
	}
	return &snap, nil
}

// sessionPath generates the filesystem path for a named snapshot.
func (m *Manager) sessionPath(name string) string {
	return filepath.Join(m.dir, name+snapExt)
}
