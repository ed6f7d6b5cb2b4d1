package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/utils"
	"go.uber.org/zap"
)

var (
	// ErrNotFound indicates an operation referenced an unknown application id.
	ErrNotFound = errors.New("application not found")

	// ErrLoadFailure marks loader and construction failures for known
	// applications. The underlying cause stays in the chain.
	ErrLoadFailure = errors.New("application load failed")
)

// Flags persists first-open markers across restarts.
type Flags interface {
	GetBool(key string) bool
	SetBool(key string, v bool) error
	Delete(key string) error
}

// Manager owns the application catalog and the resolved-factory cache.
type Manager struct {
	mu        sync.RWMutex
	catalog   map[string]*Descriptor
	cache     sync.Map // app id -> app.Factory
	flags     Flags
	namespace string
	log       *logging.Logger
	metrics   *monitoring.Metrics
	usage     *monitoring.Usage
}

// NewManager creates a registry. The namespace prefixes generated storage
// keys ("<namespace>_<id>_opened").
func NewManager(namespace string, flags Flags, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		catalog:   make(map[string]*Descriptor),
		flags:     flags,
		namespace: namespace,
		log:       log.Scope("registry"),
	}
}

// WithMetrics attaches a metrics collector.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithUsage attaches a usage aggregator.
func (m *Manager) WithUsage(usage *monitoring.Usage) *Manager {
	m.usage = usage
	return m
}

// Register installs or overwrites a descriptor, merging the config over
// defaults: generated storage key, generic icon, title-cased id.
func (m *Manager) Register(id string, cfg Config) error {
	if err := utils.ValidateAppID(id); err != nil {
		return fmt.Errorf("failed to register application: %w", err)
	}
	if cfg.Loader == nil {
		return fmt.Errorf("failed to register application %s: loader is required", id)
	}

	for key := range cfg.Extra {
		m.log.Warn("Unrecognized app config key",
			zap.String("app_id", id),
			zap.String("key", key))
	}

	d := &Descriptor{
		ID:            id,
		Title:         cfg.Title,
		Icon:          cfg.Icon,
		Category:      cfg.Category,
		Level:         cfg.Level,
		AutoOpen:      cfg.AutoOpen,
		Persistent:    cfg.Persistent,
		NonResizable:  cfg.NonResizable,
		TutorialCheck: cfg.TutorialCheck,
		TutorialStart: cfg.TutorialStart,
		Loader:        cfg.Loader,
	}
	if d.Title == "" {
		d.Title = titleFromID(id)
	}
	if d.Icon == "" {
		d.Icon = DefaultIcon
	}
	if cfg.StorageKey == nil {
		d.StorageKey = fmt.Sprintf("%s_%s_opened", m.namespace, id)
	} else {
		d.StorageKey = *cfg.StorageKey
	}

	m.mu.Lock()
	m.catalog[id] = d
	total := len(m.catalog)
	m.mu.Unlock()

	// An overwrite invalidates any cached implementation.
	m.cache.Delete(id)

	if m.metrics != nil {
		m.metrics.SetRegistryApps(total)
	}
	m.log.Info("Registered application", zap.String("app_id", id))
	return nil
}

// Deregister removes a descriptor and reports whether one was removed.
func (m *Manager) Deregister(id string) bool {
	m.mu.Lock()
	_, ok := m.catalog[id]
	if ok {
		delete(m.catalog, id)
	}
	total := len(m.catalog)
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.cache.Delete(id)
	if m.metrics != nil {
		m.metrics.SetRegistryApps(total)
	}
	m.log.Info("Deregistered application", zap.String("app_id", id))
	return true
}

// Update shallow-merges a patch into an existing descriptor and reports
// whether the target existed.
func (m *Manager) Update(id string, patch Patch) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.catalog[id]
	if !ok {
		return false
	}

	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.Icon != nil {
		d.Icon = *patch.Icon
	}
	if patch.Category != nil {
		d.Category = *patch.Category
	}
	if patch.StorageKey != nil {
		d.StorageKey = *patch.StorageKey
	}
	if patch.Level != nil {
		d.Level = *patch.Level
	}
	if patch.AutoOpen != nil {
		d.AutoOpen = *patch.AutoOpen
	}
	if patch.Persistent != nil {
		d.Persistent = *patch.Persistent
	}
	if patch.NonResizable != nil {
		d.NonResizable = *patch.NonResizable
	}
	if patch.Loader != nil {
		d.Loader = patch.Loader
		d.Resolved = nil
		m.cache.Delete(id)
	}
	return true
}

// Get returns a copy of a descriptor. Unknown ids answer quietly.
func (m *Manager) Get(id string) (Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.catalog[id]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// Has reports whether an application is registered.
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.catalog[id]
	return ok
}

// IDs returns all registered ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.catalog))
	for id := range m.catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns a snapshot of the full catalog.
func (m *Manager) All() map[string]Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Descriptor, len(m.catalog))
	for id, d := range m.catalog {
		out[id] = *d
	}
	return out
}

// Load resolves the application implementation for id, caching the result
// so repeat calls return the identical factory reference. Unknown ids fail
// with ErrNotFound; loader failures wrap ErrLoadFailure with the cause
// preserved and are logged before return.
func (m *Manager) Load(ctx context.Context, id string) (app.Factory, error) {
	if cached, ok := m.cache.Load(id); ok {
		return cached.(app.Factory), nil
	}

	m.mu.RLock()
	d, ok := m.catalog[id]
	loader := Loader(nil)
	if ok {
		loader = d.Loader
	}
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("failed to load application %s: %w", id, ErrNotFound)
	}

	start := time.Now()
	factory, err := loader.Load(ctx)
	if err != nil {
		m.log.Error("Application load failed",
			zap.String("app_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load application %s: %w: %w", id, ErrLoadFailure, err)
	}
	if factory == nil {
		err := fmt.Errorf("failed to load application %s: %w: loader returned no factory", id, ErrLoadFailure)
		m.log.Error("Application load failed", zap.String("app_id", id), zap.Error(err))
		return nil, err
	}

	elapsed := time.Since(start)
	if m.metrics != nil {
		m.metrics.RecordLoadDuration(elapsed)
	}
	if m.usage != nil {
		m.usage.RecordLoad(id, elapsed)
	}

	// Duplicate concurrent loads are tolerated; the cache converges on the
	// last completed one.
	m.cache.Store(id, factory)

	m.mu.Lock()
	if cur, ok := m.catalog[id]; ok {
		cur.Resolved = factory
	}
	m.mu.Unlock()

	return factory, nil
}

// CreateInstance loads the implementation and constructs a fresh instance.
func (m *Manager) CreateInstance(ctx context.Context, id string) (app.App, error) {
	factory, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	instance := factory()
	if instance == nil {
		err := fmt.Errorf("failed to construct application %s: %w: factory returned nil", id, ErrLoadFailure)
		m.log.Error("Application construction failed", zap.String("app_id", id), zap.Error(err))
		return nil, err
	}
	return instance, nil
}

// WasOpened reports the persisted first-open marker. Untracked apps are
// never "opened".
func (m *Manager) WasOpened(id string) bool {
	d, ok := m.Get(id)
	if !ok || !d.Tracked() || m.flags == nil {
		return false
	}
	return m.flags.GetBool(d.StorageKey)
}

// MarkOpened sets the persisted first-open marker. No-op for untracked
// apps.
func (m *Manager) MarkOpened(id string) {
	d, ok := m.Get(id)
	if !ok || !d.Tracked() || m.flags == nil {
		return
	}
	if err := m.flags.SetBool(d.StorageKey, true); err != nil {
		m.log.Error("Failed to persist opened flag",
			zap.String("app_id", id),
			zap.Error(err))
	}
}

// ResetOpened clears the persisted first-open marker. No-op for untracked
// apps.
func (m *Manager) ResetOpened(id string) {
	d, ok := m.Get(id)
	if !ok || !d.Tracked() || m.flags == nil {
		return
	}
	if err := m.flags.Delete(d.StorageKey); err != nil {
		m.log.Error("Failed to clear opened flag",
			zap.String("app_id", id),
			zap.Error(err))
	}
}

// ResetAllOpened clears the first-open marker of every tracked app.
func (m *Manager) ResetAllOpened() {
	for _, id := range m.IDs() {
		m.ResetOpened(id)
	}
}

// Stats returns catalog and first-open counts.
func (m *Manager) Stats() types.RegistryStats {
	ids := m.IDs()

	stats := types.RegistryStats{Total: len(ids)}
	for _, id := range ids {
		if m.WasOpened(id) {
			stats.Opened++
		}
	}
	stats.Unopened = stats.Total - stats.Opened
	return stats
}
