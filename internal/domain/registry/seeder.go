package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/app"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// catalogPattern matches descriptor files anywhere under the catalog dir.
const catalogPattern = "**/*.{yaml,yml,toml,json}"

// Seeder loads application descriptors from catalog files on disk.
// Descriptor files name their implementation; the seeder resolves it
// lazily against the built-in factory table, so a bad reference surfaces
// as a load failure on first open, exactly like a broken dynamic import.
type Seeder struct {
	manager    *Manager
	catalogDir string
	builtins   map[string]app.Factory
	log        *logging.Logger
}

// NewSeeder creates a catalog seeder.
func NewSeeder(manager *Manager, catalogDir string, builtins map[string]app.Factory, log *logging.Logger) *Seeder {
	if log == nil {
		log = logging.NewNop()
	}
	return &Seeder{
		manager:    manager,
		catalogDir: catalogDir,
		builtins:   builtins,
		log:        log.Scope("seeder"),
	}
}

// Seed walks the catalog directory and registers every descriptor file.
// Individual file failures are logged and skipped; a missing catalog
// directory is not an error.
func (s *Seeder) Seed(ctx context.Context) error {
	if _, err := os.Stat(s.catalogDir); os.IsNotExist(err) {
		s.log.Warn("Catalog directory not found", zap.String("dir", s.catalogDir))
		return nil
	}

	var loaded, failed int

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.catalogDir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(s.catalogDir, p)
		if relErr != nil {
			return nil
		}
		matched, _ := doublestar.Match(catalogPattern, filepath.ToSlash(rel))
		if !matched {
			return nil
		}

		if err := s.seedFile(p); err != nil {
			s.log.Warn("Failed to load catalog entry",
				zap.String("file", rel),
				zap.Error(err))
			failed++
		} else {
			loaded++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk catalog: %w", err)
	}

	s.log.Info("Catalog seeding complete",
		zap.Int("loaded", loaded),
		zap.Int("failed", failed))
	return nil
}

// seedFile parses one descriptor file and registers it.
func (s *Seeder) seedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read descriptor: %w", err)
	}

	raw, err := parseDescriptor(data, filepath.Ext(path))
	if err != nil {
		return err
	}

	id, _ := raw["id"].(string)
	if id == "" {
		return fmt.Errorf("descriptor has no id")
	}

	impl, _ := raw["implementation"].(string)
	if impl == "" {
		impl = id
	}
	if _, ok := s.builtins[impl]; !ok {
		return fmt.Errorf("unknown implementation %q", impl)
	}

	cfg := s.configFrom(raw, impl)
	return s.manager.Register(id, cfg)
}

// configFrom extracts the recognized keys and collects the rest as Extra.
func (s *Seeder) configFrom(raw map[string]interface{}, impl string) Config {
	cfg := Config{
		Loader: s.lazyLoader(impl),
	}

	extra := make(map[string]interface{})
	for key, value := range raw {
		switch key {
		case "id", "implementation":
		case "title":
			cfg.Title, _ = value.(string)
		case "icon":
			cfg.Icon, _ = value.(string)
		case "category":
			cfg.Category, _ = value.(string)
		case "storage_key":
			if sk, ok := value.(string); ok {
				cfg.StorageKey = &sk
			}
		case "level":
			cfg.Level = types.LevelOf(value)
		case "auto_open":
			cfg.AutoOpen, _ = value.(bool)
		case "persistent":
			cfg.Persistent, _ = value.(bool)
		case "non_resizable":
			cfg.NonResizable, _ = value.(bool)
		case "tutorial_check":
			cfg.TutorialCheck, _ = value.(string)
		case "tutorial_start":
			cfg.TutorialStart, _ = value.(string)
		default:
			extra[key] = value
		}
	}
	if len(extra) > 0 {
		cfg.Extra = extra
	}
	return cfg
}

// lazyLoader defers the built-in table lookup until first load.
func (s *Seeder) lazyLoader(impl string) Loader {
	return LoaderFunc(func(context.Context) (app.Factory, error) {
		factory, ok := s.builtins[impl]
		if !ok {
			return nil, fmt.Errorf("implementation %q is not built in", impl)
		}
		return factory, nil
	})
}

// parseDescriptor decodes a descriptor file by extension.
func parseDescriptor(data []byte, ext string) (map[string]interface{}, error) {
	raw := make(map[string]interface{})

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML descriptor: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML descriptor: %w", err)
		}
	case ".json":
		if err := sonic.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON descriptor: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", ext)
	}
	return raw, nil
}
