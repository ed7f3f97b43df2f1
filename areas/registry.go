package areas

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/brettbedarf/areafs"
	"github.com/brettbedarf/areafs/config"
	"github.com/brettbedarf/areafs/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// Factory builds an area from its raw JSON config
type Factory func(raw []byte) (areafs.Area, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}

	// named area instances built from config
	instances = xsync.NewMap[string, areafs.Area]()
)

// Register ties a JSON-raw factory to a "type" key and should be called for each
// area type during app init
func Register(areaType string, factory Factory) {
	mu.Lock()
	factories[areaType] = factory
	mu.Unlock()
}

// NewArea picks the right factory based on the "type" field.
// All expected area types should be registered with [Register]
// before calling this function.
func NewArea(raw []byte) (areafs.Area, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	mu.RLock()
	f, ok := factories[meta.Type]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no factory for %q", meta.Type)
	}
	return f(raw)
}

// Set stores a named area instance, replacing any previous one
func Set(name string, a areafs.Area) {
	instances.Store(name, a)
}

// Get returns the named area instance
func Get(name string) (areafs.Area, bool) {
	return instances.Load(name)
}

// Names returns the sorted names of all stored area instances
func Names() []string {
	names := make([]string, 0, instances.Size())
	instances.Range(func(name string, _ areafs.Area) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// LoadConfig builds every area in cfg, stores each under its name and makes
// cfg.DefaultArea the process-wide default
func LoadConfig(cfg *config.Config) error {
	logger := util.GetLogger("areas.LoadConfig")

	for name, settings := range cfg.Areas {
		raw, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("area %q: %w", name, err)
		}
		a, err := NewArea(raw)
		if err != nil {
			return fmt.Errorf("area %q: %w", name, err)
		}
		Set(name, a)
		logger.Debug().Str("name", name).Interface("type", settings["type"]).Msg("Loaded area")
	}

	def, ok := Get(cfg.DefaultArea)
	if !ok {
		return fmt.Errorf("default area %q is not configured", cfg.DefaultArea)
	}
	areafs.SetDefaultArea(def)
	return nil
}
