package factory

import (
	"fmt"
	"sync"

	"github.com/agrovista/mediavault/config"
	"github.com/agrovista/mediavault/storage/asset"
	"github.com/agrovista/mediavault/storage/asset/badgerstore"
	"github.com/agrovista/mediavault/storage/asset/fsindex"
)

// Factory builds an asset store for the provided storage config.
type Factory func(*config.Storage) (asset.Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces an asset store factory for the given strategy name.
func Register(strategy string, factory Factory) {
	mu.Lock()
	registry[strategy] = factory
	mu.Unlock()
}

// Get retrieves a factory for the given strategy.
func Get(strategy string) (Factory, bool) {
	mu.RLock()
	f, ok := registry[strategy]
	mu.RUnlock()
	return f, ok
}

// Create builds an asset store using the registered factory for the
// configured strategy.
func Create(cfg *config.Storage) (asset.Store, error) {
	if f, ok := Get(cfg.Strategy); ok {
		return f(cfg)
	}

	return nil, fmt.Errorf("unknown storage strategy %q", cfg.Strategy)
}

func init() {
	Register("badger", func(cfg *config.Storage) (asset.Store, error) {
		if cfg.Badger == nil {
			return nil, fmt.Errorf("badger storage config is nil")
		}
		return badgerstore.Open(cfg.Badger.Path)
	})
	Register("filesystem", func(cfg *config.Storage) (asset.Store, error) {
		if cfg.Filesystem == nil {
			return nil, fmt.Errorf("filesystem storage config is nil")
		}
		return fsindex.New(cfg.Filesystem.Path, cfg.Filesystem.PublicUrl)
	})
}
