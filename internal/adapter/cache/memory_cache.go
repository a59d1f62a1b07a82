package cache

import (
	"context"
	"sync"

	"github.com/example/configurator-checkout/internal/domain"
)

// MemoryConfigurationCache — потокобезопасный in-memory кэш конфигураций.
type MemoryConfigurationCache struct {
	mu    sync.RWMutex
	store map[string]domain.Configuration
}

func NewMemoryConfigurationCache() *MemoryConfigurationCache {
	return &MemoryConfigurationCache{store: make(map[string]domain.Configuration)}
}

func (c *MemoryConfigurationCache) Get(id string) (domain.Configuration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.store[id]
	return cfg, ok
}

func (c *MemoryConfigurationCache) Set(id string, cfg domain.Configuration) {
	c.mu.Lock()
	c.store[id] = cfg
	c.mu.Unlock()
}

func (c *MemoryConfigurationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// ReadThrough кэширует конфигурации поверх хранилища. Конфигурации
// неизменяемы, поэтому записи не инвалидируются. Промахи не кэшируются.
type ReadThrough struct {
	Store domain.ConfigurationStore
	Cache *MemoryConfigurationCache
}

func NewReadThrough(store domain.ConfigurationStore) *ReadThrough {
	return &ReadThrough{Store: store, Cache: NewMemoryConfigurationCache()}
}

func (r *ReadThrough) Get(ctx context.Context, id string) (domain.Configuration, error) {
	if cfg, ok := r.Cache.Get(id); ok {
		return cfg, nil
	}
	cfg, err := r.Store.Get(ctx, id)
	if err != nil {
		return domain.Configuration{}, err
	}
	r.Cache.Set(id, cfg)
	return cfg, nil
}

var _ domain.ConfigurationStore = (*ReadThrough)(nil)
