package storage

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSettingsCacheSize = 1000

// CachedSettings keeps recently read private-notes flags in memory.
// Writes go to the underlying storage first and then refresh the cache.
type CachedSettings struct {
	SettingsStorage
	cache *lru.Cache[int64, bool]

	mu sync.Mutex
	// gen changes on every write. A read only fills the cache if no write
	// happened while it was loading.
	gen uint64
}

func NewCachedSettings(next SettingsStorage, size int) (*CachedSettings, error) {
	if size <= 0 {
		size = DefaultSettingsCacheSize
	}

	cache, err := lru.New[int64, bool](size)
	if err != nil {
		return nil, err
	}

	return &CachedSettings{SettingsStorage: next, cache: cache}, nil
}

func (c *CachedSettings) GetPrivateNotes(ctx context.Context, chatID int64) (bool, error) {
	if enabled, ok := c.cache.Get(chatID); ok {
		return enabled, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	enabled, err := c.SettingsStorage.GetPrivateNotes(ctx, chatID)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.cache.Add(chatID, enabled)
	}
	c.mu.Unlock()
	return enabled, nil
}

func (c *CachedSettings) SetPrivateNotes(ctx context.Context, chatID int64, enabled bool) error {
	err := c.SettingsStorage.SetPrivateNotes(ctx, chatID, enabled)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if err != nil {
		c.cache.Remove(chatID)
		return err
	}

	c.cache.Add(chatID, enabled)
	return nil
}

// Len reports how many chats are cached.
func (c *CachedSettings) Len() int {
	return c.cache.Len()
}
