package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory implements Cache with an in-process TTL store. It is the
// substitute backend used when no external cache is configured.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates a new in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.store.Set(key, value, ttl)
	return nil
}
