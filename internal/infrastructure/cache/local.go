package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache is an in-process JSON cache used when Redis is disabled.
// Values are encoded so callers never share memory with the cache.
type LocalCache struct {
	cache *ristretto.Cache
}

func NewLocalCache(maxItems int64) (*LocalCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return &LocalCache{cache: c}, nil
}

func (l *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	l.cache.SetWithTTL(key, data, 1, expiration)
	l.cache.Wait()
	return nil
}

func (l *LocalCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := l.cache.Get(key)
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(v.([]byte), dest)
}

func (l *LocalCache) Del(ctx context.Context, key string) error {
	l.cache.Del(key)
	return nil
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
