package cache

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type MemoryCache struct {
	data *ttlcache.Cache[string, []byte]
}

func NewMemoryCache() *MemoryCache {
	data := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)

	go data.Start()

	return &MemoryCache{data: data}
}

func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	item := mc.data.Get(key)
	if item == nil || item.IsExpired() {
		return nil, ErrNotFound
	}

	value := item.Value()
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	mc.data.Set(key, valueCopy, ttl)

	return nil
}

func (mc *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		mc.data.Delete(key)
	}
	return nil
}

func (mc *MemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	for _, key := range mc.data.Keys() {
		if strings.HasPrefix(key, prefix) {
			mc.data.Delete(key)
		}
	}
	return nil
}

func (mc *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	item := mc.data.Get(key)
	return item != nil && !item.IsExpired(), nil
}

func (mc *MemoryCache) Close() error {
	mc.data.Stop()
	return nil
}
