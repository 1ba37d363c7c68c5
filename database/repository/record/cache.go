package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"classroom/utils"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by a Cache when the key holds no entry.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte cache fronting a Store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RedisCache backs the record cache with Redis.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}
	return nil
}

// CachedStore is a read-through decorator over a Store. Profile records are
// read on every sign-in; reads are served from the cache when possible, and
// writes go to the backing store first and then refresh the cache. A cache
// failure degrades to the backing store and is never surfaced to callers.
type CachedStore struct {
	Backing Store
	Cache   Cache
	TTL     time.Duration
}

func NewCachedStore(backing Store, cache Cache, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = utils.RecordCacheTTL
	}
	return &CachedStore{Backing: backing, Cache: cache, TTL: ttl}
}

func cacheKey(key string) string {
	return utils.RecordCachePrefix + key
}

func (s *CachedStore) ReadRecord(ctx context.Context, key string, v interface{}) error {
	if data, err := s.Cache.Get(ctx, cacheKey(key)); err == nil {
		if json.Unmarshal(data, v) == nil {
			return nil
		}
	}
	if err := s.Backing.ReadRecord(ctx, key, v); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.Cache.Set(ctx, cacheKey(key), data, s.TTL)
	}
	return nil
}

func (s *CachedStore) WriteRecord(ctx context.Context, key string, v interface{}) error {
	if err := s.Backing.WriteRecord(ctx, key, v); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.Cache.Set(ctx, cacheKey(key), data, s.TTL)
	}
	return nil
}
