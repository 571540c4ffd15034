package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// SourceCache is the minimal contract the module registry depends on; both
// the in-process Cache and RedisCache satisfy it, so a single-instance
// runtime and a sharded server build share the same registry code.
type SourceCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Invalidate(key string)
	InvalidateAll()
}

// RedisCache backs the module source cache with Redis, so multiple
// runtime processes sharing one assets root (several world shards behind
// one asset server) avoid redundant reads and observe each other's
// invalidations. Selected when KALITECH_MODULE_CACHE_REDIS_ADDR is set.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisCache connects to addr and returns a SourceCache backed by it.
func NewRedisCache(addr, keyPrefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

func (r *RedisCache) fullKey(key string) string { return r.keyPrefix + key }

func (r *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	val, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *RedisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r.client.Set(ctx, r.fullKey(key), value, r.ttl)
}

func (r *RedisCache) Invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r.client.Del(ctx, r.fullKey(key))
}

// InvalidateAll drops every key under this cache's prefix. Uses SCAN
// rather than KEYS to avoid blocking a shared Redis instance.
func (r *RedisCache) InvalidateAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		r.client.Del(ctx, iter.Val())
	}
}

// Close releases the underlying Redis connection pool.
func (r *RedisCache) Close() error { return r.client.Close() }
