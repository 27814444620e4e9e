// Package cache stores downloaded payloads in Redis so repeated runs within
// the TTL skip the open data portal.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/metrics"
)

const keyPrefix = "ownership:download:"

// Cache is a byte cache keyed by request URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Nop never hits and discards writes.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error { return nil }

// Redis is a Cache backed by a Redis server.
type Redis struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedis returns a Redis cache. Entries expire after ttl; zero keeps them
// until evicted.
func NewRedis(addr, pass string, db int, ttl time.Duration) *Redis {
	return &Redis{
		c:   redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		ttl: ttl,
	}
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.c.Close()
}

// Key hashes a URL into a bounded key.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache("redis", "miss")
		return nil, false, nil
	}
	if err != nil {
		metrics.ObserveCache("redis", "error")
		return nil, false, err
	}
	metrics.ObserveCache("redis", "hit")
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	metrics.ObserveCache("redis", "set")
	return r.c.Set(ctx, Key(key), value, r.ttl).Err()
}
