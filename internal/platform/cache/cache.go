// Package cache provides a Redis JSON cache invalidated by a global version.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis based caching with versioning controls. A nil Cache, or
// one without a client, calls loaders directly.
type Cache struct {
	client     *redis.Client
	ttl        time.Duration
	versionKey string
}

// New instantiates the cache helper. Keys written by this cache are prefixed
// with namespace.
func New(client *redis.Client, ttl time.Duration, namespace string) *Cache {
	return &Cache{client: client, ttl: ttl, versionKey: namespace + ":version"}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, c.versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX so a concurrent Bump is not overwritten.
		if err := c.client.SetNX(ctx, c.versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, c.versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, c.versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader.
// hit reports whether the value came from Redis. Redis failures degrade to a
// miss; only loader and encoding errors are returned.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) (bool, error) {
	if loader == nil {
		return false, errors.New("cache: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil && json.Unmarshal(payload, dest) == nil {
			return true, nil
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return false, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if c != nil && c.client != nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return false, json.Unmarshal(raw, dest)
}

// Bump invalidates every key built so far by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, c.versionKey).Err()
}
