package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache defines the generic cache contract.
type ICache[T any] interface {
	Get(ctx context.Context, field string) (*T, error)
	Set(ctx context.Context, field string, value *T, expire ...time.Duration) error
	Delete(ctx context.Context, field string) error
	Exists(ctx context.Context, field string) (bool, error)
}

// Cache is a Redis-backed cache for values of type T, stored as JSON.
// When useHash is true values live in a single Redis hash keyed by key;
// otherwise each value gets its own string key prefixed with key.
type Cache[T any] struct {
	rc      *redis.Client
	key     string
	useHash bool
}

// NewCache creates a cache rooted at key. Pass useHash to store fields
// in a Redis hash instead of individual keys.
func NewCache[T any](rc *redis.Client, key string, useHash ...bool) ICache[T] {
	uh := false
	if len(useHash) > 0 {
		uh = useHash[0]
	}
	return &Cache[T]{rc: rc, key: key, useHash: uh}
}

// Key returns the full storage key for field.
func (c *Cache[T]) Key(field string) string {
	if c.key == "" {
		return field
	}
	return fmt.Sprintf("%s:%s", c.key, field)
}

// Get fetches and unmarshals the value for field. A cache miss returns
// (nil, nil) so callers can fall through to the source of truth.
func (c *Cache[T]) Get(ctx context.Context, field string) (*T, error) {
	var raw string
	var err error

	if c.useHash {
		raw, err = c.rc.HGet(ctx, c.key, field).Result()
	} else {
		raw, err = c.rc.Get(ctx, c.Key(field)).Result()
	}
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", field, err)
	}

	value := new(T)
	if err := json.Unmarshal([]byte(raw), value); err != nil {
		return nil, fmt.Errorf("cache unmarshal %s: %w", field, err)
	}
	return value, nil
}

// Set marshals and stores value under field. expire applies only to
// non-hash storage; hashes share the lifetime of the hash key.
func (c *Cache[T]) Set(ctx context.Context, field string, value *T, expire ...time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", field, err)
	}

	if c.useHash {
		if err := c.rc.HSet(ctx, c.key, field, raw).Err(); err != nil {
			return fmt.Errorf("cache hset %s: %w", field, err)
		}
		return nil
	}

	var ttl time.Duration
	if len(expire) > 0 {
		ttl = expire[0]
	}
	if err := c.rc.Set(ctx, c.Key(field), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", field, err)
	}
	return nil
}

// Delete removes the value for field.
func (c *Cache[T]) Delete(ctx context.Context, field string) error {
	var err error
	if c.useHash {
		err = c.rc.HDel(ctx, c.key, field).Err()
	} else {
		err = c.rc.Del(ctx, c.Key(field)).Err()
	}
	if err != nil {
		return fmt.Errorf("cache delete %s: %w", field, err)
	}
	return nil
}

// Exists reports whether field has a cached value.
func (c *Cache[T]) Exists(ctx context.Context, field string) (bool, error) {
	var n int64
	var err error
	if c.useHash {
		var ok bool
		ok, err = c.rc.HExists(ctx, c.key, field).Result()
		if ok {
			n = 1
		}
	} else {
		n, err = c.rc.Exists(ctx, c.Key(field)).Result()
	}
	if err != nil {
		return false, fmt.Errorf("cache exists %s: %w", field, err)
	}
	return n > 0, nil
}
