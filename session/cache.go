// Package session keeps the per-user session snapshot in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/princinho/elearnbackend/models"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound means the snapshot is absent: logged out, deleted or expired.
	ErrNotFound = errors.New("session snapshot not found")
	// ErrCorrupt means the stored value does not decode to a user.
	ErrCorrupt = errors.New("session snapshot corrupt")
)

// RedisCache stores one JSON user snapshot per user id with a sliding TTL.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(userID string) string {
	return c.prefix + userID
}

func (c *RedisCache) Get(ctx context.Context, userID string) (models.User, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("session get: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil || user.ID.IsZero() {
		return models.User{}, ErrCorrupt
	}
	return user, nil
}

// Put writes the snapshot and re-arms its TTL.
func (c *RedisCache) Put(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(user.ID.Hex()), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Replace overwrites an existing snapshot and re-arms its TTL. It reports
// false and writes nothing when no snapshot exists.
func (c *RedisCache) Replace(ctx context.Context, user models.User) (bool, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return false, fmt.Errorf("session encode: %w", err)
	}
	ok, err := c.rdb.SetXX(ctx, c.key(user.ID.Hex()), raw, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("session replace: %w", err)
	}
	return ok, nil
}

func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
