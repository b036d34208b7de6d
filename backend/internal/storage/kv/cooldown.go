// Package kv holds the redis-backed post cooldown shared by every api
// instance.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "nanashi:cooldown:"

// Cooldown allows one post per key per interval.
type Cooldown struct {
	client   *redis.Client
	interval time.Duration
}

func New(ctx context.Context, redisURL string, interval time.Duration) (*Cooldown, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewWithClient(client, interval), nil
}

func NewWithClient(client *redis.Client, interval time.Duration) *Cooldown {
	return &Cooldown{client: client, interval: interval}
}

// Allow claims key for the interval. It reports false while an earlier
// claim is still live.
func (c *Cooldown) Allow(ctx context.Context, key string) (bool, error) {
	if c.interval <= 0 {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, keyPrefix+key, 1, c.interval).Result()
	if err != nil {
		return false, fmt.Errorf("claim cooldown: %w", err)
	}
	return ok, nil
}

// Release drops key's claim early.
func (c *Cooldown) Release(ctx context.Context, key string) error {
	if c.interval <= 0 {
		return nil
	}
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release cooldown: %w", err)
	}
	return nil
}

func (c *Cooldown) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cooldown) Close() error {
	return c.client.Close()
}
