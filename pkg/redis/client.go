package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/nasdaq/pkg/config"
)

// dialTimeout keeps startup from hanging on an unreachable Redis.
const dialTimeout = 5 * time.Second

// Client holds the Redis connection behind the credential cache and the
// shared rate limiter.
// ⭐ SSOT: Redis connections are managed here only
//
// A disabled client is valid: every helper built on it degrades to a no-op,
// so the session layer works the same with or without Redis.
type Client struct {
	rdb *redis.Client
}

// New connects when REDIS_ENABLED is set and returns a disabled client otherwise.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	opts := options(cfg.Redis)
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", opts.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

func options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	}
}

// NewFromRedis wraps an existing go-redis client (tests, shared pools).
// A nil rdb yields a disabled client.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a connection is configured
func (c *Client) Enabled() bool {
	return c.rdb != nil
}
