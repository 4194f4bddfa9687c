package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Get when the key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// Supported cache drivers.
const (
	DriverNoop  = "noop"
	DriverLRU   = "lru"
	DriverRedis = "redis"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Config selects and sizes the cache.
type Config struct {
	Driver string
	// Size is the number of entries kept by the lru driver.
	Size int
	// TTL bounds the lifetime of lru entries.
	TTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds the cache named by cfg.Driver. The returned cleanup func
// releases the cache's resources.
func New(ctx context.Context, cfg Config) (Cache, func() error, error) {
	switch cfg.Driver {
	case "", DriverNoop:
		return NewNoopCache(), func() error { return nil }, nil
	case DriverLRU:
		return NewLRUCache(cfg.Size, cfg.TTL), func() error { return nil }, nil
	case DriverRedis:
		return NewRedisCacheFromAddr(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
