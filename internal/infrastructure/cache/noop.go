package cache

import (
	"context"
	"time"
)

type noopCache struct{}

// NewNoopCache returns a cache that stores nothing.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) (string, error) {
	return "", ErrCacheMiss
}

func (noopCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (noopCache) Delete(context.Context, string) error {
	return nil
}
