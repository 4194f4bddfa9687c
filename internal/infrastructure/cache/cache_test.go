package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestLRUCache(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	c := NewLRUCache(2, 0)

	is.NoErr(c.Set(ctx, "a", "1", 0))
	is.NoErr(c.Set(ctx, "b", "2", 0))

	v, err := c.Get(ctx, "a")
	is.NoErr(err)
	is.Equal(v, "1")

	// "b" is now least recently used
	is.NoErr(c.Set(ctx, "c", "3", 0))
	_, err = c.Get(ctx, "b")
	is.True(errors.Is(err, ErrCacheMiss))

	is.NoErr(c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	is.True(errors.Is(err, ErrCacheMiss))
}

func TestLRUCacheExpiration(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	c := NewLRUCache(10, 50*time.Millisecond)

	is.NoErr(c.Set(ctx, "adt:1", "{}", 0))
	_, err := c.Get(ctx, "adt:1")
	is.NoErr(err)

	time.Sleep(100 * time.Millisecond)
	_, err = c.Get(ctx, "adt:1")
	is.True(errors.Is(err, ErrCacheMiss))
}

func TestLRUCacheResetKeepsEntry(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	c := NewLRUCache(10, time.Minute)

	is.NoErr(c.Set(ctx, "adt:1", "old", 0))
	is.NoErr(c.Set(ctx, "adt:1", "new", 0))

	v, err := c.Get(ctx, "adt:1")
	is.NoErr(err)
	is.Equal(v, "new")
}

func TestNew(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	c, cleanup, err := New(ctx, Config{})
	is.NoErr(err)
	is.NoErr(c.Set(ctx, "k", "v", 0))
	_, err = c.Get(ctx, "k")
	is.True(errors.Is(err, ErrCacheMiss))
	is.NoErr(cleanup())

	c, _, err = New(ctx, Config{Driver: DriverLRU, Size: 8, TTL: time.Minute})
	is.NoErr(err)
	_, ok := c.(*LRUCache)
	is.True(ok)

	_, _, err = New(ctx, Config{Driver: "memcached"})
	is.True(err != nil)
}

func TestNewRedisUnreachable(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err := New(ctx, Config{Driver: DriverRedis, RedisAddr: "127.0.0.1:1"})
	is.True(err != nil)
}
