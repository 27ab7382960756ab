package cache

import (
	"context"
	"strings"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Cache wraps go-cache as a process-lifetime store. Entries never expire
// and are only removed by Delete or Flush.
type Cache struct {
	inner  *gocache.Cache
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache usage since creation.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{inner: gocache.New(gocache.NoExpiration, 0)}
}

// Get retrieves a value by key.
func (c *Cache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// Set stores a value with no expiration.
func (c *Cache) Set(key string, val any) {
	c.inner.Set(key, val, gocache.NoExpiration)
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.inner.Delete(key)
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed.
func (c *Cache) DeletePrefix(prefix string) int {
	n := 0
	for key := range c.inner.Items() {
		if strings.HasPrefix(key, prefix) {
			c.inner.Delete(key)
			n++
		}
	}
	return n
}

// Flush clears all cached items.
func (c *Cache) Flush() {
	c.inner.Flush()
}

// GetOrLoad returns the value stored under key, calling load on a miss.
// The loaded value is stored only when load succeeds, so a failed load
// leaves the cache as it was. Concurrent misses on the same key share a
// single load. hit reports whether the value came from the cache.
//
// The shared load runs without the caller's cancellation. A caller whose
// ctx is done stops waiting and gets ctx.Err(); the load carries on for the
// others and is stored if it succeeds.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (any, error)) (val any, hit bool, err error) {
	if v, found := c.inner.Get(key); found {
		c.hits.Add(1)
		return v, true, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.misses.Add(1)

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, found := c.inner.Get(key); found {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.inner.Set(key, v, gocache.NoExpiration)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Stats returns the entry count and hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.inner.ItemCount(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
