package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached is a read-through cache in front of a slower gateway. Writes go
// straight to the inner gateway and refresh the cached copy; listings are
// never cached.
type Cached struct {
	inner Gateway
	cache *cache.Cache
}

func NewCached(inner Gateway, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: cache.New(ttl, 2*ttl)}
}

func (c *Cached) Get(ctx context.Context, p string) (*Blob, error) {
	key, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	if v, ok := c.cache.Get(key); ok {
		return cloneBlob(v.(*Blob)), nil
	}
	blob, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, cloneBlob(blob))
	return blob, nil
}

func (c *Cached) Put(ctx context.Context, p string, data []byte, opts PutOptions) (string, error) {
	key, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	version, err := c.inner.Put(ctx, key, data, opts)
	if err != nil {
		// The cached copy may be what made the caller's version stale.
		c.cache.Delete(key)
		return "", err
	}
	c.cache.SetDefault(key, &Blob{Path: key, Data: append([]byte(nil), data...), Version: version})
	return version, nil
}

func (c *Cached) List(ctx context.Context, dir string) ([]Entry, error) {
	return c.inner.List(ctx, dir)
}

func cloneBlob(b *Blob) *Blob {
	return &Blob{Path: b.Path, Data: append([]byte(nil), b.Data...), Version: b.Version}
}
