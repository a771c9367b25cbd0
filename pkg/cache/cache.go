// Package cache stores rendered artifacts between runs.
//
// Rendering a derivation graph through Graphviz is the only expensive step in
// derivgraph, so SVG output is cached under a key derived from the payload
// hash and the render options. Three backends implement [Cache]:
//
//   - [FileCache]: one JSON entry file per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (for the HTTP server)
//   - [NullCache]: never stores anything (--no-cache)
//
// [GetOrCompute] wraps the lookup/compute/store sequence and reports hits and
// misses to the observability cache hooks.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/derivgraph/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// RenderKey identifies a rendered artifact of a payload.
	RenderKey(payloadHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are the render options that change the artifact bytes.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
	Children bool   `json:"children"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey returns "render:<sha256>" over the payload hash and options.
func (DefaultKeyer) RenderKey(payloadHash string, opts RenderKeyOpts) string {
	return hashKey("render", payloadHash, opts)
}

// GetOrCompute returns the cached value for key, or calls compute and stores
// its result with ttl. The boolean reports whether the value came from the
// cache. A failing cache write is returned only when compute succeeded.
func GetOrCompute(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	hooks := observability.Cache()

	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if hit {
		hooks.OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err = compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return data, false, err
	}
	hooks.OnCacheSet(ctx, keyType, len(data))
	return data, false, nil
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
