package voice

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"mediabuddy/internal/corpus"
	"mediabuddy/internal/services"
	"mediabuddy/internal/style"
)

// Context is the caller-owned cache of style descriptors. It is safe for
// concurrent use.
type Context struct {
	store      *corpus.Store
	extractor  *style.Extractor
	sampleSize int

	cache       *lru.Cache[string, style.Descriptor]
	group       singleflight.Group
	derivations atomic.Int64

	// beforeSample runs just before a derivation samples the store.
	beforeSample func()
}

// NewContext builds a Context over store. cacheSize bounds how many corpus
// versions keep a descriptor.
func NewContext(store *corpus.Store, extractor *style.Extractor, sampleSize, cacheSize int) (*Context, error) {
	if store == nil {
		return nil, services.Wrap(services.ErrCorpusEmpty, "sampling", "new voice context", "no corpus store", nil)
	}
	if extractor == nil {
		extractor = style.NewExtractor(style.DefaultOptions())
	}
	if sampleSize <= 0 {
		sampleSize = 6
	}
	if cacheSize <= 0 {
		cacheSize = 8
	}
	cache, err := lru.New[string, style.Descriptor](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("descriptor cache: %w", err)
	}
	return &Context{store: store, extractor: extractor, sampleSize: sampleSize, cache: cache}, nil
}

// Store returns the underlying corpus store.
func (c *Context) Store() *corpus.Store { return c.store }

// Descriptor returns the descriptor for the current corpus version, deriving
// it on first use. Concurrent callers share one derivation. The returned
// version is the one the descriptor was derived from.
func (c *Context) Descriptor(ctx context.Context) (style.Descriptor, string, error) {
	version := c.store.Version()
	if d, ok := c.cache.Get(version); ok {
		return d, version, nil
	}
	value, err, _ := c.group.Do(version, func() (any, error) {
		if d, ok := c.cache.Get(version); ok {
			return derived{d, version}, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.beforeSample != nil {
			c.beforeSample()
		}
		// A Reload since Version() is fine: the descriptor is keyed by the
		// version its samples came from.
		samples, sampled, err := c.store.SampleWithVersion(c.sampleSize)
		if err != nil {
			return nil, err
		}
		d, err := c.extractor.Derive(samples)
		if err != nil {
			return nil, err
		}
		c.derivations.Add(1)
		c.cache.Add(sampled, d)
		return derived{d, sampled}, nil
	})
	if err != nil {
		return style.Descriptor{}, version, err
	}
	out := value.(derived)
	return out.descriptor, out.version, nil
}

type derived struct {
	descriptor style.Descriptor
	version    string
}

// Derivations counts how many descriptors were computed.
func (c *Context) Derivations() int64 { return c.derivations.Load() }

// Reload re-reads the corpus. A changed corpus gets a new version and so a
// fresh descriptor on next use.
func (c *Context) Reload(ctx context.Context) (bool, error) {
	return c.store.Reload(ctx)
}

// Invalidate drops every cached descriptor.
func (c *Context) Invalidate() { c.cache.Purge() }
