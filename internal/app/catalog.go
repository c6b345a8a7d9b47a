package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ContentStore is the source of workshop content
type ContentStore interface {
	// Workshops returns the workshops of ref ordered by date; a zero ref
	// returns all workshops.
	Workshops(ctx context.Context, ref QuarterRef) ([]Workshop, error)
	// Quarters returns the distinct quarters that have workshops, most
	// recent first.
	Quarters(ctx context.Context) ([]QuarterRef, error)
}

type cacheEntry[T any] struct {
	value   T
	expires time.Time
}

// Catalog caches content store results for a fixed time.
type Catalog struct {
	store ContentStore
	ttl   time.Duration
	now   func() time.Time

	mu        sync.RWMutex
	quarters  *cacheEntry[[]QuarterRef]
	workshops map[QuarterRef]cacheEntry[[]Workshop]
}

// NewCatalog wraps store with a cache. A ttl of zero disables caching.
func NewCatalog(store ContentStore, ttl time.Duration) *Catalog {
	return &Catalog{
		store:     store,
		ttl:       ttl,
		now:       time.Now,
		workshops: make(map[QuarterRef]cacheEntry[[]Workshop]),
	}
}

// Quarters returns the available quarters, most recent first
func (c *Catalog) Quarters(ctx context.Context) ([]QuarterRef, error) {
	c.mu.RLock()
	entry := c.quarters
	c.mu.RUnlock()
	if entry != nil && c.now().Before(entry.expires) {
		return entry.value, nil
	}

	refs, err := c.store.Quarters(ctx)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.quarters = &cacheEntry[[]QuarterRef]{value: refs, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return refs, nil
}

// Workshops returns the workshops of ref ordered by date
func (c *Catalog) Workshops(ctx context.Context, ref QuarterRef) ([]Workshop, error) {
	c.mu.RLock()
	entry, ok := c.workshops[ref]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expires) {
		return entry.value, nil
	}

	workshops, err := c.store.Workshops(ctx, ref)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.workshops[ref] = cacheEntry[[]Workshop]{value: workshops, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return workshops, nil
}

// Load fetches the available quarters and, when ref is set, the workshops of
// ref concurrently.
func (c *Catalog) Load(ctx context.Context, ref QuarterRef) ([]QuarterRef, []Workshop, error) {
	var (
		quarters  []QuarterRef
		workshops []Workshop
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quarters, err = c.Quarters(ctx)
		return err
	})
	if !ref.IsZero() {
		g.Go(func() error {
			var err error
			workshops, err = c.Workshops(ctx, ref)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return quarters, workshops, nil
}

// Refresh drops every cached entry. Stores that keep their own copy of the
// content (FileStore) are reloaded.
func (c *Catalog) Refresh() error {
	c.mu.Lock()
	c.quarters = nil
	c.workshops = make(map[QuarterRef]cacheEntry[[]Workshop])
	c.mu.Unlock()

	if loader, ok := c.store.(interface{ Load() error }); ok {
		return loader.Load()
	}
	return nil
}
