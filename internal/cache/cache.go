// Package cache keeps product listings for a short TTL.
//
// Every key carries a generation that Invalidate bumps. A reader takes the
// generation before going to the store and hands it back to Put, so a listing
// read before a write can never overwrite the invalidation that write made.
package cache

import (
	"sync"
	"time"

	"github.com/quickkart/marketplace/internal/domain/product"
)

const defaultTTL = 5 * time.Second

type listing struct {
	items []product.Product
	exp   time.Time
}

type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	listings map[string]listing
	gens     map[string]uint64
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Cache{
		ttl:      ttl,
		now:      time.Now,
		listings: make(map[string]listing),
		gens:     make(map[string]uint64),
	}
}

// Lookup returns the cached listing for key, or the generation to pass to Put
// after loading it from the store.
func (c *Cache) Lookup(key string) (items []product.Product, gen uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen = c.gens[key]

	l, found := c.listings[key]
	if !found {
		return nil, gen, false
	}

	if c.now().After(l.exp) {
		delete(c.listings, key)
		return nil, gen, false
	}

	return l.items, gen, true
}

// Put stores items unless key was invalidated after gen was read.
// It reports whether the listing was stored.
func (c *Cache) Put(key string, gen uint64, items []product.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key] != gen {
		return false
	}

	c.listings[key] = listing{items: items, exp: c.now().Add(c.ttl)}
	return true
}

// Invalidate drops the listings and bumps their generations.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.listings, k)
		c.gens[k]++
	}
}
