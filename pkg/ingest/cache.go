package ingest

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	// WorkbookTTL is how long a parsed workbook is reused for identical uploads
	WorkbookTTL = 10 * time.Minute
	// SheetTTL is how long a downloaded Google Sheet is reused before it is fetched again
	SheetTTL = time.Minute
)

// Fingerprint identifies a source by its content
func Fingerprint(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// FingerprintString identifies a source by a string such as its URL
func FingerprintString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Cache keeps parsed datasets keyed by source fingerprint until they expire
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[uint64]entry
}

type entry struct {
	ds      *Dataset
	expires time.Time
}

type CacheOption func(c *Cache)

// WithClock replaces time.Now, used to test expiry
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache returns a cache whose entries expire ttl after they are stored
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uint64]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the unexpired dataset stored under key
func (c *Cache) Get(key uint64) (*Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.ds, true
}

// Put stores a dataset under key
func (c *Cache) Put(key uint64, ds *Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evict()
	c.entries[key] = entry{ds: ds, expires: c.now().Add(c.ttl)}
}

// Load returns the cached dataset for key or calls load and caches its result.  Errors are not cached.
// Concurrent misses for the same key may both call load.
func (c *Cache) Load(key uint64, load func() (*Dataset, error)) (*Dataset, bool, error) {
	if ds, ok := c.Get(key); ok {
		return ds, true, nil
	}
	ds, err := load()
	if err != nil {
		return nil, false, err
	}
	c.Put(key, ds)
	return ds, false, nil
}

// Clear drops every entry, forcing the next load to read the source again
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uint64]entry)
}

// Len returns the number of stored entries, including expired ones not yet evicted
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict removes expired entries, must be called with the lock held
func (c *Cache) evict() {
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}
