package metadata

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	candidates []Candidate
	expires    time.Time
}

// searchCache memoizes merged search results and spaces outbound resolution
// runs so repeated lookups for the same title do not hammer providers.
type searchCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	rateLimit  time.Duration
	lastLookup time.Time
}

func newSearchCache(ttl time.Duration) *searchCache {
	return &searchCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		rateLimit:  250 * time.Millisecond,
		lastLookup: time.Unix(0, 0),
	}
}

// get returns a copy of the cached candidates so callers can mutate their
// slice without corrupting later lookups.
func (c *searchCache) get(key string) ([]Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	candidates := make([]Candidate, len(entry.candidates))
	copy(candidates, entry.candidates)
	return candidates, true
}

// put stores its own copy of the candidates; the caller keeps ownership of
// the slice it passed in.
func (c *searchCache) put(key string, candidates []Candidate) {
	owned := make([]Candidate, len(candidates))
	copy(owned, candidates)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{candidates: owned, expires: time.Now().Add(c.ttl)}
}

// throttle blocks until the rate-limit window since the previous outbound
// lookup has elapsed.
func (c *searchCache) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := c.rateLimit - time.Since(c.lastLookup)
	if wait > 0 {
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		c.mu.Lock()
	}
	c.lastLookup = time.Now()
	c.mu.Unlock()
	return nil
}
