package robots

import (
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// policyCache holds parsed robots.txt data per host with a TTL, so importing
// many URLs from the same site fetches its policy once.
type policyCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data    *robotstxt.RobotsData
	denied  string
	fetched time.Time
}

func newPolicyCache(ttl time.Duration) *policyCache {
	return &policyCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached outcome for host. ok is false on a miss or an
// expired entry. data is nil when the cached outcome was an unconditional
// allow (absent robots.txt) and denied is non-empty when the cached outcome
// was a fetch-level denial.
func (c *policyCache) get(host string) (data *robotstxt.RobotsData, denied string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[host]
	if !found || time.Since(entry.fetched) > c.ttl {
		delete(c.entries, host)
		return nil, "", false
	}
	return entry.data, entry.denied, true
}

func (c *policyCache) put(host string, data *robotstxt.RobotsData, denied string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[host] = cacheEntry{data: data, denied: denied, fetched: time.Now()}
}
