package cache

import (
	"sync"
	"time"
)

type stateEntry struct {
	nonce     string
	expiresAt time.Time
}

// StateCache holds the state→nonce binding for in-flight login handshakes.
// Entries are single-use: the callback takes its entry exactly once, so a
// replayed state finds nothing and fails the handshake.
type StateCache struct {
	mu      sync.RWMutex
	entries map[string]stateEntry
	ttl     time.Duration
}

// NewStateCache creates a state cache whose entries expire after ttl.
func NewStateCache(ttl time.Duration) *StateCache {
	c := &StateCache{
		entries: make(map[string]stateEntry),
		ttl:     ttl,
	}

	go c.cleanupLoop()

	return c
}

// Put stores the nonce for a freshly started handshake.
func (c *StateCache) Put(state, nonce string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[state] = stateEntry{
		nonce:     nonce,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Take removes and returns the nonce bound to a state. Unknown and expired
// states report absence.
func (c *StateCache) Take(state string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[state]
	if !ok {
		return "", false
	}

	delete(c.entries, state)

	if time.Now().After(entry.expiresAt) {
		return "", false
	}

	return entry.nonce, true
}

// cleanupLoop evicts abandoned handshakes so the map does not grow with
// logins that never reach the callback.
func (c *StateCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for state, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, state)
			}
		}
		c.mu.Unlock()
	}
}
