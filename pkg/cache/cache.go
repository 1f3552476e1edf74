// Package cache provides the small in-process caches used by read-heavy
// lookup paths. Entries never expire on their own except in the TTL cache;
// callers invalidate explicitly when the underlying rows change.
package cache

import (
	"sync"
	"time"
)

// DefaultLFUCapacity is used when a capacity is not configured.
const DefaultLFUCapacity = 50

// Single holds at most one value. It backs whole-collection lookups where
// the result set is replaced wholesale and dropped on any write.
type Single struct {
	mu  sync.RWMutex
	set bool
	val any
}

// Get returns the cached value if one is set.
func (s *Single) Get() (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val, s.set
}

// Set replaces the cached value.
func (s *Single) Set(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = v
	s.set = true
}

// Invalidate drops the cached value.
func (s *Single) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = nil
	s.set = false
}

type lfuEntry struct {
	val  any
	freq uint64
}

// LFU is a least-frequently-used cache with a fixed capacity. Lookups count
// toward an entry's frequency, so hot keys survive eviction.
type LFU struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*lfuEntry
}

// NewLFU returns an LFU cache holding at most capacity entries.
func NewLFU(capacity int) *LFU {
	if capacity <= 0 {
		capacity = DefaultLFUCapacity
	}
	return &LFU{
		capacity: capacity,
		entries:  make(map[string]*lfuEntry, capacity),
	}
}

// Get returns the value for key and bumps its use count.
func (c *LFU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry.freq++
	return entry.val, true
}

// Set stores val under key, evicting the least-used entry when full.
func (c *LFU) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		entry.val = val
		entry.freq++
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = &lfuEntry{val: val, freq: 1}
}

// Delete removes a single key.
func (c *LFU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Invalidate drops every entry.
func (c *LFU) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*lfuEntry, c.capacity)
}

// Len reports the number of cached entries.
func (c *LFU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LFU) evictLocked() {
	var (
		victim string
		min    uint64
		found  bool
	)
	for key, entry := range c.entries {
		if !found || entry.freq < min {
			victim = key
			min = entry.freq
			found = true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

type ttlEntry struct {
	val      any
	deadline time.Time
}

// TTL is a map cache whose entries expire after a fixed duration. Expired
// entries are dropped lazily on lookup.
type TTL struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]ttlEntry
}

// NewTTL returns a TTL cache whose entries live for the given duration.
func NewTTL(ttl time.Duration) *TTL {
	return &TTL{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]ttlEntry),
	}
}

// Get returns the value for key if it has not expired.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.deadline) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.val, true
}

// Set stores val under key with a fresh deadline.
func (c *TTL) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry{val: val, deadline: c.now().Add(c.ttl)}
}

// Invalidate drops every entry.
func (c *TTL) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]ttlEntry)
}
