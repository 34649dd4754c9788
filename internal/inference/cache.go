package inference

import (
	"sync"
	"time"

	"github.com/dusk-indust/codegraph/internal/ident"
)

// CachePolicy selects when derived edges are recomputed (spec §4.5.4).
type CachePolicy string

const (
	PolicyEager  CachePolicy = "eager"
	PolicyLazy   CachePolicy = "lazy"
	PolicyManual CachePolicy = "manual"
)

// CacheEntry is one physical derivation-cache row, keyed on
// (From, To, Type) (spec §4.5.4).
type CacheEntry struct {
	From       string
	To         string
	Type       string
	EdgePath   []string
	Depth      int
	ComputedAt time.Time
}

type cacheKey struct {
	From, To, Type string
}

// DerivationCache holds derived edges computed by Engine.Transitive and
// Engine.Inheritable, with invalidation scoped by edge-type hierarchy.
type DerivationCache struct {
	mu      sync.RWMutex
	policy  CachePolicy
	entries map[cacheKey]CacheEntry
	// writeTimestamps tracks the most recent write time observed for each
	// edge type, used by the lazy policy to decide whether a cached entry
	// is stale (spec §4.5.4's lazy recompute-on-read rule).
	writeTimestamps map[string]time.Time
}

func NewDerivationCache(policy CachePolicy) *DerivationCache {
	return &DerivationCache{
		policy:          policy,
		entries:         make(map[cacheKey]CacheEntry),
		writeTimestamps: make(map[string]time.Time),
	}
}

func (c *DerivationCache) put(key cacheKey, entry CacheEntry) {
	entry.ComputedAt = time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// Get returns a cached entry and whether it is still fresh under the
// configured policy. Manual-policy entries are always considered fresh
// until explicitly invalidated; lazy-policy entries are fresh only if no
// relevant edge type was written to since ComputedAt.
func (c *DerivationCache) Get(from, to, typ string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey{From: from, To: to, Type: typ}]
	if !ok {
		return CacheEntry{}, false
	}
	if c.policy == PolicyLazy {
		if last, tracked := c.writeTimestamps[typ]; tracked && last.After(entry.ComputedAt) {
			return CacheEntry{}, false
		}
	}
	return entry, true
}

// All returns a snapshot of every cached entry, sorted for determinism by
// caller (Validate uses this).
func (c *DerivationCache) All() []CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// NoteWrite records that an edge of the given type was written or deleted,
// for the lazy policy's staleness check.
func (c *DerivationCache) NoteWrite(typ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeTimestamps[typ] = time.Now()
}

// Invalidate implements spec §4.5.4's invalidation rule: writing or
// deleting an edge of type T invalidates every cached entry whose edgePath
// touches an edge of type T or any of T's descendants. Since CacheEntry
// doesn't carry per-hop edge types, invalidation here is scoped by the
// cache entry's own Type plus the hierarchy registry — an entry is dropped
// if its Type is T, a descendant of T, or an ancestor of T (the forest
// relation is symmetric for invalidation purposes: a change anywhere in
// the subtree can change results for any type along that path).
func (c *DerivationCache) Invalidate(registry *ident.TypeRegistry, writtenType string) int {
	touched := make(map[string]bool)
	touched[writtenType] = true
	for _, d := range registry.Descendants(writtenType) {
		touched[d] = true
	}
	for _, a := range registry.Ancestors(writtenType) {
		touched[a] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if touched[entry.Type] {
			delete(c.entries, key)
			removed++
		}
	}
	c.writeTimestamps[writtenType] = time.Now()
	return removed
}

// InvalidateAll drops every cached entry (used when policy is manual and a
// caller explicitly asks for a full recompute).
func (c *DerivationCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]CacheEntry)
}
