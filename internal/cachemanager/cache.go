// Package cachemanager caches successful block registrations so repeated
// initializations within one process skip redundant validation work. Nothing
// here survives a restart.
package cachemanager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/log"
)

const (
	DefaultMaxAge        = 30 * time.Minute
	DefaultMaxSize       = 512
	DefaultSweepInterval = 5 * time.Minute
)

// Config controls entry lifetime and cache size.
type Config struct {
	// Enabled toggles the cache. Disabled means every lookup misses and
	// nothing is stored.
	Enabled bool

	// MaxAge is how long an entry stays valid.
	MaxAge time.Duration

	// MaxSize bounds the entry count after a sweep. The sweep evicts
	// oldest-first once age-expired entries are gone.
	MaxSize int

	// SweepInterval is the cadence of the background sweeper.
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Entry is one cached registration.
type Entry struct {
	Definition block.Definition
	Timestamp  time.Time // when cached; age and eviction order derive from this
	Version    string
	Checksum   string // sha256 hex of the definition's canonical JSON encoding
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Efficiency  float64 `json:"efficiency"` // hits / (hits + misses); 0 with no lookups
	Evictions   uint64  `json:"evictions"`  // removed by the size bound
	Expirations uint64  `json:"expirations"`
}

// RegistrationCache stores validated definitions keyed by (id, type, version).
type RegistrationCache struct {
	cfg   Config
	cache *gocache.Cache

	mu sync.Mutex // serializes sweeps

	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
}

// New creates a cache. Zero durations and sizes fall back to the defaults.
// The internal janitor of the backing store is disabled: all eviction runs
// through the sweep so age and size are enforced in one place.
func New(cfg Config) *RegistrationCache {
	cfg = cfg.withDefaults()
	return &RegistrationCache{
		cfg:   cfg,
		cache: gocache.New(cfg.MaxAge, 0),
	}
}

// Key returns the deterministic cache key for a definition.
func Key(def block.Definition) string {
	return fmt.Sprintf("%s|%s|%s", def.ID, def.Type, def.Version)
}

// Checksum returns the sha256 hex digest of the definition's canonical JSON
// encoding. Struct field order makes the encoding stable.
func Checksum(def block.Definition) string {
	data, err := json.Marshal(def)
	if err != nil {
		// Definitions are plain data; Marshal cannot fail on them.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the live entry for def. A present, unexpired entry whose
// checksum still matches the definition is a hit; anything else is a miss.
// A checksum mismatch also removes the stale entry.
func (c *RegistrationCache) Lookup(def block.Definition) (Entry, bool) {
	if !c.cfg.Enabled {
		c.misses.Add(1)
		return Entry{}, false
	}

	key := Key(def)
	value, found := c.cache.Get(key)
	if !found {
		c.misses.Add(1)
		return Entry{}, false
	}

	entry, ok := value.(Entry)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "key", key)
		c.misses.Add(1)
		return Entry{}, false
	}

	if entry.Checksum != Checksum(def) {
		// Same id/type/version but different content. The entry is stale.
		c.cache.Delete(key)
		c.misses.Add(1)
		log.Debug(log.CatCache, "checksum mismatch, entry dropped", "key", key)
		return Entry{}, false
	}

	c.hits.Add(1)
	log.Debug(log.CatCache, "cache hit", "key", key)
	return entry, true
}

// Store caches a fresh entry for a successfully registered definition.
func (c *RegistrationCache) Store(def block.Definition) {
	if !c.cfg.Enabled {
		return
	}
	entry := Entry{
		Definition: def.Clone(),
		Timestamp:  time.Now(),
		Version:    def.Version,
		Checksum:   Checksum(def),
	}
	c.cache.Set(Key(def), entry, c.cfg.MaxAge)
}

// DeleteByBlockID removes every entry belonging to a block id and returns
// how many were dropped.
func (c *RegistrationCache) DeleteByBlockID(id string) int {
	removed := 0
	for key, item := range c.cache.Items() {
		entry, ok := item.Object.(Entry)
		if !ok {
			continue
		}
		if entry.Definition.ID == id {
			c.cache.Delete(key)
			removed++
		}
	}
	return removed
}

// Flush drops every entry. Counters survive; ResetStats clears them.
func (c *RegistrationCache) Flush() {
	c.cache.Flush()
}

// SweepNow removes expired entries, then evicts oldest-first until the size
// bound holds. Returns how many entries each pass removed.
func (c *RegistrationCache) SweepNow() (expired, evicted int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.cache.ItemCount()
	c.cache.DeleteExpired()
	expired = before - c.cache.ItemCount()
	if expired > 0 {
		c.expirations.Add(uint64(expired))
	}

	// Size pass over a snapshot: oldest timestamps go first.
	items := c.cache.Items()
	if len(items) > c.cfg.MaxSize {
		type aged struct {
			key string
			ts  time.Time
		}
		entries := make([]aged, 0, len(items))
		for key, item := range items {
			entry, ok := item.Object.(Entry)
			if !ok {
				// Unknown value shape; treat as oldest so it goes first.
				entries = append(entries, aged{key: key})
				continue
			}
			entries = append(entries, aged{key: key, ts: entry.Timestamp})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].ts.Equal(entries[j].ts) {
				return entries[i].key < entries[j].key
			}
			return entries[i].ts.Before(entries[j].ts)
		})

		excess := len(entries) - c.cfg.MaxSize
		for _, e := range entries[:excess] {
			c.cache.Delete(e.key)
			evicted++
		}
		c.evictions.Add(uint64(evicted))
	}

	if expired > 0 || evicted > 0 {
		log.Debug(log.CatCache, "sweep complete",
			"expired", expired, "evicted", evicted, "size", c.cache.ItemCount())
	}
	return expired, evicted
}

// StartSweeper runs periodic sweeps until ctx is cancelled.
func (c *RegistrationCache) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.SweepNow()
			}
		}
	}()
}

// Stats returns a snapshot of the counters and current size.
func (c *RegistrationCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	var efficiency float64
	if total := hits + misses; total > 0 {
		efficiency = float64(hits) / float64(total)
	}
	return Stats{
		Size:        c.cache.ItemCount(),
		MaxSize:     c.cfg.MaxSize,
		Hits:        hits,
		Misses:      misses,
		Efficiency:  efficiency,
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
}

// ResetStats zeroes all counters.
func (c *RegistrationCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.expirations.Store(0)
}

// Enabled reports whether the cache stores and serves entries.
func (c *RegistrationCache) Enabled() bool {
	return c.cfg.Enabled
}
