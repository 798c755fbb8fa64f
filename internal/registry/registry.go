// Package registry is the queryable runtime store of registered blocks.
//
// The registry validates definitions on the way in, keeps registration
// order, resolves legacy spellings through a two-tier alias ladder, and
// notifies listeners on every mutation. It is mutex-guarded and safe for
// concurrent use; single-writer discipline during initialization is the
// orchestrator's job, not the registry's.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/botcanvas/blockcore/internal/alias"
	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/cachemanager"
	"github.com/botcanvas/blockcore/internal/log"
	"github.com/botcanvas/blockcore/internal/pubsub"
)

// Registry errors
var (
	ErrNotFound    = errors.New("block not registered")
	ErrDuplicateID = errors.New("block id already registered")
)

// entry is the stored form of a registered block.
type entry struct {
	def      block.Definition
	enabled  bool
	warnings []string
}

// Registry holds all registered blocks.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string          // ids in registration order
	aliases map[string]string // runtime spelling -> canonical id

	table *alias.Table
	cache *cachemanager.RegistrationCache

	listeners    map[int]Listener
	nextListener int
	failures     *pubsub.Broker[ListenerFailure]
}

// New creates an empty registry. The alias table backs the third rung of the
// lookup ladder; a nil cache disables registration caching.
func New(table *alias.Table, cache *cachemanager.RegistrationCache) *Registry {
	if table == nil {
		table = alias.New(nil)
	}
	if cache == nil {
		cache = cachemanager.New(cachemanager.Config{Enabled: false})
	}
	return &Registry{
		entries:   make(map[string]*entry),
		aliases:   make(map[string]string),
		table:     table,
		cache:     cache,
		listeners: make(map[int]Listener),
		failures:  pubsub.NewBroker[ListenerFailure](),
	}
}

// Register validates and stores a definition. All structural problems are
// returned at once; a failed registration leaves no partial state. A
// registration cache hit skips the validation pass, since an identical
// definition already passed it.
func (r *Registry) Register(def block.Definition) error {
	def = def.Normalized()
	if canonical := r.table.Normalize(def.ID); canonical != def.ID {
		log.Debug(log.CatRegistry, "legacy id normalized at registration",
			"id", def.ID, "canonical", canonical)
		def.ID = canonical
	}

	var warnings []string
	if _, hit := r.cache.Lookup(def); !hit {
		if err := validate(def); err != nil {
			log.ErrorErr(log.CatRegistry, "definition rejected", err, "id", def.ID)
			return fmt.Errorf("register %q: %w", def.ID, err)
		}
		warnings = metadataWarnings(def)
	}

	r.mu.Lock()
	if _, exists := r.entries[def.ID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("register %q: %w", def.ID, ErrDuplicateID)
	}
	if canonical, exists := r.aliases[def.ID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("register %q: id is an alias of %q: %w", def.ID, canonical, ErrDuplicateID)
	}

	stored := def.Clone()
	r.entries[def.ID] = &entry{def: stored, enabled: true, warnings: warnings}
	r.order = append(r.order, def.ID)
	warnings = append(warnings, r.recordAliasesLocked(def)...)
	r.entries[def.ID].warnings = warnings

	defs := r.snapshotLocked()
	listeners := r.listenersLocked()
	r.mu.Unlock()

	r.cache.Store(stored)
	log.Info(log.CatRegistry, "block registered",
		"id", def.ID, "category", def.Category, "warnings", len(warnings))

	r.notify(listeners, defs)
	return nil
}

// recordAliasesLocked maps the definition's own aliases and the static
// table's spellings to the canonical id. Spellings already claimed by
// another block are skipped with a warning rather than silently stolen.
func (r *Registry) recordAliasesLocked(def block.Definition) []string {
	var warnings []string
	record := func(spelling string) {
		if spelling == "" || spelling == def.ID {
			return
		}
		if _, taken := r.entries[spelling]; taken {
			warnings = append(warnings, fmt.Sprintf("alias %q collides with a registered block id", spelling))
			return
		}
		if owner, taken := r.aliases[spelling]; taken && owner != def.ID {
			warnings = append(warnings, fmt.Sprintf("alias %q already resolves to %q", spelling, owner))
			return
		}
		r.aliases[spelling] = def.ID
	}

	for _, a := range def.Aliases {
		record(a)
	}
	for _, a := range r.table.SpellingsFor(def.ID) {
		record(a)
	}
	return warnings
}

// lookupLocked walks the resolution ladder: exact id, runtime alias map,
// static legacy table.
func (r *Registry) lookupLocked(id string) (*entry, string, bool) {
	if e, ok := r.entries[id]; ok {
		return e, id, true
	}
	if canonical, ok := r.aliases[id]; ok {
		if e, ok := r.entries[canonical]; ok {
			return e, canonical, true
		}
	}
	if canonical, ok := r.table.Resolve(id); ok {
		if e, ok := r.entries[canonical]; ok {
			return e, canonical, true
		}
	}
	return nil, "", false
}

// Get returns the definition for id, resolving legacy spellings. The second
// return is false when nothing registered matches.
func (r *Registry) Get(id string) (block.Definition, bool) {
	r.mu.RLock()
	e, canonical, ok := r.lookupLocked(id)
	if !ok {
		r.mu.RUnlock()
		log.Debug(log.CatRegistry, "lookup miss", "id", id)
		return block.Definition{}, false
	}
	def := e.def.Clone()
	r.mu.RUnlock()

	if canonical != id {
		log.Debug(log.CatRegistry, "lookup resolved through alias", "id", id, "canonical", canonical)
	}
	return def, true
}

// Has reports whether id resolves to a registered block.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, _, ok := r.lookupLocked(id)
	return ok
}

// IsValidType reports whether id names a usable block type on the canvas,
// under any spelling.
func (r *Registry) IsValidType(id string) bool {
	return r.Has(id)
}

// Unregister removes a block under any spelling, along with its alias
// records and cache entries. Returns false when nothing matched.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	_, canonical, ok := r.lookupLocked(id)
	if !ok {
		r.mu.Unlock()
		return false
	}

	delete(r.entries, canonical)
	for i, oid := range r.order {
		if oid == canonical {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for spelling, owner := range r.aliases {
		if owner == canonical {
			delete(r.aliases, spelling)
		}
	}

	defs := r.snapshotLocked()
	listeners := r.listenersLocked()
	r.mu.Unlock()

	r.cache.DeleteByBlockID(canonical)
	log.Info(log.CatRegistry, "block unregistered", "id", canonical)

	r.notify(listeners, defs)
	return true
}

// SetEnabled flips palette visibility for a block. Listeners fire only when
// the flag actually changes. Returns false when nothing matched.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	e, canonical, ok := r.lookupLocked(id)
	if !ok {
		r.mu.Unlock()
		return false
	}
	if e.enabled == enabled {
		r.mu.Unlock()
		return true
	}
	e.enabled = enabled

	defs := r.snapshotLocked()
	listeners := r.listenersLocked()
	r.mu.Unlock()

	log.Info(log.CatRegistry, "block visibility changed", "id", canonical, "enabled", enabled)
	r.notify(listeners, defs)
	return true
}

// All returns every registered definition in registration order, deep-copied.
func (r *Registry) All() []block.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// AliasesFor returns every known spelling of a block, runtime and static,
// sorted. Empty when the block is unknown or has no aliases.
func (r *Registry) AliasesFor(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, canonical, ok := r.lookupLocked(id)
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	for spelling, owner := range r.aliases {
		if owner == canonical {
			seen[spelling] = true
		}
	}
	for _, spelling := range r.table.SpellingsFor(canonical) {
		seen[spelling] = true
	}
	return sortedKeys(seen)
}

// WarningsFor returns the validation warnings recorded when the block
// registered. Empty when the block is unknown or registered cleanly.
func (r *Registry) WarningsFor(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, _, ok := r.lookupLocked(id)
	if !ok || len(e.warnings) == 0 {
		return nil
	}
	out := make([]string, len(e.warnings))
	copy(out, e.warnings)
	return out
}

// Reset drops every entry and runtime alias. The registration cache stays
// populated; flushing it is the caller's decision. Listeners are notified
// with the empty list.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.entries = make(map[string]*entry)
	r.order = nil
	r.aliases = make(map[string]string)
	listeners := r.listenersLocked()
	r.mu.Unlock()

	log.Info(log.CatRegistry, "registry reset")
	r.notify(listeners, nil)
}

// snapshotLocked deep-copies the current definitions in registration order.
func (r *Registry) snapshotLocked() []block.Definition {
	out := make([]block.Definition, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.entries[id]; ok {
			out = append(out, e.def.Clone())
		}
	}
	return out
}
