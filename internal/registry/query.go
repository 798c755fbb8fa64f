package registry

import (
	"strings"

	"github.com/botcanvas/blockcore/internal/block"
)

// Query narrows a palette listing. Zero-value fields do not filter; set
// fields are AND-combined.
type Query struct {
	Category block.Category      // exact category
	Context  block.CanvasContext // block must be usable on this canvas
	Tags     []string            // block must carry every tag
	Search   string              // case-insensitive substring over id, name, description, tags

	EnabledOnly         bool // drop blocks hidden from the palette
	IncludeExperimental bool // experimental blocks are excluded unless set
}

// Filter returns the definitions matching q, in registration order,
// deep-copied.
func (r *Registry) Filter(q Query) []block.Definition {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []block.Definition
	for _, id := range r.order {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		if q.EnabledOnly && !e.enabled {
			continue
		}
		if e.def.Experimental && !q.IncludeExperimental {
			continue
		}
		if q.Category != "" && e.def.Category != q.Category {
			continue
		}
		if q.Context != "" && !hasContext(e.def.Contexts, q.Context) {
			continue
		}
		if !hasAllTags(e.def.Tags, q.Tags) {
			continue
		}
		if needle != "" && !matchesSearch(e.def, needle) {
			continue
		}
		out = append(out, e.def.Clone())
	}
	return out
}

func hasContext(contexts []block.CanvasContext, want block.CanvasContext) bool {
	for _, c := range contexts {
		if c == want {
			return true
		}
	}
	return false
}

func hasAllTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

func matchesSearch(def block.Definition, needle string) bool {
	if strings.Contains(strings.ToLower(def.ID), needle) ||
		strings.Contains(strings.ToLower(def.DisplayName), needle) ||
		strings.Contains(strings.ToLower(def.Description), needle) {
		return true
	}
	for _, t := range def.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// Stats is a point-in-time summary of the registry.
type Stats struct {
	Total        int                         `json:"total"`
	Enabled      int                         `json:"enabled"`
	Experimental int                         `json:"experimental"`
	ByCategory   map[block.Category]int      `json:"by_category"`
	ByContext    map[block.CanvasContext]int `json:"by_context"`
	Aliases      int                         `json:"aliases"`
	Warnings     int                         `json:"warnings"`
}

// Stats returns a copy of the current registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Total:      len(r.entries),
		Aliases:    len(r.aliases),
		ByCategory: make(map[block.Category]int),
		ByContext:  make(map[block.CanvasContext]int),
	}
	for _, e := range r.entries {
		if e.enabled {
			stats.Enabled++
		}
		if e.def.Experimental {
			stats.Experimental++
		}
		stats.ByCategory[e.def.Category]++
		for _, c := range e.def.Contexts {
			stats.ByContext[c]++
		}
		stats.Warnings += len(e.warnings)
	}
	return stats
}
