// Package resolver orders block definitions so that every dependency is
// registered before its dependents, and rejects cyclic batches.
package resolver

import (
	"fmt"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/log"
)

// ExternalDependency records a dependency on a block that is not part of the
// resolved batch. It is an observation, not an error: the dependency may be
// satisfied by an earlier batch or by a plugin loaded later.
type ExternalDependency struct {
	BlockID      string
	DependencyID string
}

// Result is the outcome of a successful resolution.
type Result struct {
	// Order lists the batch with dependencies strictly before dependents.
	Order []block.Definition

	// External lists in-batch blocks depending on out-of-batch ids.
	External []ExternalDependency

	// Warnings records dropped duplicates and skipped entries.
	Warnings []string
}

// CycleError reports a dependency cycle. BlockID names a block on the cycle.
type CycleError struct {
	BlockID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle involving block %q", e.BlockID)
}

// Resolver computes registration order for definition batches.
type Resolver struct{}

// New creates a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// visit marks for the three-color depth-first search.
type mark int

const (
	unvisited mark = iota
	inProgress
	done
)

// Resolve orders defs so dependencies precede dependents.
//
// The traversal is deterministic: roots are visited in input order and each
// block's dependencies in declared order, so equal inputs always produce the
// same order. On a cycle the returned error is a *CycleError naming a block
// on the cycle and no partial order is returned.
func (r *Resolver) Resolve(defs []block.Definition) (*Result, error) {
	result := &Result{}

	// Index the batch by id. First occurrence of a duplicate id wins; the
	// drop is surfaced as a warning rather than silently losing a block.
	index := make(map[string]int, len(defs))
	ids := make([]string, 0, len(defs))
	var anonymous []block.Definition
	for i, def := range defs {
		if def.ID == "" {
			// No id means no graph node. Passed through at the end of the
			// order so registration can report the real validation errors.
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("definition %d has no id; dependency resolution skipped", i))
			anonymous = append(anonymous, def)
			continue
		}
		if _, dup := index[def.ID]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate definition for block %q dropped, first occurrence kept", def.ID))
			continue
		}
		index[def.ID] = i
		ids = append(ids, def.ID)
	}

	marks := make(map[string]mark, len(index))
	seenExternal := make(map[ExternalDependency]struct{})

	var visit func(id string) error
	visit = func(id string) error {
		switch marks[id] {
		case done:
			return nil
		case inProgress:
			// Back edge into the current traversal stack.
			return &CycleError{BlockID: id}
		}
		marks[id] = inProgress

		def := defs[index[id]]
		for _, dep := range def.Dependencies {
			if dep == "" {
				continue
			}
			if _, inBatch := index[dep]; !inBatch {
				ext := ExternalDependency{BlockID: id, DependencyID: dep}
				if _, seen := seenExternal[ext]; !seen {
					seenExternal[ext] = struct{}{}
					result.External = append(result.External, ext)
				}
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		marks[id] = done
		result.Order = append(result.Order, defs[index[id]])
		return nil
	}

	for _, id := range ids {
		if marks[id] != done {
			if err := visit(id); err != nil {
				log.ErrorErr(log.CatResolver, "dependency resolution failed", err, "blocks", len(defs))
				return nil, err
			}
		}
	}

	result.Order = append(result.Order, anonymous...)

	log.Debug(log.CatResolver, "batch resolved",
		"blocks", len(result.Order),
		"external", len(result.External),
		"warnings", len(result.Warnings))
	return result, nil
}
