package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/botcanvas/blockcore/internal/block"
)

func def(id string, deps ...string) block.Definition {
	return block.Definition{
		ID:           id,
		Type:         id,
		DisplayName:  id,
		Dependencies: deps,
	}
}

func orderIDs(result *Result) []string {
	ids := make([]string, len(result.Order))
	for i, d := range result.Order {
		ids[i] = d.ID
	}
	return ids
}

func TestResolve_DependenciesBeforeDependents(t *testing.T) {
	r := New()

	// B depends on A, C depends on B; input deliberately scrambled.
	result, err := r.Resolve([]block.Definition{
		def("C", "B"),
		def("A"),
		def("B", "A"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, orderIDs(result))
	require.Empty(t, result.External)
	require.Empty(t, result.Warnings)
}

func TestResolve_EmptyBatch(t *testing.T) {
	result, err := New().Resolve(nil)
	require.NoError(t, err)
	require.Empty(t, result.Order)
}

func TestResolve_NoDependencies_KeepsInputOrder(t *testing.T) {
	result, err := New().Resolve([]block.Definition{def("x"), def("y"), def("z")})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "z"}, orderIDs(result))
}

func TestResolve_Deterministic(t *testing.T) {
	defs := []block.Definition{
		def("e", "a", "c"),
		def("a"),
		def("d", "a"),
		def("c", "d"),
		def("b", "a"),
	}

	first, err := New().Resolve(defs)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := New().Resolve(defs)
		require.NoError(t, err)
		require.Equal(t, orderIDs(first), orderIDs(again), "iteration %d", i)
	}
}

func TestResolve_Cycle(t *testing.T) {
	result, err := New().Resolve([]block.Definition{
		def("a", "b"),
		def("b", "c"),
		def("c", "a"),
	})
	require.Error(t, err)
	require.Nil(t, result, "no partial order on cycle")

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Contains(t, []string{"a", "b", "c"}, cycleErr.BlockID, "error names a cycle member")
}

func TestResolve_TwoNodeCycle(t *testing.T) {
	_, err := New().Resolve([]block.Definition{
		def("a", "b"),
		def("b", "a"),
	})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestResolve_SelfDependency(t *testing.T) {
	_, err := New().Resolve([]block.Definition{def("a", "a")})

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Equal(t, "a", cycleErr.BlockID)
}

func TestResolve_ExternalDependency(t *testing.T) {
	result, err := New().Resolve([]block.Definition{
		def("a", "ghost.block"),
		def("b", "a"),
	})
	require.NoError(t, err, "external dependencies are observations, not failures")
	require.Equal(t, []string{"a", "b"}, orderIDs(result))
	require.Equal(t, []ExternalDependency{{BlockID: "a", DependencyID: "ghost.block"}}, result.External)
}

func TestResolve_ExternalDependency_Deduplicated(t *testing.T) {
	result, err := New().Resolve([]block.Definition{
		def("a", "ghost.block", "ghost.block"),
	})
	require.NoError(t, err)
	require.Len(t, result.External, 1)
}

func TestResolve_DuplicateID_FirstWins(t *testing.T) {
	dup := def("a")
	dup.DisplayName = "second"

	result, err := New().Resolve([]block.Definition{
		def("a"),
		dup,
		def("b", "a"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, orderIDs(result))
	require.Equal(t, "a", result.Order[0].DisplayName, "first occurrence kept")
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "duplicate")
}

func TestResolve_MissingID_PassedThroughWithWarning(t *testing.T) {
	anon := block.Definition{Type: "mystery"}

	result, err := New().Resolve([]block.Definition{anon, def("a")})
	require.NoError(t, err)
	require.Equal(t, []string{"a", ""}, orderIDs(result), "anonymous entries trail the ordered batch")
	require.Len(t, result.Warnings, 1)
}

func TestResolve_DiamondGraph(t *testing.T) {
	// d depends on b and c, both depend on a.
	result, err := New().Resolve([]block.Definition{
		def("d", "b", "c"),
		def("b", "a"),
		def("c", "a"),
		def("a"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, orderIDs(result))
}

// TestResolve_TopologicalProperty is a property-based test using rapid.
// Any randomly generated acyclic batch must resolve with every dependency
// placed before each of its dependents.
func TestResolve_TopologicalProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 25).Draw(rt, "n")

		// Edges only point at lower indices, so the batch is acyclic by
		// construction no matter how it is shuffled afterwards.
		defs := make([]block.Definition, n)
		for i := 0; i < n; i++ {
			d := def(fmt.Sprintf("block-%d", i))
			if i > 0 {
				numDeps := rapid.IntRange(0, min(i, 3)).Draw(rt, fmt.Sprintf("numDeps%d", i))
				seen := map[int]bool{}
				for j := 0; j < numDeps; j++ {
					target := rapid.IntRange(0, i-1).Draw(rt, fmt.Sprintf("dep%d_%d", i, j))
					if !seen[target] {
						seen[target] = true
						d.Dependencies = append(d.Dependencies, fmt.Sprintf("block-%d", target))
					}
				}
			}
			defs[i] = d
		}

		// Fisher-Yates with drawn indices keeps the shuffle reproducible.
		for i := n - 1; i > 0; i-- {
			j := rapid.IntRange(0, i).Draw(rt, fmt.Sprintf("swap%d", i))
			defs[i], defs[j] = defs[j], defs[i]
		}

		result, err := New().Resolve(defs)
		if err != nil {
			rt.Fatalf("acyclic batch failed to resolve: %v", err)
		}
		if len(result.Order) != n {
			rt.Fatalf("expected %d blocks in order, got %d", n, len(result.Order))
		}
		if len(result.External) != 0 {
			rt.Fatalf("unexpected external dependencies: %v", result.External)
		}

		position := make(map[string]int, n)
		for i, d := range result.Order {
			position[d.ID] = i
		}
		for _, d := range result.Order {
			for _, dep := range d.Dependencies {
				if position[dep] >= position[d.ID] {
					rt.Fatalf("dependency %s must precede %s (positions %d >= %d)",
						dep, d.ID, position[dep], position[d.ID])
				}
			}
		}
	})
}
