package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botcanvas/blockcore/internal/alias"
	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/cachemanager"
)

// validDef returns a definition that registers without errors or warnings.
func validDef(id string) block.Definition {
	return block.Definition{
		ID:          id,
		Type:        id,
		DisplayName: "Block " + id,
		Category:    block.CategoryMessage,
		Color:       "#2D9CDB",
		Contexts:    []block.CanvasContext{block.ContextFlow},
		Version:     "1.0.0",
		Description: "a test block",
		Tags:        []string{"test"},
		UsageHints:  []string{"use in tests"},
	}
}

func testTable() *alias.Table {
	return alias.New(map[string]string{
		"text": "message.text",
		"say":  "message.text",
		"if":   "logic.condition",
	})
}

func newTestRegistry() *Registry {
	return New(testTable(), nil)
}

func TestRegister_And_Get(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.Register(validDef("message.text")))
	require.Equal(t, 1, reg.Len())

	def, ok := reg.Get("message.text")
	require.True(t, ok)
	require.Equal(t, "message.text", def.ID)
	require.Equal(t, "Block message.text", def.DisplayName)
}

func TestRegister_ValidationAggregatesAllProblems(t *testing.T) {
	reg := newTestRegistry()

	bad := block.Definition{
		ID:       "broken.block",
		Category: "decoration",
		Contexts: []block.CanvasContext{"hologram"},
		Version:  "not-a-version",
		Fields: []block.Field{
			{Name: "", Kind: "text"},
			{Name: "choice", Kind: "select"},
		},
	}

	err := reg.Register(bad)
	require.Error(t, err)
	// One round trip reports every problem.
	require.Contains(t, err.Error(), "type is empty")
	require.Contains(t, err.Error(), "display name is empty")
	require.Contains(t, err.Error(), "color is empty")
	require.Contains(t, err.Error(), `category "decoration"`)
	require.Contains(t, err.Error(), `canvas context "hologram"`)
	require.Contains(t, err.Error(), `version "not-a-version"`)
	require.Contains(t, err.Error(), "field 0 has no name")
	require.Contains(t, err.Error(), `select field "choice" has no options`)

	// Atomicity: the failed registration left nothing behind.
	require.Zero(t, reg.Len())
	require.False(t, reg.Has("broken.block"))
}

func TestRegister_DuplicateID(t *testing.T) {
	reg := newTestRegistry()

	first := validDef("message.text")
	first.DisplayName = "The Original"
	require.NoError(t, reg.Register(first))

	second := validDef("message.text")
	second.DisplayName = "The Impostor"
	err := reg.Register(second)
	require.ErrorIs(t, err, ErrDuplicateID)

	def, ok := reg.Get("message.text")
	require.True(t, ok)
	require.Equal(t, "The Original", def.DisplayName, "first registration wins")
}

func TestRegister_LegacyIDNormalized(t *testing.T) {
	reg := newTestRegistry()

	// A definition arriving under a legacy spelling registers canonically.
	legacy := validDef("text")
	require.NoError(t, reg.Register(legacy))

	def, ok := reg.Get("message.text")
	require.True(t, ok)
	require.Equal(t, "message.text", def.ID)

	// Registering the canonical id afterwards is a duplicate.
	require.ErrorIs(t, reg.Register(validDef("message.text")), ErrDuplicateID)
}

func TestRegister_AliasCollisionRecordedAsWarning(t *testing.T) {
	reg := newTestRegistry()

	first := validDef("message.text")
	first.Aliases = []string{"msg"}
	require.NoError(t, reg.Register(first))

	second := validDef("message.image")
	second.Aliases = []string{"msg"} // already owned by message.text
	require.NoError(t, reg.Register(second))

	// The spelling stays with its first owner.
	def, ok := reg.Get("msg")
	require.True(t, ok)
	require.Equal(t, "message.text", def.ID)

	require.Contains(t, reg.WarningsFor("message.image"),
		`alias "msg" already resolves to "message.text"`)
}

func TestGet_ResolutionLadder(t *testing.T) {
	reg := newTestRegistry()

	def := validDef("message.text")
	def.Aliases = []string{"plaintext"}
	require.NoError(t, reg.Register(def))

	cases := []struct {
		name string
		id   string
	}{
		{"exact id", "message.text"},
		{"runtime alias from the definition", "plaintext"},
		{"static legacy spelling", "say"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Get(tc.id)
			require.True(t, ok)
			require.Equal(t, "message.text", got.ID)
		})
	}

	_, ok := reg.Get("hologram")
	require.False(t, ok)
	_, ok = reg.Get("")
	require.False(t, ok)
}

func TestGet_ReturnsClone(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.Register(validDef("message.text")))

	def, ok := reg.Get("message.text")
	require.True(t, ok)
	def.DisplayName = "mutated"
	def.Tags[0] = "mutated"

	fresh, ok := reg.Get("message.text")
	require.True(t, ok)
	require.Equal(t, "Block message.text", fresh.DisplayName)
	require.Equal(t, []string{"test"}, fresh.Tags)
}

func TestHas_And_IsValidType(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.Register(validDef("message.text")))

	require.True(t, reg.Has("message.text"))
	require.True(t, reg.Has("text"), "legacy spelling resolves")
	require.True(t, reg.IsValidType("say"))
	require.False(t, reg.Has("logic.condition"))
	require.False(t, reg.IsValidType("if"), "table knows it, registry does not hold it")
}

func TestUnregister(t *testing.T) {
	cache := cachemanager.New(cachemanager.Config{Enabled: true, MaxAge: time.Minute, MaxSize: 16})
	reg := New(testTable(), cache)

	def := validDef("message.text")
	def.Aliases = []string{"plaintext"}
	require.NoError(t, reg.Register(def))
	require.NoError(t, reg.Register(validDef("message.image")))

	require.True(t, reg.Unregister("plaintext"), "unregister resolves spellings too")

	require.False(t, reg.Has("message.text"))
	require.False(t, reg.Has("plaintext"), "alias records removed")
	require.True(t, reg.Has("message.image"))
	require.Equal(t, []string{"message.image"}, idsOf(reg.All()))

	// Cache entries for the block are gone as well.
	_, hit := cache.Lookup(def.Normalized())
	require.False(t, hit)

	require.False(t, reg.Unregister("message.text"), "second removal is a no-op")
}

func TestSetEnabled(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.Register(validDef("message.text")))
	require.NoError(t, reg.Register(validDef("message.image")))

	require.True(t, reg.SetEnabled("text", false), "legacy spelling resolves")
	require.False(t, reg.SetEnabled("hologram", false))

	enabled := reg.Filter(Query{EnabledOnly: true})
	require.Equal(t, []string{"message.image"}, idsOf(enabled))

	// Disabled blocks still resolve; they are hidden, not gone.
	_, ok := reg.Get("message.text")
	require.True(t, ok)

	require.True(t, reg.SetEnabled("message.text", true))
	require.Len(t, reg.Filter(Query{EnabledOnly: true}), 2)
}

func TestAll_RegistrationOrder(t *testing.T) {
	reg := newTestRegistry()
	for _, id := range []string{"message.zulu", "message.alpha", "message.mike"} {
		require.NoError(t, reg.Register(validDef(id)))
	}

	require.Equal(t, []string{"message.zulu", "message.alpha", "message.mike"}, idsOf(reg.All()))
}

func TestFilter(t *testing.T) {
	reg := New(alias.New(nil), nil)

	text := validDef("message.text")
	text.Tags = []string{"text", "send"}

	condition := validDef("logic.condition")
	condition.Category = block.CategoryLogic
	condition.Description = "branch the flow"

	card := validDef("layout.card")
	card.Category = block.CategoryLayout
	card.Contexts = []block.CanvasContext{block.ContextRichMessage}

	nlu := validDef("integration.nlu")
	nlu.Category = block.CategoryIntegration
	nlu.Experimental = true

	for _, def := range []block.Definition{text, condition, card, nlu} {
		require.NoError(t, reg.Register(def))
	}

	cases := []struct {
		name  string
		query Query
		want  []string
	}{
		{"all non-experimental", Query{}, []string{"message.text", "logic.condition", "layout.card"}},
		{"experimental included", Query{IncludeExperimental: true}, []string{"message.text", "logic.condition", "layout.card", "integration.nlu"}},
		{"by category", Query{Category: block.CategoryLogic}, []string{"logic.condition"}},
		{"by context", Query{Context: block.ContextRichMessage}, []string{"layout.card"}},
		{"tags AND-match", Query{Tags: []string{"text", "send"}}, []string{"message.text"}},
		{"tags AND-match misses", Query{Tags: []string{"text", "receive"}}, nil},
		{"search over description", Query{Search: "BRANCH"}, []string{"logic.condition"}},
		{"search over id", Query{Search: "card"}, []string{"layout.card"}},
		{"no match", Query{Category: block.CategoryInput}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, idsOf(reg.Filter(tc.query)))
		})
	}
}

func TestAliasesFor(t *testing.T) {
	reg := newTestRegistry()

	def := validDef("message.text")
	def.Aliases = []string{"plaintext"}
	require.NoError(t, reg.Register(def))

	// Runtime alias plus both static spellings, sorted.
	require.Equal(t, []string{"plaintext", "say", "text"}, reg.AliasesFor("message.text"))
	require.Equal(t, []string{"plaintext", "say", "text"}, reg.AliasesFor("say"), "resolvable under any spelling")
	require.Nil(t, reg.AliasesFor("hologram"))
}

func TestWarningsFor(t *testing.T) {
	reg := newTestRegistry()

	bare := validDef("message.text")
	bare.Description = ""
	bare.Tags = nil
	bare.UsageHints = nil
	require.NoError(t, reg.Register(bare))
	require.NoError(t, reg.Register(validDef("message.image")))

	warnings := reg.WarningsFor("message.text")
	require.Contains(t, warnings, "no description")
	require.Contains(t, warnings, "no search tags")
	require.Contains(t, warnings, "no usage hints")

	require.Nil(t, reg.WarningsFor("message.image"))
	require.Nil(t, reg.WarningsFor("hologram"))
}

func TestStats(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.Register(validDef("message.text")))

	condition := validDef("logic.condition")
	condition.Category = block.CategoryLogic
	condition.Contexts = []block.CanvasContext{block.ContextFlow, block.ContextSubflow}
	condition.Experimental = true
	condition.Description = ""
	require.NoError(t, reg.Register(condition))

	require.True(t, reg.SetEnabled("logic.condition", false))

	stats := reg.Stats()
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Enabled)
	require.Equal(t, 1, stats.Experimental)
	require.Equal(t, 1, stats.ByCategory[block.CategoryMessage])
	require.Equal(t, 1, stats.ByCategory[block.CategoryLogic])
	require.Equal(t, 2, stats.ByContext[block.ContextFlow])
	require.Equal(t, 1, stats.ByContext[block.ContextSubflow])
	require.Equal(t, 3, stats.Aliases, "text, say and if are recorded spellings")
	require.Equal(t, 1, stats.Warnings)
}

func TestReset(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.Register(validDef("message.text")))

	var gotEmpty bool
	var mu sync.Mutex
	remove := reg.AddListener(func(defs []block.Definition) error {
		mu.Lock()
		gotEmpty = len(defs) == 0
		mu.Unlock()
		return nil
	})
	defer remove()

	reg.Reset()

	require.Zero(t, reg.Len())
	require.False(t, reg.Has("message.text"))
	require.False(t, reg.Has("text"), "runtime aliases cleared")
	mu.Lock()
	require.True(t, gotEmpty, "listeners saw the empty list")
	mu.Unlock()

	// The registry is usable again after a reset.
	require.NoError(t, reg.Register(validDef("message.text")))
	require.Equal(t, 1, reg.Len())
}

func TestRegister_CacheHitSkipsValidationBookkeeping(t *testing.T) {
	cache := cachemanager.New(cachemanager.Config{Enabled: true, MaxAge: time.Minute, MaxSize: 16})
	reg := New(testTable(), cache)

	bare := validDef("message.text")
	bare.Description = "" // would normally record a warning
	require.NoError(t, reg.Register(bare))
	require.Contains(t, reg.WarningsFor("message.text"), "no description")

	// Same definition re-registered after a reset hits the cache and skips
	// the validation pass, so no metadata warnings are recorded.
	reg.Reset()
	require.NoError(t, reg.Register(bare))
	require.NotContains(t, reg.WarningsFor("message.text"), "no description")

	stats := cache.Stats()
	require.Equal(t, uint64(1), stats.Hits)
}

func TestListeners_NotifiedPerMutation(t *testing.T) {
	reg := newTestRegistry()

	var mu sync.Mutex
	var counts []int
	remove := reg.AddListener(func(defs []block.Definition) error {
		mu.Lock()
		counts = append(counts, len(defs))
		mu.Unlock()
		return nil
	})

	require.NoError(t, reg.Register(validDef("message.text")))
	require.NoError(t, reg.Register(validDef("message.image")))
	require.True(t, reg.SetEnabled("message.text", false))
	require.True(t, reg.Unregister("message.image"))

	remove()
	require.NoError(t, reg.Register(validDef("message.video")))

	mu.Lock()
	defer mu.Unlock()
	// register, register, disable, unregister; nothing after removal.
	require.Equal(t, []int{1, 2, 2, 1}, counts)
}

func TestListeners_FailureIsolation(t *testing.T) {
	reg := newTestRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	failures := reg.Failures(ctx)

	boom := errors.New("listener exploded")
	var mu sync.Mutex
	var healthyCalls int

	reg.AddListener(func([]block.Definition) error { return boom })
	reg.AddListener(func([]block.Definition) error { panic("listener panicked") })
	reg.AddListener(func([]block.Definition) error {
		mu.Lock()
		healthyCalls++
		mu.Unlock()
		return nil
	})

	require.NoError(t, reg.Register(validDef("message.text")), "mutation survives listener failures")
	require.Equal(t, 1, reg.Len())

	mu.Lock()
	require.Equal(t, 1, healthyCalls, "later listeners still ran")
	mu.Unlock()

	seen := map[int]string{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-failures:
			seen[ev.Payload.Listener] = ev.Payload.Err.Error()
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for listener failure event")
		}
	}
	require.Contains(t, seen[0], "listener exploded")
	require.Contains(t, seen[1], "panic: listener panicked")
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	reg := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("message.block%d", i)
			_ = reg.Register(validDef(id))
			for j := 0; j < 50; j++ {
				_, _ = reg.Get(id)
				_ = reg.All()
				_ = reg.Stats()
				_ = reg.Filter(Query{Category: block.CategoryMessage})
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 8, reg.Len())
}

func idsOf(defs []block.Definition) []string {
	if len(defs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}
