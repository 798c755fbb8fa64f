// Package alias maps historical block ids to their canonical form.
//
// Bots exported by older builder versions reference blocks by short legacy
// ids ("text", "if", "carousel"). The table keeps those spellings working
// without ever letting two spellings of the same block register twice.
package alias

import (
	"sort"

	"github.com/botcanvas/blockcore/internal/log"
)

// Table is an immutable two-way mapping between legacy spellings and
// canonical block ids. Both directions are materialized at construction, so
// a Table is safe for unsynchronized concurrent reads.
type Table struct {
	forward map[string]string   // legacy spelling -> canonical id
	reverse map[string][]string // canonical id -> sorted legacy spellings
}

// New builds a table from a legacy-to-canonical map. The input map is copied;
// later mutation of it does not affect the table.
func New(forward map[string]string) *Table {
	t := &Table{
		forward: make(map[string]string, len(forward)),
		reverse: make(map[string][]string),
	}
	for legacy, canonical := range forward {
		if legacy == "" || canonical == "" {
			continue
		}
		t.forward[legacy] = canonical
		t.reverse[canonical] = append(t.reverse[canonical], legacy)
	}
	for canonical := range t.reverse {
		sort.Strings(t.reverse[canonical])
	}
	return t
}

// Default returns the built-in legacy table covering ids used by bot exports
// prior to the namespaced id scheme.
func Default() *Table {
	return New(map[string]string{
		// Messages
		"text":          "message.text",
		"message":       "message.text",
		"image":         "message.image",
		"audio":         "message.audio",
		"video":         "message.video",
		"file":          "message.file",
		"typing":        "message.typing",
		"quick_replies": "message.quick-reply",
		"quickreply":    "message.quick-reply",

		// Input
		"user_input": "input.text",
		"free_input": "input.text",
		"email":      "input.email",
		"phone":      "input.phone",
		"number":     "input.number",
		"date":       "input.date",

		// Logic
		"if":        "logic.condition",
		"condition": "logic.condition",
		"random":    "logic.random",
		"goto":      "logic.jump",
		"jump":      "logic.jump",
		"delay":     "logic.delay",
		"ab_test":   "logic.random",

		// Actions
		"set_variable": "action.set-variable",
		"set-attr":     "action.set-variable",
		"api":          "action.http-request",
		"webhook":      "action.http-request",
		"json_api":     "action.http-request",
		"handover":     "action.handover",
		"email_notify": "action.send-email",

		// Integrations
		"zapier":     "integration.zapier",
		"dialogflow": "integration.nlu",
		"nlp":        "integration.nlu",

		// Layout
		"card":     "layout.card",
		"generic":  "layout.card",
		"carousel": "layout.carousel",
		"list":     "layout.list",
		"button":   "layout.button",
	})
}

// Resolve maps id to its canonical form. Canonical ids resolve to themselves.
// The second return is false when the id is neither canonical-known nor a
// legacy spelling; callers that need pass-through behavior use Normalize.
func (t *Table) Resolve(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if canonical, ok := t.forward[id]; ok {
		return canonical, true
	}
	if _, ok := t.reverse[id]; ok {
		return id, true
	}
	return "", false
}

// Normalize maps a legacy spelling to its canonical id and passes every
// other id through unchanged. Unknown ids are logged at debug level; lookup
// paths that must distinguish unknown from canonical use Resolve.
func (t *Table) Normalize(id string) string {
	if canonical, ok := t.forward[id]; ok {
		return canonical
	}
	if _, ok := t.reverse[id]; !ok && id != "" {
		log.Debug(log.CatAlias, "id not in legacy table, passing through", "id", id)
	}
	return id
}

// SpellingsFor returns every legacy spelling of a canonical id, sorted.
// Returns an empty slice when none exist.
func (t *Table) SpellingsFor(canonical string) []string {
	spellings := t.reverse[canonical]
	out := make([]string, len(spellings))
	copy(out, spellings)
	return out
}

// Known reports whether id appears in the table, on either side.
func (t *Table) Known(id string) bool {
	_, ok := t.Resolve(id)
	return ok
}

// Canonicals returns every canonical id with at least one legacy spelling,
// sorted.
func (t *Table) Canonicals() []string {
	out := make([]string, 0, len(t.reverse))
	for canonical := range t.reverse {
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of legacy spellings in the table.
func (t *Table) Len() int {
	return len(t.forward)
}
