package testutil

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Builder accumulates block rows and inserts them into a catalog database.
//
//	path, db := testutil.NewCatalogDB(t, t.TempDir())
//	testutil.NewBuilder(t, db).
//		WithBlock("message.text", testutil.Category("message")).
//		WithBlock("logic.condition", testutil.DependsOn("message.text")).
//		Build()
type Builder struct {
	t      *testing.T
	db     *sql.DB
	blocks []blockData
}

// NewBuilder creates a builder for the given catalog database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithBlock adds a block with optional configuration.
func (b *Builder) WithBlock(id string, opts ...BlockOption) *Builder {
	blk := defaultBlock(id)
	for _, opt := range opts {
		opt(&blk)
	}
	b.blocks = append(b.blocks, blk)
	return b
}

// Build inserts all accumulated blocks into the database.
func (b *Builder) Build() {
	b.t.Helper()
	for _, blk := range b.blocks {
		b.insertBlock(blk)
	}
}

func (b *Builder) insertBlock(blk blockData) {
	b.t.Helper()
	_, err := b.db.Exec(
		`INSERT INTO blocks (id, type, display_name, category, color, version, description, contexts, tags, usage_hints, aliases, dependencies, fields, optional, experimental)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		blk.id, blk.blockType, blk.displayName, blk.category, blk.color,
		blk.version, blk.description,
		b.jsonList(blk.contexts), b.jsonList(blk.tags), b.jsonList(blk.usageHints),
		b.jsonList(blk.aliases), b.jsonList(blk.dependencies), blk.fieldsJSON,
		boolToInt(blk.optional), boolToInt(blk.experimental),
	)
	require.NoError(b.t, err)
}

func (b *Builder) jsonList(values []string) string {
	b.t.Helper()
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	require.NoError(b.t, err)
	return string(raw)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
