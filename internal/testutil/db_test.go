package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCatalogDB_CreatesSchema(t *testing.T) {
	path, db := NewCatalogDB(t, t.TempDir())

	// The database file exists on disk so catalog sources can open it.
	_, err := os.Stat(path)
	require.NoError(t, err)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='blocks'`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "expected blocks table")
}

func TestNewCatalogDB_BlockColumns(t *testing.T) {
	_, db := NewCatalogDB(t, t.TempDir())

	_, err := db.Exec(`INSERT INTO blocks
		(id, type, display_name, category, color, version, description, contexts, tags, usage_hints, aliases, dependencies, fields, optional, experimental)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"message.text", "message.text", "Text Message", "message", "#2D9CDB",
		"1.0.0", "Send a message", `["flow"]`, `["text"]`, `[]`, `["say"]`, `[]`, `[]`, 0, 0)
	require.NoError(t, err)

	var id, displayName, contexts string
	var optional int
	err = db.QueryRow(`SELECT id, display_name, contexts, optional FROM blocks WHERE id = ?`, "message.text").
		Scan(&id, &displayName, &contexts, &optional)
	require.NoError(t, err)
	require.Equal(t, "message.text", id)
	require.Equal(t, "Text Message", displayName)
	require.JSONEq(t, `["flow"]`, contexts)
	require.Equal(t, 0, optional)
}

func TestNewCatalogDB_ListColumnsDefaultEmpty(t *testing.T) {
	_, db := NewCatalogDB(t, t.TempDir())

	_, err := db.Exec(`INSERT INTO blocks (id, type) VALUES (?, ?)`, "input.text", "input.text")
	require.NoError(t, err)

	var contexts, deps string
	err = db.QueryRow(`SELECT contexts, dependencies FROM blocks WHERE id = ?`, "input.text").
		Scan(&contexts, &deps)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, contexts)
	require.JSONEq(t, `[]`, deps)
}
