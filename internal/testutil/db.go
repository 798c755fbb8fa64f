// Package testutil provides test helpers for building block catalog files.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"
)

// CatalogSchema is the blocks table of a distributable block catalog.
// List-valued columns hold JSON text.
const CatalogSchema = `
CREATE TABLE blocks (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	version TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	contexts TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	usage_hints TEXT NOT NULL DEFAULT '[]',
	aliases TEXT NOT NULL DEFAULT '[]',
	dependencies TEXT NOT NULL DEFAULT '[]',
	fields TEXT NOT NULL DEFAULT '[]',
	optional INTEGER NOT NULL DEFAULT 0,
	experimental INTEGER NOT NULL DEFAULT 0
);
`

// NewCatalogDB creates a catalog database file in dir with the blocks
// schema applied. Returns the file path and an open handle for seeding; the
// handle is closed at test cleanup.
func NewCatalogDB(t *testing.T, dir string) (string, *sql.DB) {
	t.Helper()

	path := filepath.Join(dir, "palette.db")
	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(CatalogSchema)
	require.NoError(t, err)
	return path, db
}
