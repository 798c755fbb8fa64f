package loader

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/log"
)

// catalogColumns is the list of columns selected for catalog queries.
const catalogColumns = `id, type, display_name, category, color, version, description,
	contexts, tags, usage_hints, aliases, dependencies, fields, optional, experimental`

// CatalogSource reads block definitions from a SQLite catalog file.
//
// Catalogs are a distribution format: a curated palette shipped as a single
// .db artifact. The file is opened read-only and nothing is ever written
// back, so registry state stays in memory only.
type CatalogSource struct {
	path     string
	warnings []string
}

// NewCatalogSource creates a source for one catalog file.
func NewCatalogSource(path string) *CatalogSource {
	return &CatalogSource{path: path}
}

var (
	_ Source = (*CatalogSource)(nil)
	_ Warner = (*CatalogSource)(nil)
)

func (s *CatalogSource) Name() string {
	return fmt.Sprintf("catalog:%s", s.path)
}

// TakeWarnings drains the skips recorded by the last Load.
func (s *CatalogSource) TakeWarnings() []string {
	w := s.warnings
	s.warnings = nil
	return w
}

// Load opens the catalog read-only and decodes every row of the blocks
// table. Rows that fail to scan or decode are skipped with a warning.
func (s *CatalogSource) Load(ctx context.Context) ([]block.Definition, error) {
	s.warnings = nil

	db, err := sql.Open("sqlite3", "file:"+s.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT `+catalogColumns+` FROM blocks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []block.Definition
	for rows.Next() {
		def, err := scanBlock(rows)
		if err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("%s: row skipped: %v", s.path, err))
			continue
		}
		def = def.Normalized()
		if def.ID == "" || def.Type == "" {
			s.warnings = append(s.warnings, fmt.Sprintf("%s: block missing id or type, skipped", s.path))
			continue
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog rows: %w", err)
	}

	log.Debug(log.CatLoader, "catalog read", "path", s.path, "blocks", len(defs))
	return defs, nil
}

// scanBlock scans a catalog row into a Definition. List-valued columns are
// stored as JSON text.
func scanBlock(scanner interface{ Scan(...any) error }) (block.Definition, error) {
	var def block.Definition
	var contexts, tags, usageHints, aliases, dependencies, fields string

	err := scanner.Scan(
		&def.ID, &def.Type, &def.DisplayName, &def.Category, &def.Color,
		&def.Version, &def.Description,
		&contexts, &tags, &usageHints, &aliases, &dependencies, &fields,
		&def.Optional, &def.Experimental,
	)
	if err != nil {
		return def, err
	}

	if err := decodeJSONList(contexts, &def.Contexts); err != nil {
		return def, fmt.Errorf("block %q: contexts: %w", def.ID, err)
	}
	if err := decodeJSONList(tags, &def.Tags); err != nil {
		return def, fmt.Errorf("block %q: tags: %w", def.ID, err)
	}
	if err := decodeJSONList(usageHints, &def.UsageHints); err != nil {
		return def, fmt.Errorf("block %q: usage_hints: %w", def.ID, err)
	}
	if err := decodeJSONList(aliases, &def.Aliases); err != nil {
		return def, fmt.Errorf("block %q: aliases: %w", def.ID, err)
	}
	if err := decodeJSONList(dependencies, &def.Dependencies); err != nil {
		return def, fmt.Errorf("block %q: dependencies: %w", def.ID, err)
	}
	if err := decodeJSONList(fields, &def.Fields); err != nil {
		return def, fmt.Errorf("block %q: fields: %w", def.ID, err)
	}
	return def, nil
}

func decodeJSONList[T any](raw string, out *T) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}
