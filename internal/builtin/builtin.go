// Package builtin ships the default block palette compiled into the binary.
//
// The palette is the floor the builder can always stand on: even with no
// definition directories and no catalogs configured, every category a bot
// needs (messages, input, logic) is present. One YAML file per category.
package builtin

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/loader"
	"github.com/botcanvas/blockcore/internal/log"
)

const paletteDir = "palette"

// Source returns the loader source serving the embedded palette.
func Source() loader.Source {
	return paletteSource{}
}

type paletteSource struct{}

var _ loader.Source = paletteSource{}

func (paletteSource) Name() string { return "builtin" }

// Load decodes every embedded palette file. Unlike external sources, a
// decode warning here is a packaging defect and fails the whole source so
// it cannot ship unnoticed.
func (paletteSource) Load(ctx context.Context) ([]block.Definition, error) {
	entries, err := fs.ReadDir(paletteFiles, paletteDir)
	if err != nil {
		return nil, fmt.Errorf("reading embedded palette: %w", err)
	}

	var defs []block.Definition
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// fs.ReadDir returns entries sorted by name, so palette order is
		// stable across builds.
		fsPath := path.Join(paletteDir, entry.Name())
		data, err := fs.ReadFile(paletteFiles, fsPath)
		if err != nil {
			return nil, fmt.Errorf("reading embedded palette file %s: %w", fsPath, err)
		}

		fileDefs, warnings := loader.DecodeBlocks(data, entry.Name())
		if len(warnings) > 0 {
			return nil, fmt.Errorf("embedded palette file %s is invalid: %s", entry.Name(), warnings[0])
		}
		defs = append(defs, fileDefs...)
	}

	log.Debug(log.CatLoader, "builtin palette decoded", "blocks", len(defs))
	return defs, nil
}
