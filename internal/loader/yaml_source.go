package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/log"
)

// blockFile is the on-disk schema of a definition file: a document with a
// top-level "blocks" list. Anything that does not decode into this shape is
// rejected at the boundary instead of registered half-formed.
type blockFile struct {
	Blocks []block.Definition `yaml:"blocks"`
}

// DecodeBlocks parses a definition document. Entries missing the structural
// minimum (id and type) are skipped with a warning naming the origin and
// index; everything else is normalized and returned.
func DecodeBlocks(data []byte, origin string) ([]block.Definition, []string) {
	var file blockFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, []string{fmt.Sprintf("%s: not a valid block definition file: %v", origin, err)}
	}

	var defs []block.Definition
	var warnings []string
	for i, def := range file.Blocks {
		def = def.Normalized()
		if def.ID == "" || def.Type == "" {
			warnings = append(warnings, fmt.Sprintf("%s: block %d missing id or type, skipped", origin, i))
			continue
		}
		defs = append(defs, def)
	}
	return defs, warnings
}

// YAMLDirSource loads *.yaml / *.yml definition files from a directory.
type YAMLDirSource struct {
	dir      string
	warnings []string
}

// NewYAMLDirSource creates a source for one definition directory.
func NewYAMLDirSource(dir string) *YAMLDirSource {
	return &YAMLDirSource{dir: dir}
}

var (
	_ Source = (*YAMLDirSource)(nil)
	_ Warner = (*YAMLDirSource)(nil)
)

func (s *YAMLDirSource) Name() string {
	return fmt.Sprintf("dir:%s", s.dir)
}

// TakeWarnings drains the skips recorded by the last Load.
func (s *YAMLDirSource) TakeWarnings() []string {
	w := s.warnings
	s.warnings = nil
	return w
}

// Load reads every definition file in the directory. A missing directory is
// not an error, just no definitions. Unreadable or malformed files are
// skipped with a warning; a directory read failure is the only hard error.
func (s *YAMLDirSource) Load(ctx context.Context) ([]block.Definition, error) {
	s.warnings = nil

	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking definition directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("definition path is not a directory: %s", s.dir)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading definition directory: %w", err)
	}

	// Deterministic file order regardless of readdir order.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var defs []block.Definition
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path) //nolint:gosec // G304: user-configured definition directory
		if err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("%s: unreadable, skipped: %v", name, err))
			log.Warn(log.CatLoader, "definition file unreadable, skipped", "path", path, "error", err)
			continue
		}

		fileDefs, warnings := DecodeBlocks(data, name)
		for _, w := range warnings {
			log.Warn(log.CatLoader, "definition skipped", "detail", w)
		}
		s.warnings = append(s.warnings, warnings...)
		defs = append(defs, fileDefs...)
	}
	return defs, nil
}
