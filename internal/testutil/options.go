package testutil

import "strings"

// blockData holds all data for a block row to be inserted.
type blockData struct {
	id           string
	blockType    string
	displayName  string
	category     string
	color        string
	version      string
	description  string
	contexts     []string
	tags         []string
	usageHints   []string
	aliases      []string
	dependencies []string
	fieldsJSON   string
	optional     bool
	experimental bool
}

// defaultBlock returns a blockData with sensible defaults. The category is
// derived from the id prefix, so "message.text" lands in "message".
func defaultBlock(id string) blockData {
	category := ""
	if dot := strings.Index(id, "."); dot > 0 {
		category = id[:dot]
	}
	return blockData{
		id:          id,
		blockType:   id, // Default type is the ID
		displayName: id,
		category:    category,
		color:       "#4A90D9",
		version:     "1.0.0",
		contexts:    []string{"flow"},
		fieldsJSON:  "[]",
	}
}

// BlockOption configures a block during builder setup.
type BlockOption func(*blockData)

// BlockType sets the block type.
func BlockType(t string) BlockOption {
	return func(b *blockData) { b.blockType = t }
}

// DisplayName sets the palette display name.
func DisplayName(name string) BlockOption {
	return func(b *blockData) { b.displayName = name }
}

// Category sets the palette category.
func Category(c string) BlockOption {
	return func(b *blockData) { b.category = c }
}

// Color sets the canvas color.
func Color(c string) BlockOption {
	return func(b *blockData) { b.color = c }
}

// Version sets the block version string.
func Version(v string) BlockOption {
	return func(b *blockData) { b.version = v }
}

// Description sets the block description.
func Description(desc string) BlockOption {
	return func(b *blockData) { b.description = desc }
}

// Contexts replaces the canvas contexts the block may appear in.
func Contexts(contexts ...string) BlockOption {
	return func(b *blockData) { b.contexts = contexts }
}

// Tags adds search tags to the block.
func Tags(tags ...string) BlockOption {
	return func(b *blockData) { b.tags = append(b.tags, tags...) }
}

// UsageHints adds usage hints to the block.
func UsageHints(hints ...string) BlockOption {
	return func(b *blockData) { b.usageHints = append(b.usageHints, hints...) }
}

// Aliases adds legacy identifiers that resolve to this block.
func Aliases(aliases ...string) BlockOption {
	return func(b *blockData) { b.aliases = append(b.aliases, aliases...) }
}

// DependsOn adds block dependencies.
func DependsOn(ids ...string) BlockOption {
	return func(b *blockData) { b.dependencies = append(b.dependencies, ids...) }
}

// FieldsJSON sets the raw JSON fields column.
func FieldsJSON(raw string) BlockOption {
	return func(b *blockData) { b.fieldsJSON = raw }
}

// Optional marks the block as optional.
func Optional() BlockOption {
	return func(b *blockData) { b.optional = true }
}

// Experimental marks the block as experimental.
func Experimental() BlockOption {
	return func(b *blockData) { b.experimental = true }
}
