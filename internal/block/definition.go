// Package block holds the typed block definition model shared by every
// layer: sources decode into it, the resolver orders it, the registry stores
// it, and the CLI prints it. There is no duck typing at the ingestion
// boundary; anything that cannot be expressed as a Definition does not enter
// the system.
package block

import (
	"strings"
)

// Definition describes one palette block of the bot builder.
//
// The struct mirrors the on-disk YAML schema and the catalog column set, so
// the loader can validate block metadata before the registry accepts it.
type Definition struct {
	// ID is the canonical identifier and the registry key, e.g. "logic.condition".
	ID string `json:"id" yaml:"id"`

	// Type is the canvas node type tag consumed by the renderer and executor.
	Type string `json:"type" yaml:"type"`

	DisplayName string   `json:"display_name" yaml:"display_name"`
	Category    Category `json:"category" yaml:"category"`

	// Color is the palette color token shown on the canvas, e.g. "#4A90D9".
	Color string `json:"color" yaml:"color"`

	// Contexts lists the canvases this block may be dropped on.
	Contexts []CanvasContext `json:"contexts" yaml:"contexts"`

	// Version is a semantic version tag; validated when non-empty.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	UsageHints  []string `json:"usage_hints,omitempty" yaml:"usage_hints,omitempty"`

	// Aliases are historical spellings accepted on lookup, beyond the
	// built-in legacy table.
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Dependencies names blocks that must be registered before this one.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Fields is the form schema for the block's configurable properties.
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Optional blocks fail registration softly: a warning, not an error.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`

	// Experimental blocks are hidden from default filtered listings.
	Experimental bool `json:"experimental,omitempty" yaml:"experimental,omitempty"`
}

// FieldKind enumerates the property editor widgets a block field may use.
type FieldKind string

const (
	FieldText       FieldKind = "text"
	FieldNumber     FieldKind = "number"
	FieldToggle     FieldKind = "toggle"
	FieldSelect     FieldKind = "select"
	FieldVariable   FieldKind = "variable"   // References a conversation variable
	FieldExpression FieldKind = "expression" // Evaluated expression, e.g. a condition
)

// Valid reports whether k is a known field kind.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldText, FieldNumber, FieldToggle, FieldSelect, FieldVariable, FieldExpression:
		return true
	default:
		return false
	}
}

// Field is one entry of a block's property form schema.
type Field struct {
	Name     string    `json:"name" yaml:"name"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Default  string    `json:"default,omitempty" yaml:"default,omitempty"`

	// Options enumerates the choices of a select field.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Normalized returns a copy with whitespace trimmed from every identifier
// carrying field. Slices are copied, never shared.
func (d Definition) Normalized() Definition {
	clone := d.Clone()
	clone.ID = strings.TrimSpace(clone.ID)
	clone.Type = strings.TrimSpace(clone.Type)
	clone.DisplayName = strings.TrimSpace(clone.DisplayName)
	clone.Color = strings.TrimSpace(clone.Color)
	clone.Version = strings.TrimSpace(clone.Version)
	for i, a := range clone.Aliases {
		clone.Aliases[i] = strings.TrimSpace(a)
	}
	for i, dep := range clone.Dependencies {
		clone.Dependencies[i] = strings.TrimSpace(dep)
	}
	return clone
}

// Clone returns a deep copy. Lookups and listener notifications hand out
// clones so callers can never mutate registry internals.
func (d Definition) Clone() Definition {
	clone := d
	clone.Contexts = append([]CanvasContext(nil), d.Contexts...)
	clone.Tags = append([]string(nil), d.Tags...)
	clone.UsageHints = append([]string(nil), d.UsageHints...)
	clone.Aliases = append([]string(nil), d.Aliases...)
	clone.Dependencies = append([]string(nil), d.Dependencies...)
	if d.Fields != nil {
		clone.Fields = make([]Field, len(d.Fields))
		for i, f := range d.Fields {
			fc := f
			fc.Options = append([]string(nil), f.Options...)
			clone.Fields[i] = fc
		}
	}
	return clone
}

// Complete reports whether the structural identity fields are all present.
// The validating phase re-checks this for cache-admitted definitions.
func (d Definition) Complete() bool {
	return strings.TrimSpace(d.ID) != "" &&
		strings.TrimSpace(d.Type) != "" &&
		strings.TrimSpace(d.DisplayName) != ""
}
