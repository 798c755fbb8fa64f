package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories() {
		require.True(t, c.Valid(), "category %q should be valid", c)
	}
	require.False(t, Category("widget").Valid())
	require.False(t, Category("").Valid())
}

func TestRequiredCategories_AreValid(t *testing.T) {
	for _, c := range RequiredCategories() {
		require.True(t, c.Valid())
	}
}

func TestCanvasContext_Valid(t *testing.T) {
	for _, ctx := range CanvasContexts() {
		require.True(t, ctx.Valid(), "context %q should be valid", ctx)
	}
	require.False(t, CanvasContext("dashboard").Valid())
}

func TestFieldKind_Valid(t *testing.T) {
	for _, k := range []FieldKind{FieldText, FieldNumber, FieldToggle, FieldSelect, FieldVariable, FieldExpression} {
		require.True(t, k.Valid(), "kind %q should be valid", k)
	}
	require.False(t, FieldKind("slider").Valid())
}

func TestDefinition_Normalized(t *testing.T) {
	def := Definition{
		ID:           "  message.text ",
		Type:         "text_message\t",
		DisplayName:  " Text ",
		Color:        " #4A90D9 ",
		Version:      " 1.2.0 ",
		Aliases:      []string{" text "},
		Dependencies: []string{" action.set-variable "},
	}

	norm := def.Normalized()
	require.Equal(t, "message.text", norm.ID)
	require.Equal(t, "text_message", norm.Type)
	require.Equal(t, "Text", norm.DisplayName)
	require.Equal(t, "#4A90D9", norm.Color)
	require.Equal(t, "1.2.0", norm.Version)
	require.Equal(t, []string{"text"}, norm.Aliases)
	require.Equal(t, []string{"action.set-variable"}, norm.Dependencies)

	// Original untouched
	require.Equal(t, "  message.text ", def.ID)
	require.Equal(t, []string{" text "}, def.Aliases)
}

func TestDefinition_Clone_Isolation(t *testing.T) {
	def := Definition{
		ID:           "logic.condition",
		Type:         "condition",
		Contexts:     []CanvasContext{ContextFlow},
		Tags:         []string{"branch"},
		Dependencies: []string{"action.set-variable"},
		Fields: []Field{
			{Name: "operator", Kind: FieldSelect, Options: []string{"eq", "neq"}},
		},
	}

	clone := def.Clone()
	clone.Contexts[0] = ContextSubflow
	clone.Tags[0] = "changed"
	clone.Dependencies[0] = "changed"
	clone.Fields[0].Options[0] = "changed"

	require.Equal(t, ContextFlow, def.Contexts[0])
	require.Equal(t, "branch", def.Tags[0])
	require.Equal(t, "action.set-variable", def.Dependencies[0])
	require.Equal(t, "eq", def.Fields[0].Options[0])
}

func TestDefinition_Complete(t *testing.T) {
	require.True(t, Definition{ID: "a", Type: "b", DisplayName: "C"}.Complete())
	require.False(t, Definition{ID: "a", Type: "b"}.Complete())
	require.False(t, Definition{ID: " ", Type: "b", DisplayName: "C"}.Complete())
	require.False(t, Definition{}.Complete())
}
