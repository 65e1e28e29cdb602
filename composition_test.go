package govalid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allAnnotatedElementTargets(string) map[ValidationTarget]bool {
	return map[ValidationTarget]bool{TargetAnnotatedElement: true}
}

func newTestComposer(t *testing.T, defs *ConstraintDefinitionRegistry) *AnnotationComposer {
	t.Helper()
	c, err := NewAnnotationComposer(defs, allAnnotatedElementTargets, 16)
	require.NoError(t, err)
	return c
}

func TestAnnotationComposerCompose(t *testing.T) {
	t.Run("kind with no composing constraints yields nothing", func(t *testing.T) {
		defs := NewConstraintDefinitionRegistry()
		defs.Register(&ConstraintDefinition{Kind: "NotBlank"})
		c := newTestComposer(t, defs)

		out, err := c.Compose("NotBlank", nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("composing constraints inherit default attributes and overrides", func(t *testing.T) {
		defs := NewConstraintDefinitionRegistry()
		defs.Register(&ConstraintDefinition{Kind: "Min", DefaultAttributes: map[string]any{"value": 0}})
		defs.Register(&ConstraintDefinition{
			Kind:           "PositiveOrZero",
			ComposingKinds: []string{"Min"},
			Overrides:      []OverrideRule{{FromAttribute: "message", ToKind: "Min", ToIndex: -1, ToAttribute: "message"}},
		})
		c := newTestComposer(t, defs)

		out, err := c.Compose("PositiveOrZero", map[string]any{"message": "must not be negative"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Min", out[0].Constraint.Kind)
		assert.Equal(t, "must not be negative", out[0].Constraint.Attributes["message"])
		assert.Equal(t, 0, out[0].Constraint.Attributes["value"])
	})

	t.Run("ambiguous sole-occurrence override is a definition error", func(t *testing.T) {
		defs := NewConstraintDefinitionRegistry()
		defs.Register(&ConstraintDefinition{Kind: "Min"})
		defs.Register(&ConstraintDefinition{
			Kind:           "Range",
			ComposingKinds: []string{"Min", "Min"},
			Overrides:      []OverrideRule{{FromAttribute: "min", ToKind: "Min", ToIndex: -1}},
		})
		c := newTestComposer(t, defs)

		_, err := c.Compose("Range", map[string]any{"min": 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOverrideIndexAmbiguous)
	})

	t.Run("two overrides mapping to the same destination conflict", func(t *testing.T) {
		defs := NewConstraintDefinitionRegistry()
		defs.Register(&ConstraintDefinition{Kind: "Min"})
		defs.Register(&ConstraintDefinition{
			Kind:           "Range",
			ComposingKinds: []string{"Min"},
			Overrides: []OverrideRule{
				{FromAttribute: "a", ToKind: "Min", ToIndex: 0, ToAttribute: "value"},
				{FromAttribute: "b", ToKind: "Min", ToIndex: 0, ToAttribute: "value"},
			},
		})
		c := newTestComposer(t, defs)

		_, err := c.Compose("Range", map[string]any{"a": 1, "b": 2})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOverrideTargetConflict)
	})

	t.Run("disjoint targets between composed and composing is a definition error", func(t *testing.T) {
		defs := NewConstraintDefinitionRegistry()
		defs.Register(&ConstraintDefinition{Kind: "CrossOnly"})
		defs.Register(&ConstraintDefinition{Kind: "Outer", ComposingKinds: []string{"CrossOnly"}})

		targets := func(kind string) map[ValidationTarget]bool {
			if kind == "CrossOnly" {
				return map[ValidationTarget]bool{TargetParameters: true}
			}
			return map[ValidationTarget]bool{TargetAnnotatedElement: true}
		}
		c, err := NewAnnotationComposer(defs, targets, 16)
		require.NoError(t, err)

		_, err = c.Compose("Outer", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTargetsDisjoint)
	})

	t.Run("shape is cached across repeated Compose calls", func(t *testing.T) {
		builds := 0
		defs := NewConstraintDefinitionRegistry()
		defs.Register(&ConstraintDefinition{Kind: "Min"})
		defs.Register(&ConstraintDefinition{Kind: "Outer", ComposingKinds: []string{"Min"}})

		targets := func(kind string) map[ValidationTarget]bool {
			builds++
			return map[ValidationTarget]bool{TargetAnnotatedElement: true}
		}
		c, err := NewAnnotationComposer(defs, targets, 16)
		require.NoError(t, err)

		_, err = c.Compose("Outer", nil)
		require.NoError(t, err)
		firstCallBuilds := builds

		_, err = c.Compose("Outer", nil)
		require.NoError(t, err)
		assert.Equal(t, firstCallBuilds, builds, "second Compose should hit the shape cache")
	})
}
