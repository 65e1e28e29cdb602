package govalid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConstraint(t *testing.T, kind string, message string) *ConstraintDescriptor {
	t.Helper()
	cd, err := NewConstraintDescriptor(kind, map[string]any{"message": message}, nil, nil)
	require.NoError(t, err)
	return cd
}

func TestConstraintValidatorContextDefaultTemplate(t *testing.T) {
	c := newTestConstraint(t, "NotNull", "{NotNull.message}")
	ctx := newConstraintValidatorContext(c, NewPath().Append(PropertyNode("name")), nil)

	got, err := ctx.collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "{NotNull.message}", got[0].Template)
	assert.Equal(t, "name", got[0].Path.String())
}

// Disabling the default without adding a custom violation is a collaborator
// failure (spec.md §4.6), not a silent empty result.
func TestConstraintValidatorContextDisableDefaultWithoutCustomViolationFails(t *testing.T) {
	c := newTestConstraint(t, "NotNull", "{NotNull.message}")
	ctx := newConstraintValidatorContext(c, NewPath(), nil)
	ctx.DisableDefaultConstraintViolation()

	got, err := ctx.collect()
	assert.ErrorIs(t, err, ErrNoViolationReported)
	assert.Empty(t, got)
}

func TestConstraintValidatorContextDisableDefaultWithCustomViolationSucceeds(t *testing.T) {
	c := newTestConstraint(t, "NotNull", "{NotNull.message}")
	ctx := newConstraintValidatorContext(c, NewPath(), nil)
	ctx.DisableDefaultConstraintViolation()
	ctx.BuildConstraintViolationWithTemplate("custom").AddConstraintViolation()

	got, err := ctx.collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "custom", got[0].Template)
}

func TestBuildConstraintViolationWithTemplate(t *testing.T) {
	t.Run("property node chain", func(t *testing.T) {
		c := newTestConstraint(t, "Size", "{Size.message}")
		ctx := newConstraintValidatorContext(c, NewPath().Append(PropertyNode("address")), nil)
		ctx.DisableDefaultConstraintViolation()

		ctx.BuildConstraintViolationWithTemplate("custom").AddPropertyNode("city").AddConstraintViolation()

		got, err := ctx.collect()
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "custom", got[0].Template)
		assert.Equal(t, "address.city", got[0].Path.String())
	})

	t.Run("container element node with index", func(t *testing.T) {
		c := newTestConstraint(t, "NotBlank", "{NotBlank.message}")
		ctx := newConstraintValidatorContext(c, NewPath().Append(PropertyNode("tags")), nil)
		ctx.DisableDefaultConstraintViolation()

		ctx.BuildConstraintViolationWithTemplate("blank entry").
			AddContainerElementNode("tags").AtIndex(2).
			AddConstraintViolation()

		got, err := ctx.collect()
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "tags.tags[2]", got[0].Path.String())
	})

	t.Run("multiple violations accumulate alongside the default", func(t *testing.T) {
		c := newTestConstraint(t, "Custom", "{Custom.message}")
		ctx := newConstraintValidatorContext(c, NewPath(), nil)

		ctx.BuildConstraintViolationWithTemplate("extra one").AddConstraintViolation()
		ctx.BuildConstraintViolationWithTemplate("extra two").AddConstraintViolation()

		got, err := ctx.collect()
		require.NoError(t, err)
		require.Len(t, got, 3)
	})
}
