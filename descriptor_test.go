package govalid

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstraintDescriptor(t *testing.T) {
	t.Run("empty groups normalize to Default", func(t *testing.T) {
		cd, err := NewConstraintDescriptor("NotNull", nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{DefaultGroup}, cd.Groups)
	})

	t.Run("duplicate groups are deduplicated", func(t *testing.T) {
		cd, err := NewConstraintDescriptor("NotNull", nil, []string{"A", "B", "A"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, cd.Groups)
	})

	t.Run("Unwrap and Skip together is a definition error", func(t *testing.T) {
		_, err := NewConstraintDescriptor("NotNull", nil, nil, map[string]bool{PayloadUnwrap: true, PayloadSkip: true})
		require.Error(t, err)
		var defErr *DefinitionError
		assert.ErrorAs(t, err, &defErr)
	})

	t.Run("HasGroup", func(t *testing.T) {
		cd, err := NewConstraintDescriptor("NotNull", nil, []string{"Strict"}, nil)
		require.NoError(t, err)
		assert.True(t, cd.HasGroup("Strict"))
		assert.False(t, cd.HasGroup("Default"))
	})
}

type sampleBean struct {
	Name string
}

func TestDescriptorManager(t *testing.T) {
	t.Run("builds once and caches per type", func(t *testing.T) {
		calls := 0
		dm := NewDescriptorManager(func(t reflect.Type) (*BeanDescriptor, error) {
			calls++
			return &BeanDescriptor{Type: t, Properties: map[string]*PropertyDescriptor{}}, nil
		}, nil)

		d1, err := dm.GetBeanDescriptor(reflect.TypeOf(sampleBean{}))
		require.NoError(t, err)
		d2, err := dm.GetBeanDescriptor(reflect.TypeOf(&sampleBean{}))
		require.NoError(t, err)

		assert.Same(t, d1, d2)
		assert.Equal(t, 1, calls)
	})

	t.Run("build error is propagated and not cached", func(t *testing.T) {
		calls := 0
		dm := NewDescriptorManager(func(t reflect.Type) (*BeanDescriptor, error) {
			calls++
			return nil, ErrNilDescriptor
		}, nil)

		_, err := dm.GetBeanDescriptor(reflect.TypeOf(sampleBean{}))
		require.Error(t, err)
		_, err = dm.GetBeanDescriptor(reflect.TypeOf(sampleBean{}))
		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestConstrainedProperties(t *testing.T) {
	plain := newPropertyDescriptor("Plain", reflect.TypeOf(""))
	withConstraint := newPropertyDescriptor("WithConstraint", reflect.TypeOf(""))
	cd, _ := NewConstraintDescriptor("NotBlank", nil, nil, nil)
	withConstraint.Constraints = append(withConstraint.Constraints, cd)
	cascaded := newPropertyDescriptor("Cascaded", reflect.TypeOf(sampleBean{}))
	cascaded.IsCascade = true

	bd := &BeanDescriptor{Properties: map[string]*PropertyDescriptor{
		"Plain":          plain,
		"WithConstraint": withConstraint,
		"Cascaded":       cascaded,
	}}

	names := map[string]bool{}
	for _, p := range bd.ConstrainedProperties() {
		names[p.Name] = true
	}
	assert.False(t, names["Plain"])
	assert.True(t, names["WithConstraint"])
	assert.True(t, names["Cascaded"])
}
