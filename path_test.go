package govalid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	t.Run("NewPath is empty", func(t *testing.T) {
		p := NewPath()
		assert.Equal(t, 0, p.Len())
		_, ok := p.Leaf()
		assert.False(t, ok)
	})

	t.Run("Append and String", func(t *testing.T) {
		p := NewPath()
		p.Append(PropertyNode("address")).Append(PropertyNode("city"))
		assert.Equal(t, "address.city", p.String())
	})

	t.Run("indexed and keyed nodes do not get a leading dot", func(t *testing.T) {
		p := NewPath()
		p.Append(PropertyNode("tags")).Append(IndexNode(2))
		assert.Equal(t, "tags[2]", p.String())

		p2 := NewPath()
		p2.Append(PropertyNode("labels")).Append(KeyNode("env"))
		assert.Equal(t, "labels[env]", p2.String())
	})

	t.Run("Copy is independent of the original", func(t *testing.T) {
		p := NewPath()
		p.Append(PropertyNode("a"))
		cp := p.Copy()
		cp.Append(PropertyNode("b"))

		assert.Equal(t, 1, p.Len())
		assert.Equal(t, 2, cp.Len())
	})

	t.Run("RemoveLeaf pops the last node", func(t *testing.T) {
		p := NewPath()
		p.Append(PropertyNode("a")).Append(PropertyNode("b"))
		leaf := p.RemoveLeaf()
		assert.Equal(t, "b", leaf.Name)
		assert.Equal(t, 1, p.Len())
	})

	t.Run("RemoveLeaf panics on empty path", func(t *testing.T) {
		p := NewPath()
		assert.Panics(t, func() { p.RemoveLeaf() })
	})

	t.Run("ContainerElementNode renders index, key, or bare form", func(t *testing.T) {
		indexed := ContainerElementNode("values", "slice", 0)
		indexed.Index, indexed.HasIndex = 3, true
		assert.Equal(t, "values[3]", indexed.String())

		keyed := ContainerElementNode("values", "map", 1)
		keyed.Key, keyed.HasKey = "k", true
		assert.Equal(t, "values[k]", keyed.String())

		bare := ContainerElementNode("values", "pointer", 0)
		assert.Equal(t, "values.<pointer value>", bare.String())
	})

	t.Run("BeanNode and ReturnValueNode render the reference-style markers", func(t *testing.T) {
		require.Equal(t, "<bean>", BeanNode().String())
		require.Equal(t, "<return value>", ReturnValueNode().String())
		require.Equal(t, "<cross-parameter>", CrossParameterNode().String())
	})
}
