package govalid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticSequences map[string][]string

func (s staticSequences) SequenceOf(kind string) ([]string, bool) {
	seq, ok := s[kind]
	return seq, ok
}

func TestGroupComputerCompute(t *testing.T) {
	t.Run("no requested groups defaults to Default", func(t *testing.T) {
		gc := NewGroupComputer(nil)
		out := gc.Compute(nil)
		assert.Equal(t, []Group{Group(DefaultGroup)}, out.Simple)
		assert.Empty(t, out.Sequences)
	})

	t.Run("duplicate simple groups are deduplicated, order preserved", func(t *testing.T) {
		gc := NewGroupComputer(nil)
		out := gc.Compute([]string{"A", "B", "A"})
		assert.Equal(t, []Group{"A", "B"}, out.Simple)
	})

	t.Run("a registered sequence kind expands in place", func(t *testing.T) {
		gc := NewGroupComputer(staticSequences{"Checkout": {"Address", "Payment"}})
		out := gc.Compute([]string{"Basic", "Checkout"})
		assert.Equal(t, []Group{"Basic"}, out.Simple)
		assert.Equal(t, [][]Group{{"Address", "Payment"}}, out.Sequences)
	})

	t.Run("no sequences source treats everything as simple", func(t *testing.T) {
		gc := NewGroupComputer(nil)
		out := gc.Compute([]string{"Checkout"})
		assert.Equal(t, []Group{"Checkout"}, out.Simple)
		assert.Empty(t, out.Sequences)
	})
}

func TestRedirectDefault(t *testing.T) {
	t.Run("no bean sequence leaves groups untouched", func(t *testing.T) {
		out := RedirectDefault([]Group{Group(DefaultGroup), "Extra"}, nil)
		assert.Equal(t, []Group{Group(DefaultGroup), "Extra"}, out)
	})

	t.Run("Default expands to the bean's declared sequence in place", func(t *testing.T) {
		out := RedirectDefault([]Group{Group(DefaultGroup), "Extra"}, []string{"First", "Second"})
		assert.Equal(t, []Group{"First", "Second", "Extra"}, out)
	})

	t.Run("non-Default groups pass through unchanged alongside a redirected Default", func(t *testing.T) {
		out := RedirectDefault([]Group{"Extra", Group(DefaultGroup)}, []string{"First"})
		assert.Equal(t, []Group{"Extra", "First"}, out)
	})
}
