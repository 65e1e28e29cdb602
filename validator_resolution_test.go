package govalid

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape interface{ Area() float64 }
type square struct{ side float64 }

func (s square) Area() float64 { return s.side * s.side }

func TestResolveAnnotatedElement(t *testing.T) {
	t.Run("exact type match wins", func(t *testing.T) {
		r := NewValidatorRegistry()
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf(""), New: nil}))

		info, err := r.ResolveAnnotatedElement("K", reflect.TypeOf(""))
		require.NoError(t, err)
		assert.Equal(t, reflect.TypeOf(""), info.ValidatedType)
	})

	t.Run("no validator for type is an error", func(t *testing.T) {
		r := NewValidatorRegistry()
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf(0)}))

		_, err := r.ResolveAnnotatedElement("K", reflect.TypeOf(""))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoValidatorForType)
	})

	t.Run("concrete type is more specific than an interface it implements", func(t *testing.T) {
		r := NewValidatorRegistry()
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf((*shape)(nil)).Elem()}))
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf(square{})}))

		info, err := r.ResolveAnnotatedElement("K", reflect.TypeOf(square{}))
		require.NoError(t, err)
		assert.Equal(t, reflect.TypeOf(square{}), info.ValidatedType)
	})

	t.Run("two validators for the exact same type is ambiguous", func(t *testing.T) {
		r := NewValidatorRegistry()
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf(int64(0))}))
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf(int64(0))}))

		_, err := r.ResolveAnnotatedElement("K", reflect.TypeOf(int64(0)))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAmbiguousValidator)
	})
}

func TestResolveCrossParameter(t *testing.T) {
	t.Run("requires exactly one PARAMETERS-targeting validator", func(t *testing.T) {
		r := NewValidatorRegistry()
		require.NoError(t, r.Register(ValidatorInfo{
			Kind:             "ScriptAssert",
			ValidatedType:    reflect.TypeOf([]any{}),
			SupportedTargets: map[ValidationTarget]bool{TargetParameters: true},
		}))

		info, err := r.ResolveCrossParameter("ScriptAssert")
		require.NoError(t, err)
		assert.Equal(t, "ScriptAssert", info.Kind)
	})

	t.Run("zero PARAMETERS validators is an error", func(t *testing.T) {
		r := NewValidatorRegistry()
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf("")}))

		_, err := r.ResolveCrossParameter("K")
		require.Error(t, err)
	})

	t.Run("more than one PARAMETERS validator is an error", func(t *testing.T) {
		r := NewValidatorRegistry()
		targets := map[ValidationTarget]bool{TargetParameters: true}
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf([]any{}), SupportedTargets: targets}))
		require.NoError(t, r.Register(ValidatorInfo{Kind: "K", ValidatedType: reflect.TypeOf([]any{}), SupportedTargets: targets}))

		_, err := r.ResolveCrossParameter("K")
		require.Error(t, err)
	})
}
