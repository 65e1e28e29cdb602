package govalid

import (
	"fmt"
	"reflect"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// ResolveAnnotatedElement picks the single most-specific validator for kind
// given the static element type v, per spec.md §4.2.
func (r *ValidatorRegistry) ResolveAnnotatedElement(kind string, v reflect.Type) (ValidatorInfo, error) {
	infos := r.InfosFor(kind)

	v = boxPrimitive(v)

	type candidate struct {
		vt    reflect.Type
		infos []ValidatorInfo
	}
	byType := map[reflect.Type][]ValidatorInfo{}
	for _, info := range infos {
		if !info.SupportedTargets[TargetAnnotatedElement] {
			continue
		}
		if info.ValidatedType == nil || isSupertype(v, info.ValidatedType) {
			byType[info.ValidatedType] = append(byType[info.ValidatedType], info)
		}
	}

	if len(byType) == 0 {
		return ValidatorInfo{}, newUnexpectedTypeError(fmt.Errorf("%w: %s for constraint %s", ErrNoValidatorForType, v, kind))
	}

	candidates := make([]candidate, 0, len(byType))
	for vt, infos := range byType {
		candidates = append(candidates, candidate{vt: vt, infos: infos})
	}

	maximal := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		dominated := false
		for _, other := range candidates {
			if other.vt == c.vt {
				continue
			}
			if isMoreSpecific(other.vt, c.vt) {
				dominated = true
				break
			}
		}
		if !dominated {
			maximal = append(maximal, c)
		}
	}

	if len(maximal) != 1 || len(maximal[0].infos) != 1 {
		return ValidatorInfo{}, newUnexpectedTypeError(fmt.Errorf("%w: %s for constraint %s", ErrAmbiguousValidator, v, kind))
	}
	return maximal[0].infos[0], nil
}

// ResolveCrossParameter picks the single PARAMETERS-targeting validator for
// kind, requiring its validated type be assignable from []any (the Go
// analogue of Object[]).
func (r *ValidatorRegistry) ResolveCrossParameter(kind string) (ValidatorInfo, error) {
	var matches []ValidatorInfo
	for _, info := range r.InfosFor(kind) {
		if info.SupportedTargets[TargetParameters] {
			matches = append(matches, info)
		}
	}
	if len(matches) != 1 {
		return ValidatorInfo{}, newUnexpectedTypeError(fmt.Errorf("%w: constraint %s", ErrCrossParameterValidator, kind))
	}
	info := matches[0]
	objectArray := reflect.TypeOf([]any{})
	if info.ValidatedType != nil && info.ValidatedType != objectArray && info.ValidatedType != anyType {
		return ValidatorInfo{}, newUnexpectedTypeError(fmt.Errorf("%w: constraint %s", ErrValidatorTypeShape, kind))
	}
	return info, nil
}

// boxPrimitive is Go's stand-in for Java's primitive->wrapper promotion: Go
// has no unboxed/boxed duality, so it returns v unchanged. Named primitive
// types (e.g. `type Age int`) are not normalized to their underlying type.
func boxPrimitive(v reflect.Type) reflect.Type {
	return v
}

// isSupertype reports whether vt is a supertype of concrete type v: either
// an exact match, or an interface that v (or *v) implements. A nil v (the
// type of an untyped nil value) fits any interface type.
func isSupertype(v, vt reflect.Type) bool {
	if v == vt {
		return true
	}
	if v == nil {
		return vt.Kind() == reflect.Interface
	}
	if vt.Kind() == reflect.Interface {
		if v.Implements(vt) {
			return true
		}
		if v.Kind() != reflect.Ptr && reflect.PtrTo(v).Implements(vt) {
			return true
		}
	}
	return false
}

// isMoreSpecific reports whether a is a strictly more specific supertype
// match than b: a concrete type is more specific than any interface it
// satisfies; between two interfaces, the one requiring the strictly larger
// method set is more specific.
func isMoreSpecific(a, b reflect.Type) bool {
	if a == b {
		return false
	}
	if b.Kind() == reflect.Interface && a.Kind() != reflect.Interface {
		return isSupertype(a, b)
	}
	if a.Kind() == reflect.Interface && b.Kind() == reflect.Interface {
		return a.NumMethod() > b.NumMethod() && interfaceExtends(a, b)
	}
	return false
}

func interfaceExtends(a, b reflect.Type) bool {
	for i := 0; i < b.NumMethod(); i++ {
		m := b.Method(i)
		if _, ok := a.MethodByName(m.Name); !ok {
			return false
		}
	}
	return true
}
