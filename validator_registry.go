package govalid

import "reflect"

// ConstraintValidator is the core per-element validation hook (spec.md §6).
// Initialize receives the constraint's resolved attribute map; any error it
// returns is a definition error. IsValid receives the element's current
// value (nil-checked by the caller before cascading, but not before
// constraint application — validators must tolerate a nil/zero value) and
// the context used to report additional violations.
type ConstraintValidator interface {
	Initialize(attrs map[string]any) error
	IsValid(value any, ctx *ConstraintValidatorContext) bool
}

// CrossParameterValidator validates the full parameter array of an
// executable rather than a single element (ValidationTarget == PARAMETERS).
type CrossParameterValidator interface {
	Initialize(attrs map[string]any) error
	IsValidParameters(params []any, ctx *ConstraintValidatorContext) bool
}

// ValidatorInfo describes one registered ConstraintValidator implementation
// for a constraint kind: the static type it declares it validates, the
// targets it supports, and a factory to produce fresh instances (mirrors
// `ConstraintCached.ConstraintValidatorInfo` in the Java reference).
type ValidatorInfo struct {
	Kind             string
	ValidatedType    reflect.Type
	SupportedTargets map[ValidationTarget]bool
	New              func() ConstraintValidator
}

// ValidatorRegistry is the constraint-kind -> validator-implementations map
// (spec.md §2 "Validator registry").
type ValidatorRegistry struct {
	byKind map[string][]ValidatorInfo
}

func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{byKind: map[string][]ValidatorInfo{}}
}

// Register records one validator implementation for kind. A kind may have
// many implementations, each for a distinct ValidatedType; resolution
// (validator_resolution.go) chooses among them at query time.
func (r *ValidatorRegistry) Register(info ValidatorInfo) error {
	if info.ValidatedType != nil {
		if err := checkValidatedTypeShape(info.ValidatedType); err != nil {
			return newDefinitionError(err)
		}
	}
	if len(info.SupportedTargets) == 0 {
		info.SupportedTargets = map[ValidationTarget]bool{TargetAnnotatedElement: true}
	}
	r.byKind[info.Kind] = append(r.byKind[info.Kind], info)
	return nil
}

func (r *ValidatorRegistry) InfosFor(kind string) []ValidatorInfo {
	return r.byKind[kind]
}

// SupportedTargets returns the union of ValidationTarget supported by every
// validator registered for kind; used by the annotation composer to check
// target compatibility between a constraint and its composing constraints.
func (r *ValidatorRegistry) SupportedTargets(kind string) map[ValidationTarget]bool {
	out := map[ValidationTarget]bool{}
	for _, info := range r.byKind[kind] {
		for t := range info.SupportedTargets {
			out[t] = true
		}
	}
	return out
}

// checkValidatedTypeShape enforces that a validator's declared validated
// type is a raw type or a parameterised type whose every type argument is an
// unbounded wildcard. Go has no reified generic wildcards on reflect.Type, so
// the only value this rejects is a nil reflect.Type; Register calls it only
// for a non-nil ValidatedType.
func checkValidatedTypeShape(t reflect.Type) error {
	if t == nil {
		return ErrValidatorTypeShape
	}
	return nil
}
