package govalid

import (
	"errors"
	"fmt"
)

// Error taxonomy per spec: definition errors and unexpected-type errors are
// fatal to the current descriptor build or job; collaborator errors wrap
// whatever the external hook returned; user violations are never errors at
// all — they accumulate in a Job's result set.

var (
	ErrUnwrapAndSkip            = errors.New("govalid: constraint bears both Unwrap and Skip payloads")
	ErrOverrideTargetConflict   = errors.New("govalid: two attribute overrides map to the same (kind, index, attribute)")
	ErrOverrideIndexAmbiguous   = errors.New("govalid: override index -1 requires exactly one composing constraint of that kind")
	ErrTargetsDisjoint          = errors.New("govalid: composing constraint shares no ValidationTarget with its composed kind")
	ErrNoValidatorForType       = errors.New("govalid: no validator registered for this element type")
	ErrAmbiguousValidator       = errors.New("govalid: more than one maximally-specific validator for this element type")
	ErrCrossParameterValidator  = errors.New("govalid: cross-parameter resolution requires exactly one PARAMETERS validator")
	ErrValidatorTypeShape       = errors.New("govalid: validator's declared validated type must be a raw type or wildcard-only parameterised type")
	ErrJobAlreadyResolved       = errors.New("govalid: job already run")
	ErrNilDescriptor            = errors.New("govalid: nil descriptor")
	ErrUnsupportedKeyForDescMap = errors.New("govalid: unsupported key in descriptor map")
	ErrInvalidConstraintSpec    = errors.New("govalid: invalid constraint spec in validate tag")
	ErrNoViolationReported      = errors.New("govalid: constraint reported invalid but produced no violation")
)

// DefinitionError wraps a problem in the declarative metadata itself:
// conflicting overrides, disjoint validation targets, a ConstraintValidator
// whose Initialize returned an error, Unwrap+Skip together. Definition errors are
// never retried; they terminate the operation that discovered them.
type DefinitionError struct {
	Cause error
}

func (e *DefinitionError) Error() string { return fmt.Sprintf("definition error: %v", e.Cause) }
func (e *DefinitionError) Unwrap() error { return e.Cause }

func newDefinitionError(cause error) error { return &DefinitionError{Cause: cause} }

// UnexpectedTypeError wraps a validator-resolution failure: no validator, or
// more than one maximally-specific validator, for an element's static type.
type UnexpectedTypeError struct {
	Cause error
}

func (e *UnexpectedTypeError) Error() string { return fmt.Sprintf("unexpected type: %v", e.Cause) }
func (e *UnexpectedTypeError) Unwrap() error { return e.Cause }

func newUnexpectedTypeError(cause error) error { return &UnexpectedTypeError{Cause: cause} }

// CollaboratorError wraps an error raised by an external collaborator,
// annotated with the element involved. The job produces it for a
// TraversableResolver error and for a validator that disabled its default
// violation without adding one; ValueExtractor errors are returned as they
// are, and panics from validators or extractors are not recovered.
type CollaboratorError struct {
	Element string
	Cause   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator error at %s: %v", e.Element, e.Cause)
}
func (e *CollaboratorError) Unwrap() error { return e.Cause }

func newCollaboratorError(element string, cause error) error {
	return &CollaboratorError{Element: element, Cause: cause}
}
