package govalid

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Built-in constraint kinds, registered by RegisterBuiltinConstraints.
const (
	ConstraintNotNull = "NotNull"
	ConstraintNotBlank = "NotBlank"
	ConstraintMin      = "Min"
	ConstraintMax      = "Max"
	ConstraintSize     = "Size"
	ConstraintPattern  = "Pattern"
	ConstraintEmail    = "Email"
	ConstraintUUID     = "UUID"
)

// RegisterBuiltinConstraints wires the engine's built-in constraint kinds
// into both registries: their definition (for composition/attribute
// defaults) and their validator implementations (for resolution).
func RegisterBuiltinConstraints(defs *ConstraintDefinitionRegistry, validators *ValidatorRegistry) error {
	defs.Register(&ConstraintDefinition{Kind: ConstraintNotNull})
	defs.Register(&ConstraintDefinition{Kind: ConstraintNotBlank})
	defs.Register(&ConstraintDefinition{Kind: ConstraintMin})
	defs.Register(&ConstraintDefinition{Kind: ConstraintMax})
	defs.Register(&ConstraintDefinition{Kind: ConstraintSize})
	defs.Register(&ConstraintDefinition{Kind: ConstraintPattern})
	defs.Register(&ConstraintDefinition{Kind: ConstraintEmail})
	defs.Register(&ConstraintDefinition{Kind: ConstraintUUID})

	registrations := []ValidatorInfo{
		{Kind: ConstraintNotNull, ValidatedType: anyType, New: func() ConstraintValidator { return &notNullValidator{} }},
		{Kind: ConstraintNotBlank, ValidatedType: reflect.TypeOf(""), New: func() ConstraintValidator { return &notBlankValidator{} }},
		{Kind: ConstraintMin, ValidatedType: anyType, New: func() ConstraintValidator { return &minValidator{} }},
		{Kind: ConstraintMax, ValidatedType: anyType, New: func() ConstraintValidator { return &maxValidator{} }},
		{Kind: ConstraintSize, ValidatedType: anyType, New: func() ConstraintValidator { return &sizeValidator{} }},
		{Kind: ConstraintPattern, ValidatedType: reflect.TypeOf(""), New: func() ConstraintValidator { return &patternValidator{} }},
		{Kind: ConstraintEmail, ValidatedType: reflect.TypeOf(""), New: func() ConstraintValidator { return &emailValidator{} }},
		{Kind: ConstraintUUID, ValidatedType: reflect.TypeOf(""), New: func() ConstraintValidator { return &uuidValidator{} }},
	}
	for _, info := range registrations {
		if err := validators.Register(info); err != nil {
			return err
		}
	}
	return nil
}

// notNullValidator fails only on a true nil/zero-interface value; zero
// values of concrete types (0, "", false) are not themselves null.
type notNullValidator struct{}

func (*notNullValidator) Initialize(map[string]any) error { return nil }
func (*notNullValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}

// notBlankValidator requires a string with at least one non-whitespace
// character.
type notBlankValidator struct{}

func (*notBlankValidator) Initialize(map[string]any) error { return nil }
func (*notBlankValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

type minValidator struct{ min int64 }

func (m *minValidator) Initialize(attrs map[string]any) error {
	v, err := requireIntAttr(attrs, "value")
	if err != nil {
		return err
	}
	m.min = v
	return nil
}

func (m *minValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	n, ok := toInt64(value)
	if !ok {
		return true // null-like values are not this constraint's concern
	}
	return n >= m.min
}

type maxValidator struct{ max int64 }

func (m *maxValidator) Initialize(attrs map[string]any) error {
	v, err := requireIntAttr(attrs, "value")
	if err != nil {
		return err
	}
	m.max = v
	return nil
}

func (m *maxValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	n, ok := toInt64(value)
	if !ok {
		return true
	}
	return n <= m.max
}

// sizeValidator bounds the length of a string, slice, array, or map.
type sizeValidator struct{ min, max int }

func (s *sizeValidator) Initialize(attrs map[string]any) error {
	s.min = 0
	s.max = 1<<31 - 1
	if v, ok := attrs["min"]; ok {
		n, err := toIntAttr(v)
		if err != nil {
			return fmt.Errorf("Size.min: %w", err)
		}
		s.min = n
	}
	if v, ok := attrs["max"]; ok {
		n, err := toIntAttr(v)
		if err != nil {
			return fmt.Errorf("Size.max: %w", err)
		}
		s.max = n
	}
	return nil
}

func (s *sizeValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	if value == nil {
		return true
	}
	length, ok := lengthOf(value)
	if !ok {
		return true
	}
	return length >= s.min && length <= s.max
}

func lengthOf(value any) (int, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

type patternValidator struct{ re *regexp.Regexp }

func (p *patternValidator) Initialize(attrs map[string]any) error {
	expr, ok := attrs["regexp"].(string)
	if !ok {
		return fmt.Errorf("Pattern requires a string 'regexp' attribute")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("Pattern.regexp: %w", err)
	}
	p.re = re
	return nil
}

func (p *patternValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	return p.re.MatchString(s)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type emailValidator struct{}

func (*emailValidator) Initialize(map[string]any) error { return nil }
func (*emailValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	if s == "" {
		return true // composes with NotBlank/NotNull for presence
	}
	return emailPattern.MatchString(s)
}

// uuidValidator requires a string parseable as an RFC 4122 UUID.
type uuidValidator struct{}

func (*uuidValidator) Initialize(map[string]any) error { return nil }
func (*uuidValidator) IsValid(value any, _ *ConstraintValidatorContext) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	if s == "" {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func requireIntAttr(attrs map[string]any, name string) (int64, error) {
	v, ok := attrs[name]
	if !ok {
		return 0, fmt.Errorf("missing required attribute %q", name)
	}
	n, err := toIntAttr(v)
	return int64(n), err
}

func toIntAttr(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer attribute, got %T", v)
	}
}

func toInt64(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), true
	default:
		return 0, false
	}
}
