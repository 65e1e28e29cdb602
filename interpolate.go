package govalid

import (
	"fmt"
	"strings"
)

// MessageInterpolator turns a violation's raw template into its final
// message (spec.md §6). Neither validators nor the job apply it: violations
// carry their raw template, and the caller interpolates them (as the demo
// command does with Engine.Interpolator).
type MessageInterpolator interface {
	Interpolate(template string, v Violation) string
}

// defaultInterpolator returns every template unchanged. Substituting
// `{attributeName}` placeholders is AttributeInterpolator's job; anything
// fancier (resource bundles, EL expressions) is a caller-supplied
// MessageInterpolator.
type defaultInterpolator struct{}

// DefaultInterpolator leaves `{...}` placeholders untouched; it exists so an
// engine has a non-nil interpolator to call when none is configured.
var DefaultInterpolator MessageInterpolator = defaultInterpolator{}

func (defaultInterpolator) Interpolate(template string, v Violation) string {
	return template
}

// AttributeInterpolator resolves `{name}` placeholders in a template against
// a constraint's resolved attribute map, falling back to leaving the
// placeholder verbatim when the attribute is absent.
type AttributeInterpolator struct {
	attrs map[string]any
}

func NewAttributeInterpolator(attrs map[string]any) *AttributeInterpolator {
	return &AttributeInterpolator{attrs: attrs}
}

func (a *AttributeInterpolator) Interpolate(template string, _ Violation) string {
	if len(a.attrs) == 0 {
		return template
	}
	var b strings.Builder
	for i := 0; i < len(template); {
		c := template[i]
		if c == '{' {
			if end := strings.IndexByte(template[i:], '}'); end > 0 {
				name := template[i+1 : i+end]
				if v, ok := a.attrs[name]; ok {
					b.WriteString(toDisplayString(v))
					i += end + 1
					continue
				}
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func toDisplayString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
