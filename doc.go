// Package govalid is a declarative, reflection-driven validation engine for
// Go structs, compatible in spirit with Bean Validation 2.0 (JSR-303)
// semantics.
//
// Constraints are declared with struct tags rather than code:
//
//	type Person struct {
//	    Name  string   `validate:"NotBlank"`
//	    Email string   `validate:"NotBlank;Email"`
//	    Age   int      `validate:"Min(value=0);Max(value=130)"`
//	    Tags  []string `elemvalidate:"NotBlank"`
//	    Addr  *Address `valid:""`
//	}
//
// An Engine resolves a struct's BeanDescriptor (built once per type and
// cached by the DescriptorManager), computes the requested validation
// groups, and walks the bean graph via a job, recursing into cascaded
// associations, container elements (slices, arrays, maps, pointers), and
// composed constraints, short-circuiting group sequences as soon as a group
// produces a violation.
//
// Constraint kinds are registered on a ConstraintDefinitionRegistry and
// resolved to concrete ConstraintValidator implementations by a
// ValidatorRegistry, matched by the most specific validated type a
// validator declares. Built-in constraint kinds (NotNull, NotBlank, Min,
// Max, Size, Pattern, Email, UUID) are registered by
// RegisterBuiltinConstraints; additional kinds and validators can be
// registered the same way.
//
// Bean metadata can come from struct tags (ReflectiveSource), from an XML
// mapping document (XMLSource), or from any other ForBean implementation,
// and sources can be composed (CompositeSource) or flattened across
// embedded structs (HierarchySource).
package govalid
