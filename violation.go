package govalid

import "fmt"

// Violation is a single reported constraint failure: a message template
// (already or not-yet interpolated — interpolation is an external
// collaborator, spec.md §6), the path to the offending element, and its leaf
// value if known.
type Violation struct {
	Template  string
	Path      *Path
	LeafValue any
}

// ConstraintValidatorContext is handed to a ConstraintValidator's IsValid. It
// records whatever additional violations the validator builds and tracks
// whether the default template has been suppressed (spec.md §4.6).
type ConstraintValidatorContext struct {
	constraint      *ConstraintDescriptor
	basePath        *Path
	leafValue       any
	defaultDisabled bool
	additional      []Violation
}

func newConstraintValidatorContext(constraint *ConstraintDescriptor, path *Path, leafValue any) *ConstraintValidatorContext {
	return &ConstraintValidatorContext{constraint: constraint, basePath: path, leafValue: leafValue}
}

// DisableDefaultConstraintViolation suppresses the default-template
// violation; the validator must then add at least one custom violation via
// BuildConstraintViolationWithTemplate, or collection fails (spec.md §4.6).
func (c *ConstraintValidatorContext) DisableDefaultConstraintViolation() {
	c.defaultDisabled = true
}

// DefaultConstraintMessageTemplate returns the constraint's own declared
// `message` attribute, per spec.md §9's resolution of the open question
// ("get-default-constraint-message-template ... requires it to return the
// constraint's declared message attribute value").
func (c *ConstraintValidatorContext) DefaultConstraintMessageTemplate() string {
	if msg, ok := c.constraint.Attributes["message"].(string); ok {
		return msg
	}
	return "{" + c.constraint.Kind + ".message}"
}

// BuildConstraintViolationWithTemplate starts a fluent additional-violation
// builder rooted at the current frame's path.
func (c *ConstraintValidatorContext) BuildConstraintViolationWithTemplate(template string) *ViolationBuilder {
	return &ViolationBuilder{ctx: c, template: template, path: c.basePath.Copy()}
}

// collect returns the violations produced by this validator invocation: the
// default-template violation (unless disabled) plus every additional one
// built through the fluent API. Per spec.md §4.6, disabling the default
// without building at least one custom violation is a collaborator failure,
// not a silent "no violations" — a validator that reports invalid must
// always leave something behind to report.
func (c *ConstraintValidatorContext) collect() ([]Violation, error) {
	if c.defaultDisabled && len(c.additional) == 0 {
		return nil, newCollaboratorError(c.constraint.Kind, fmt.Errorf("%w: disabled the default constraint violation but added no custom violation", ErrNoViolationReported))
	}

	var out []Violation
	if !c.defaultDisabled {
		out = append(out, Violation{
			Template:  c.DefaultConstraintMessageTemplate(),
			Path:      c.basePath.Copy(),
			LeafValue: c.leafValue,
		})
	}
	out = append(out, c.additional...)
	return out, nil
}

// ViolationBuilder is the intermediate state of the node-appending fluent
// API: a partially-assembled path plus the template it will attach to.
type ViolationBuilder struct {
	ctx      *ConstraintValidatorContext
	path     *Path
	template string
}

func (b *ViolationBuilder) AddPropertyNode(name string) *ViolationBuilder {
	b.path.Append(PropertyNode(name))
	return b
}

func (b *ViolationBuilder) AddBeanNode() *ViolationBuilder {
	b.path.Append(BeanNode())
	return b
}

// AddContainerElementNode begins a container-element node; the caller must
// follow with AtIndex, AtKey, or AddConstraintViolation directly (a bare
// container-element reference with neither index nor key).
func (b *ViolationBuilder) AddContainerElementNode(name string) *ContainerElementNodeBuilder {
	return &ContainerElementNodeBuilder{parent: b, name: name}
}

// AddConstraintViolation terminates the chain, recording the violation on
// the owning context.
func (b *ViolationBuilder) AddConstraintViolation() {
	b.ctx.additional = append(b.ctx.additional, Violation{
		Template:  b.template,
		Path:      b.path.Copy(),
		LeafValue: b.ctx.leafValue,
	})
}

// ContainerElementNodeBuilder is the distinct intermediate state after
// AddContainerElementNode, before the index/key qualifier (or lack thereof)
// is known.
type ContainerElementNodeBuilder struct {
	parent *ViolationBuilder
	name   string
}

func (c *ContainerElementNodeBuilder) AtIndex(i int) *ViolationBuilder {
	n := ContainerElementNode(c.name, "", 0)
	n.Index, n.HasIndex = i, true
	c.parent.path.Append(n)
	return c.parent
}

func (c *ContainerElementNodeBuilder) AtKey(k any) *ViolationBuilder {
	n := ContainerElementNode(c.name, "", 0)
	n.Key, n.HasKey = k, true
	c.parent.path.Append(n)
	return c.parent
}

func (c *ContainerElementNodeBuilder) AddConstraintViolation() {
	c.parent.path.Append(ContainerElementNode(c.name, "", 0))
	c.parent.AddConstraintViolation()
}
