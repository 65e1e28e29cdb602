package govalid

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// AnnotationBehaviour controls how a secondary metadata source's constraints
// interact with ones already collected for the same element (spec.md §4.3).
type AnnotationBehaviour int

const (
	// BehaviourMerge adds the source's constraints alongside any already
	// present.
	BehaviourMerge AnnotationBehaviour = iota
	// BehaviourOverride discards constraints already present for the
	// element before adding the source's own.
	BehaviourOverride
	// BehaviourAbstain contributes nothing for elements that already carry
	// constraints from an earlier source.
	BehaviourAbstain
)

// rawConstraintSpec is one constraint occurrence as read off a metadata
// source, before resolution against the validator registry.
type rawConstraintSpec struct {
	Kind       string
	Attributes map[string]any
	Groups     []string
}

// rawFieldSpec is one property as read off a metadata source.
type rawFieldSpec struct {
	Name             string
	Type             reflect.Type
	Constraints      []rawConstraintSpec
	IsCascade        bool
	GroupConversions map[string]string
	ContainerElement *rawContainerElementSpec
}

type rawContainerElementSpec struct {
	Key         ContainerElementKey
	Type        reflect.Type
	Constraints []rawConstraintSpec
	IsCascade   bool
}

// ForBean is the uniform shape every metadata source exposes for a Go type,
// mirroring the reference's getClass-level/getFields/getGetters contract
// (spec.md §4.3). govalid has no getters/constructors-by-signature
// reflection surface of its own; ForBean exposes no executables, and no
// source populates a BeanDescriptor's Methods or Constructors.
type ForBean interface {
	TypeConstraints(t reflect.Type) ([]rawConstraintSpec, error)
	Fields(t reflect.Type) ([]rawFieldSpec, error)
	GroupSequence(t reflect.Type) ([]string, error)
}

// groupSequenceDeclarer lets a type declare its own group sequence in code
// rather than through a metadata source; checked by ReflectiveSource.
type groupSequenceDeclarer interface {
	ValidationGroupSequence() []string
}

// ReflectiveSource reads `validate`, `valid`, `groups`, `convertgroup`,
// `elemvalidate`, and `elemvalid` struct tags off a type's fields. It is
// stateless and safe to share as a singleton, per spec.md §4.3.
type ReflectiveSource struct{}

func (ReflectiveSource) TypeConstraints(t reflect.Type) ([]rawConstraintSpec, error) {
	return nil, nil
}

func (ReflectiveSource) GroupSequence(t reflect.Type) ([]string, error) {
	zero := reflect.New(t).Interface()
	if d, ok := zero.(groupSequenceDeclarer); ok {
		return d.ValidationGroupSequence(), nil
	}
	return nil, nil
}

func (ReflectiveSource) Fields(t reflect.Type) ([]rawFieldSpec, error) {
	if t.Kind() != reflect.Struct {
		return nil, newDefinitionError(fmt.Errorf("%w: %s is not a struct", ErrNilDescriptor, t))
	}

	var out []rawFieldSpec
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		spec := rawFieldSpec{Name: f.Name, Type: f.Type, GroupConversions: map[string]string{}}

		if tag, ok := f.Tag.Lookup("validate"); ok {
			constraints, err := parseConstraintSpecs(tag)
			if err != nil {
				return nil, newDefinitionError(fmt.Errorf("field %s: %w", f.Name, err))
			}
			groups := parseGroupsTag(f.Tag.Get("groups"))
			for i := range constraints {
				if len(groups) > 0 && len(constraints[i].Groups) == 0 {
					constraints[i].Groups = groups
				}
			}
			spec.Constraints = constraints
		}

		if _, ok := f.Tag.Lookup("valid"); ok {
			spec.IsCascade = true
		}

		if cg := f.Tag.Get("convertgroup"); cg != "" {
			for _, pair := range strings.Split(cg, ",") {
				parts := strings.SplitN(strings.TrimSpace(pair), "->", 2)
				if len(parts) == 2 {
					spec.GroupConversions[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
				}
			}
		}

		if elemTag, ok := f.Tag.Lookup("elemvalidate"); ok {
			_, cascadeOK := f.Tag.Lookup("elemvalid")
			cel, err := reflectiveContainerElement(f.Type, elemTag, cascadeOK)
			if err != nil {
				return nil, newDefinitionError(fmt.Errorf("field %s: %w", f.Name, err))
			}
			spec.ContainerElement = cel
		}

		out = append(out, spec)
	}
	return out, nil
}

func reflectiveContainerElement(containerType reflect.Type, elemTag string, cascadeOK bool) (*rawContainerElementSpec, error) {
	constraints, err := parseConstraintSpecs(elemTag)
	if err != nil {
		return nil, err
	}

	var key ContainerElementKey
	var elemType reflect.Type
	switch containerType.Kind() {
	case reflect.Slice, reflect.Array:
		key = ContainerElementKey{ContainerType: "slice", TypeArgIndex: 0}
		elemType = containerType.Elem()
	case reflect.Map:
		key = ContainerElementKey{ContainerType: "map", TypeArgIndex: 1}
		elemType = containerType.Elem()
	case reflect.Ptr:
		key = ContainerElementKey{ContainerType: "pointer", TypeArgIndex: 0}
		elemType = containerType.Elem()
	default:
		return nil, fmt.Errorf("elemvalidate on non-container field of type %s", containerType)
	}

	return &rawContainerElementSpec{Key: key, Type: elemType, Constraints: constraints, IsCascade: cascadeOK}, nil
}

func parseGroupsTag(tag string) []string {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseConstraintSpecs parses `Kind1;Kind2(attr=val,attr2=val2);...`.
func parseConstraintSpecs(tag string) ([]rawConstraintSpec, error) {
	var out []rawConstraintSpec
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		spec, err := parseOneConstraintSpec(part)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

func parseOneConstraintSpec(part string) (rawConstraintSpec, error) {
	open := strings.IndexByte(part, '(')
	if open < 0 {
		return rawConstraintSpec{Kind: part, Attributes: map[string]any{}}, nil
	}
	if !strings.HasSuffix(part, ")") {
		return rawConstraintSpec{}, fmt.Errorf("%w: %s", ErrInvalidConstraintSpec, part)
	}
	kind := part[:open]
	body := part[open+1 : len(part)-1]

	attrs := map[string]any{}
	if body != "" {
		for _, kv := range strings.Split(body, ",") {
			kv = strings.TrimSpace(kv)
			if kv == "" {
				continue
			}
			eq := strings.IndexByte(kv, '=')
			if eq < 0 {
				return rawConstraintSpec{}, fmt.Errorf("%w: %s", ErrInvalidConstraintSpec, kv)
			}
			key := strings.TrimSpace(kv[:eq])
			attrs[key] = parseAttributeValue(strings.TrimSpace(kv[eq+1:]))
		}
	}
	return rawConstraintSpec{Kind: kind, Attributes: attrs}, nil
}

func parseAttributeValue(raw string) any {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return raw[1 : len(raw)-1]
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// CompositeSource reduces a list of sibling sources for the same type,
// applying each source's AnnotationBehaviour in turn (spec.md §4.3's
// Composite/Hierarchy/Parallel reduction).
type CompositeSource struct {
	sources []sourceWithBehaviour
}

type sourceWithBehaviour struct {
	source    ForBean
	behaviour AnnotationBehaviour
}

func NewCompositeSource() *CompositeSource { return &CompositeSource{} }

// Add appends a source to the reduction chain. The reflective source is
// conventionally added first with BehaviourMerge; secondary (XML,
// programmatic) sources decide whether they merge, override, or abstain.
func (c *CompositeSource) Add(source ForBean, behaviour AnnotationBehaviour) *CompositeSource {
	c.sources = append(c.sources, sourceWithBehaviour{source: source, behaviour: behaviour})
	return c
}

func (c *CompositeSource) TypeConstraints(t reflect.Type) ([]rawConstraintSpec, error) {
	var out []rawConstraintSpec
	for _, sw := range c.sources {
		specs, err := sw.source.TypeConstraints(t)
		if err != nil {
			return nil, err
		}
		out = reduceSpecs(out, specs, sw.behaviour)
	}
	return out, nil
}

func (c *CompositeSource) GroupSequence(t reflect.Type) ([]string, error) {
	for i := len(c.sources) - 1; i >= 0; i-- {
		seq, err := c.sources[i].source.GroupSequence(t)
		if err != nil {
			return nil, err
		}
		if len(seq) > 0 {
			return seq, nil
		}
	}
	return nil, nil
}

func (c *CompositeSource) Fields(t reflect.Type) ([]rawFieldSpec, error) {
	byName := map[string]*rawFieldSpec{}
	var order []string

	for _, sw := range c.sources {
		fields, err := sw.source.Fields(t)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			existing, ok := byName[f.Name]
			if !ok {
				fc := f
				byName[f.Name] = &fc
				order = append(order, f.Name)
				continue
			}
			switch sw.behaviour {
			case BehaviourOverride:
				*existing = f
			case BehaviourAbstain:
				existing.Constraints = reduceSpecs(existing.Constraints, f.Constraints, BehaviourAbstain)
			default: // BehaviourMerge
				existing.Constraints = reduceSpecs(existing.Constraints, f.Constraints, BehaviourMerge)
				existing.IsCascade = existing.IsCascade || f.IsCascade
				for k, v := range f.GroupConversions {
					existing.GroupConversions[k] = v
				}
				if f.ContainerElement != nil {
					existing.ContainerElement = f.ContainerElement
				}
			}
		}
	}

	out := make([]rawFieldSpec, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

func reduceSpecs(existing, incoming []rawConstraintSpec, behaviour AnnotationBehaviour) []rawConstraintSpec {
	switch behaviour {
	case BehaviourOverride:
		return incoming
	case BehaviourAbstain:
		if len(existing) > 0 {
			return existing
		}
		return incoming
	default:
		return append(existing, incoming...)
	}
}

// HierarchySource flattens a type's own source with those of its embedded
// (anonymous) struct fields, recursively, matching the reference's
// annotation-inheritance traversal of superclasses.
type HierarchySource struct {
	leaf      ForBean
	behaviour AnnotationBehaviour
}

func NewHierarchySource(leaf ForBean, behaviour AnnotationBehaviour) *HierarchySource {
	return &HierarchySource{leaf: leaf, behaviour: behaviour}
}

func (h *HierarchySource) TypeConstraints(t reflect.Type) ([]rawConstraintSpec, error) {
	out, err := h.leaf.TypeConstraints(t)
	if err != nil {
		return nil, err
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			parent, err := h.TypeConstraints(f.Type)
			if err != nil {
				return nil, err
			}
			out = reduceSpecs(parent, out, h.behaviour)
		}
	}
	return out, nil
}

func (h *HierarchySource) GroupSequence(t reflect.Type) ([]string, error) {
	return h.leaf.GroupSequence(t)
}

func (h *HierarchySource) Fields(t reflect.Type) ([]rawFieldSpec, error) {
	own, err := h.leaf.Fields(t)
	if err != nil {
		return nil, err
	}

	composite := &CompositeSource{}
	// own fields take precedence over inherited ones when merging by name.
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			parentFields, err := h.Fields(f.Type)
			if err != nil {
				return nil, err
			}
			composite.Add(staticFieldSource(parentFields), BehaviourMerge)
		}
	}
	composite.Add(staticFieldSource(own), h.behaviour)
	return composite.Fields(t)
}

// staticFieldSource adapts a precomputed []rawFieldSpec to ForBean.Fields,
// used internally to feed hierarchy results back through CompositeSource's
// reduction logic.
type staticFieldSource []rawFieldSpec

func (s staticFieldSource) TypeConstraints(reflect.Type) ([]rawConstraintSpec, error) { return nil, nil }
func (s staticFieldSource) GroupSequence(reflect.Type) ([]string, error)              { return nil, nil }
func (s staticFieldSource) Fields(reflect.Type) ([]rawFieldSpec, error)               { return s, nil }

// BeanBuilder turns a ForBean's raw specs into a resolved *BeanDescriptor,
// wiring each constraint through the annotation composer (spec.md §4.3's
// "lazily per type, cached" pipeline). A constraint kind with no entry in the
// definition registry fails the build; choosing a validator for the
// element's type happens later, when a job applies the constraint.
type BeanBuilder struct {
	source    ForBean
	composer  *AnnotationComposer
	extractor *ValueExtractorRegistry
}

func NewBeanBuilder(source ForBean, composer *AnnotationComposer, extractors *ValueExtractorRegistry) *BeanBuilder {
	return &BeanBuilder{source: source, composer: composer, extractor: extractors}
}

// Build implements the `func(reflect.Type) (*BeanDescriptor, error)` shape
// DescriptorManager expects.
func (b *BeanBuilder) Build(t reflect.Type) (*BeanDescriptor, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	desc := &BeanDescriptor{
		Type:       t,
		Properties: map[string]*PropertyDescriptor{},
	}

	typeConstraints, err := b.source.TypeConstraints(t)
	if err != nil {
		return nil, err
	}
	desc.Constraints, err = b.resolveAll(typeConstraints)
	if err != nil {
		return nil, err
	}

	seq, err := b.source.GroupSequence(t)
	if err != nil {
		return nil, err
	}
	desc.GroupSequence = seq

	fields, err := b.source.Fields(t)
	if err != nil {
		return nil, err
	}

	for _, f := range fields {
		pd := newPropertyDescriptor(f.Name, f.Type)
		pd.IsCascade = f.IsCascade
		pd.GroupConversions = f.GroupConversions

		pd.Constraints, err = b.resolveAll(f.Constraints)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}

		if f.ContainerElement != nil {
			cel := newContainerElementDescriptor(f.ContainerElement.Key, f.ContainerElement.Type)
			cel.IsCascade = f.ContainerElement.IsCascade
			cel.Constraints, err = b.resolveAll(f.ContainerElement.Constraints)
			if err != nil {
				return nil, fmt.Errorf("field %s container element: %w", f.Name, err)
			}
			pd.ContainerElements[f.ContainerElement.Key] = cel
		}

		desc.Properties[f.Name] = pd
	}

	return desc, nil
}

func (b *BeanBuilder) resolveAll(specs []rawConstraintSpec) ([]*ConstraintDescriptor, error) {
	out := make([]*ConstraintDescriptor, 0, len(specs))
	for _, spec := range specs {
		cd, err := b.resolveOne(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, cd)
	}
	return out, nil
}

func (b *BeanBuilder) resolveOne(spec rawConstraintSpec) (*ConstraintDescriptor, error) {
	def, ok := b.composer.defs.Get(spec.Kind)
	if !ok {
		return nil, newDefinitionError(fmt.Errorf("%w: unknown constraint kind %s", ErrInvalidConstraintSpec, spec.Kind))
	}
	composing, err := b.composer.Compose(spec.Kind, spec.Attributes)
	if err != nil {
		return nil, err
	}

	cd, err := NewConstraintDescriptor(spec.Kind, spec.Attributes, spec.Groups, map[string]bool{})
	if err != nil {
		return nil, err
	}
	cd.Composing = composing
	if def != nil {
		cd.ReportAsSingleViolation = def.ReportAsSingleViolation
		cd.ValidationAppliesTo = def.ValidationAppliesTo
		cd.Scope = def.Scope
	}
	return cd, nil
}
