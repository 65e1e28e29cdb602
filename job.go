package govalid

import (
	"fmt"
	"reflect"
)

// Engine is the set of collaborators a Job needs beyond the pure descriptor
// graph: the descriptor cache, validator registry/resolution, composer, the
// external protocol implementations, and configuration. One Engine is built
// once and shared by every job (spec.md §5).
type Engine struct {
	Descriptors      *DescriptorManager
	Validators       *ValidatorRegistry
	Composer         *AnnotationComposer
	ValueExtractors  *ValueExtractorRegistry
	Traversable      TraversableResolver
	Interpolator     MessageInterpolator
	Clock            ClockProvider
	ParameterNames   ParameterNameProvider
}

// Validate runs a job for root against the requested group kinds (Default if
// none given) and returns the resulting violations.
func (e *Engine) Validate(root any, groups ...string) ([]Violation, error) {
	desc, err := e.Descriptors.GetBeanDescriptor(reflect.TypeOf(root))
	if err != nil {
		return nil, err
	}
	computer := NewGroupComputer(beanSequenceSource{desc})
	computed := computer.Compute(groups)

	job := newJob(e, reflect.TypeOf(root))
	return job.run(desc, root, computed)
}

type beanSequenceSource struct{ desc *BeanDescriptor }

func (b beanSequenceSource) SequenceOf(kind string) ([]string, bool) {
	if kind == DefaultGroup && len(b.desc.GroupSequence) > 0 {
		return b.desc.GroupSequence, true
	}
	return nil, false
}

// job carries the mutable, single-threaded state of one Validate call:
// the identity-and-group-keyed seen-beans set (cycle detection) and the accumulated
// results (spec.md §4.5, §5).
type job struct {
	engine    *Engine
	rootClass reflect.Type
	seenBeans map[any]bool
	results   []Violation
	resolved  bool
}

func newJob(e *Engine, rootClass reflect.Type) *job {
	return &job{engine: e, rootClass: rootClass, seenBeans: map[any]bool{}}
}

// frameContext is the `graph-context` shared by every frame kind: the path
// to this point, the current value, and the parent context. Groups are
// passed to each frame's visit separately and are not stored here.
type frameContext struct {
	path   *Path
	value  any
	parent *frameContext
}

func (job *job) run(root *BeanDescriptor, value any, groups Groups) ([]Violation, error) {
	if job.resolved {
		return nil, ErrJobAlreadyResolved
	}
	job.resolved = true

	ctx := &frameContext{path: NewPath(), value: value}
	frame := &beanFrame{job: job, descriptor: root, ctx: ctx}

	for _, g := range groups.Simple {
		if err := frame.visit(g); err != nil {
			return nil, err
		}
	}

sequences:
	for _, seq := range groups.Sequences {
		for _, g := range seq {
			before := len(job.results)
			if err := frame.visit(g); err != nil {
				return nil, err
			}
			if len(job.results) > before {
				break sequences
			}
		}
	}

	return job.results, nil
}

// beanFrame evaluates a bean's own type-level constraints, then recurses
// into every constrained property.
type beanFrame struct {
	job        *job
	descriptor *BeanDescriptor
	ctx        *frameContext
}

// skip reports whether this frame's value has already been visited for group
// g in this job; it records the (value, group) pair as seen as a side effect
// of a negative answer, matching `BeanFrame.skip()`'s idempotent-insert
// semantics in the Java reference.
func (f *beanFrame) skip(g Group) bool {
	if f.ctx.value == nil || !isIdentityComparable(f.ctx.value) {
		return false
	}
	key := struct {
		value any
		group Group
	}{f.ctx.value, g}
	if f.job.seenBeans[key] {
		return true
	}
	f.job.seenBeans[key] = true
	return false
}

func isIdentityComparable(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return !rv.IsNil()
	case reflect.Slice:
		return false
	default:
		return true
	}
}

func (f *beanFrame) visit(g Group) error {
	if f.skip(g) {
		return nil
	}

	groups := RedirectDefault([]Group{g}, f.descriptor.GroupSequence)
	redirected := len(groups) > 1
	for _, gg := range groups {
		before := len(f.job.results)
		if err := f.visitGroup(gg); err != nil {
			return err
		}
		if redirected && len(f.job.results) > before {
			break
		}
	}
	return nil
}

// visitGroup evaluates this frame's own constraints for a single group and
// recurses into properties for it; split out from visit so a bean's own
// redirected Default sequence (visit) can short-circuit across groups.
func (f *beanFrame) visitGroup(g Group) error {
	for _, c := range f.descriptor.Constraints {
		if !c.HasGroup(string(g)) {
			continue
		}
		if err := f.job.validate(c, f.ctx); err != nil {
			return err
		}
	}
	return f.recurse(g)
}

func (f *beanFrame) recurse(g Group) error {
	for _, prop := range f.descriptor.ConstrainedProperties() {
		if err := f.visitProperty(prop, g); err != nil {
			return err
		}
	}
	return nil
}

func (f *beanFrame) visitProperty(prop *PropertyDescriptor, g Group) error {
	node := PropertyNode(prop.Name)
	reachable, err := f.job.engine.Traversable.IsReachable(f.ctx.value, node, f.job.rootClass, f.ctx.path, ElementField)
	if err != nil {
		return newCollaboratorError(prop.Name, err)
	}
	if !reachable {
		return nil
	}

	value, ok := readProperty(f.ctx.value, prop.Name)
	if !ok {
		return nil
	}

	childPath := f.ctx.path.Copy()
	childPath.Append(node)
	childCtx := &frameContext{path: childPath, value: value, parent: f.ctx}

	childGroups := []Group{g}
	if to, ok := prop.GroupConversions[string(g)]; ok {
		childGroups = []Group{Group(to)}
	}

	sprout := &sproutFrame{job: f.job, descriptor: prop, ctx: childCtx, node: node, isCascade: prop.IsCascade}
	for _, cg := range childGroups {
		if err := sprout.visit(cg); err != nil {
			return err
		}
	}

	if prop.IsCascade {
		cascadable, err := f.job.engine.Traversable.IsCascadable(f.ctx.value, node, f.job.rootClass, f.ctx.path, ElementField)
		if err != nil {
			return newCollaboratorError(prop.Name, err)
		}
		if cascadable && value != nil {
			if err := f.job.cascadeInto(childCtx, childGroups); err != nil {
				return err
			}
		}
	}
	return nil
}

// sproutFrame evaluates an element's own constraints and container-element
// obligations. Cascading into the element's bean value (when isCascade) is
// driven by the parent beanFrame, which alone knows the reachability result.
type sproutFrame struct {
	job        *job
	descriptor *PropertyDescriptor
	ctx        *frameContext
	node       Node
	isCascade  bool
}

func (s *sproutFrame) visit(g Group) error {
	for _, c := range s.descriptor.Constraints {
		if !c.HasGroup(string(g)) {
			continue
		}
		if c.Unwrap() {
			if err := s.validateUnwrapped(c, g); err != nil {
				return err
			}
			continue
		}
		if err := s.job.validate(c, s.ctx); err != nil {
			return err
		}
	}
	return s.recurseContainerElements(g)
}

func (s *sproutFrame) validateUnwrapped(c *ConstraintDescriptor, g Group) error {
	for key := range s.descriptor.ContainerElements {
		extractor, ok := s.job.engine.ValueExtractors.Lookup(key)
		if !ok {
			continue
		}
		err := extractor.Extract(s.descriptor.Name, s.ctx.value, func(ev ExtractedValue) error {
			childPath := s.ctx.path.Copy()
			childPath.Append(ev.Node)
			childCtx := &frameContext{path: childPath, value: ev.Value, parent: s.ctx}
			return s.job.validate(c, childCtx)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *sproutFrame) recurseContainerElements(g Group) error {
	for key, cel := range s.descriptor.ContainerElements {
		extractor, ok := s.job.engine.ValueExtractors.Lookup(key)
		if !ok {
			continue
		}
		err := extractor.Extract(s.descriptor.Name, s.ctx.value, func(ev ExtractedValue) error {
			return s.visitContainerElement(cel, ev, g)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *sproutFrame) visitContainerElement(cel *ContainerElementDescriptor, ev ExtractedValue, g Group) error {
	childPath := s.ctx.path.Copy()
	childPath.Append(ev.Node)
	childCtx := &frameContext{path: childPath, value: ev.Value, parent: s.ctx}

	childGroups := []Group{g}
	if to, ok := cel.GroupConversions[string(g)]; ok {
		childGroups = []Group{Group(to)}
	}

	for _, cg := range childGroups {
		for _, c := range cel.Constraints {
			if !c.HasGroup(string(cg)) {
				continue
			}
			if err := s.job.validate(c, childCtx); err != nil {
				return err
			}
		}
	}

	if cel.IsCascade && ev.Value != nil {
		if err := s.job.cascadeInto(childCtx, childGroups); err != nil {
			return err
		}
	}
	return nil
}

// cascadeInto creates a child bean frame for ctx.value, unless an identical
// instance already appears among ctx's ancestors (the ancestor-chain half of
// cycle detection, independent of the job-wide seen-beans map).
func (job *job) cascadeInto(ctx *frameContext, groups []Group) error {
	if ancestorContains(ctx.parent, ctx.value) {
		return nil
	}
	childDesc, err := job.engine.Descriptors.GetBeanDescriptor(reflect.TypeOf(ctx.value))
	if err != nil {
		return err
	}
	child := &beanFrame{job: job, descriptor: childDesc, ctx: ctx}
	for _, g := range groups {
		if err := child.visit(g); err != nil {
			return err
		}
	}
	return nil
}

func ancestorContains(ctx *frameContext, value any) bool {
	if value == nil || !isIdentityComparable(value) {
		return false
	}
	for c := ctx; c != nil; c = c.parent {
		if c.value == value {
			return true
		}
	}
	return false
}

// validate runs one constraint (and, per its report-as-single-violation
// policy, its composing constraints) against ctx's value, appending any
// resulting violations to the job.
func (job *job) validate(c *ConstraintDescriptor, ctx *frameContext) error {
	_, err := job.validateRecursive(c, ctx)
	return err
}

// validateRecursive mirrors `ValidationJob.validate`: it returns whether c
// (and, for report-as-single-violation constraints, its composing chain)
// passed, recording violations as it goes.
func (job *job) validateRecursive(c *ConstraintDescriptor, ctx *frameContext) (bool, error) {
	info, err := job.engine.Validators.ResolveAnnotatedElement(c.Kind, reflect.TypeOf(ctx.value))
	if err != nil {
		return false, err
	}

	validator := info.New()
	if err := validator.Initialize(c.Attributes); err != nil {
		return false, newDefinitionError(fmt.Errorf("initializing %s: %w", c.Kind, err))
	}

	vctx := newConstraintValidatorContext(c, ctx.path, ctx.value)
	ownValid := validator.IsValid(ctx.value, vctx)
	if !ownValid {
		violations, err := vctx.collect()
		if err != nil {
			return false, err
		}
		job.results = append(job.results, violations...)
	}

	if c.ReportAsSingleViolation {
		valid := ownValid
		failedByComposing := false
		for _, comp := range c.Composing {
			if !valid {
				break
			}
			before := len(job.results)
			ok, err := job.validateRecursive(comp.Constraint, ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				job.results = job.results[:before]
				valid = false
				failedByComposing = true
			}
		}
		if failedByComposing {
			// Own validator reported valid; the composed constraint's own
			// default is the only report, per report-as-single-violation.
			job.results = append(job.results, Violation{
				Template:  vctx.DefaultConstraintMessageTemplate(),
				Path:      ctx.path.Copy(),
				LeafValue: ctx.value,
			})
		}
		return valid, nil
	}
	valid := ownValid

	for _, comp := range c.Composing {
		ok, err := job.validateRecursive(comp.Constraint, ctx)
		if err != nil {
			return false, err
		}
		valid = valid && ok
	}
	return valid, nil
}

// readProperty fetches the struct field named name off bean, which may be a
// pointer or a value; methods are not consulted. Returns ok=false when the
// property cannot be read (e.g. a nil pointer bean).
func readProperty(bean any, name string) (any, bool) {
	rv := reflect.ValueOf(bean)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	field := rv.FieldByName(name)
	if !field.IsValid() {
		return nil, false
	}
	return field.Interface(), true
}
