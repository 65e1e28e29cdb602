package govalid

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// OverrideRule is one `override` declaration on attribute FromAttribute of
// the composed constraint kind, naming which composing occurrence receives
// the overridden value and under what attribute name (spec.md §4.1).
//
// ToIndex == -1 means "the sole composing constraint of ToKind"; resolving it
// requires there be exactly one such occurrence.
type OverrideRule struct {
	FromAttribute string
	ToKind        string
	ToIndex       int
	ToAttribute   string // defaults to FromAttribute if empty
}

// ConstraintDefinition is the static, declaration-time shape of a constraint
// kind: its composing kinds (in declared order, duplicates allowed — each
// occurrence is a distinct composing index) and its attribute overrides.
type ConstraintDefinition struct {
	Kind                    string
	DefaultAttributes       map[string]any
	ComposingKinds          []string
	Overrides               []OverrideRule
	ReportAsSingleViolation bool
	ValidationAppliesTo     ValidationAppliesTo
	Scope                   Scope
}

// ConstraintDefinitionRegistry holds the static declarations used to drive
// composition. In the JSR reference this information comes from reading
// meta-annotations reflectively; govalid accepts it through this explicit
// registry so the reflective, XML, and programmatic builder sources
// (builder.go) can all populate it uniformly.
type ConstraintDefinitionRegistry struct {
	defs map[string]*ConstraintDefinition
}

func NewConstraintDefinitionRegistry() *ConstraintDefinitionRegistry {
	return &ConstraintDefinitionRegistry{defs: map[string]*ConstraintDefinition{}}
}

func (r *ConstraintDefinitionRegistry) Register(def *ConstraintDefinition) {
	r.defs[def.Kind] = def
}

func (r *ConstraintDefinitionRegistry) Get(kind string) (*ConstraintDefinition, bool) {
	d, ok := r.defs[kind]
	return d, ok
}

// composingShape is the cached, instance-independent structure of a
// constraint kind's composing tree: which kinds compose it, at which
// indices, and what overrides feed each occurrence. Two instances of the
// same kind share one composingShape; only attribute values differ per
// instance.
type composingShape struct {
	kind      string
	overrides map[string]string // composing attribute name -> source attribute name, for this occurrence
	children  []*composingShape
}

// AnnotationComposer resolves a declared constraint kind into its composing
// constraints, honouring attribute overrides, with the recursive shape
// resolution cached in a bounded per-process LRU (spec.md §4.1, §6
// `constraints.cache.size`).
type AnnotationComposer struct {
	defs          *ConstraintDefinitionRegistry
	targetsOf     func(kind string) map[ValidationTarget]bool
	shapeCache    *lru.Cache[string, []*composingShape]
}

// NewAnnotationComposer builds a composer. targetsOf must return the set of
// ValidationTarget a kind's registered validators support; it is used to
// enforce the target-compatibility invariant between a constraint and its
// composing constraints.
func NewAnnotationComposer(defs *ConstraintDefinitionRegistry, targetsOf func(string) map[ValidationTarget]bool, cacheSize int) (*AnnotationComposer, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, []*composingShape](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("govalid: building composition cache: %w", err)
	}
	return &AnnotationComposer{defs: defs, targetsOf: targetsOf, shapeCache: cache}, nil
}

// shapeFor returns the (possibly cached) composing shapes for kind's direct
// children, building and validating them on a cache miss.
func (c *AnnotationComposer) shapeFor(kind string) ([]*composingShape, error) {
	if cached, ok := c.shapeCache.Get(kind); ok {
		return cached, nil
	}

	def, ok := c.defs.Get(kind)
	if !ok || len(def.ComposingKinds) == 0 {
		c.shapeCache.Add(kind, nil)
		return nil, nil
	}

	// occurrence index per composing kind, in declared order
	occurrence := map[string]int{}
	shapes := make([]*composingShape, 0, len(def.ComposingKinds))
	targets := c.targetsOf(kind)

	for _, childKind := range def.ComposingKinds {
		idx := occurrence[childKind]
		occurrence[childKind] = idx + 1

		childTargets := c.targetsOf(childKind)
		if !targetsIntersect(targets, childTargets) {
			return nil, newDefinitionError(fmt.Errorf("%w: %s composed by %s", ErrTargetsDisjoint, childKind, kind))
		}

		overrides, err := resolveOverridesFor(def.Overrides, childKind, idx, def.ComposingKinds)
		if err != nil {
			return nil, err
		}

		grandchildren, err := c.shapeFor(childKind)
		if err != nil {
			return nil, err
		}

		shapes = append(shapes, &composingShape{kind: childKind, overrides: overrides, children: grandchildren})
	}

	if err := checkOverrideConflicts(def.Overrides); err != nil {
		return nil, err
	}

	c.shapeCache.Add(kind, shapes)
	return shapes, nil
}

func targetsIntersect(a, b map[ValidationTarget]bool) bool {
	for t := range a {
		if b[t] {
			return true
		}
	}
	return false
}

func checkOverrideConflicts(overrides []OverrideRule) error {
	seen := map[string]bool{}
	for _, o := range overrides {
		to := o.ToAttribute
		if to == "" {
			to = o.FromAttribute
		}
		key := fmt.Sprintf("%s#%d#%s", o.ToKind, o.ToIndex, to)
		if seen[key] {
			return newDefinitionError(fmt.Errorf("%w: %s", ErrOverrideTargetConflict, key))
		}
		seen[key] = true
	}
	return nil
}

// resolveOverridesFor collects the from->to attribute map that applies to
// the occurrence-th instance of childKind, honoring the ToIndex==-1 "sole
// occurrence" shorthand.
func resolveOverridesFor(overrides []OverrideRule, childKind string, occurrence int, allChildKinds []string) (map[string]string, error) {
	count := 0
	for _, k := range allChildKinds {
		if k == childKind {
			count++
		}
	}

	result := map[string]string{}
	for _, o := range overrides {
		if o.ToKind != childKind {
			continue
		}
		target := o.ToIndex
		if target == -1 {
			if count != 1 {
				return nil, newDefinitionError(fmt.Errorf("%w: %s", ErrOverrideIndexAmbiguous, childKind))
			}
			target = 0
		}
		if target != occurrence {
			continue
		}
		to := o.ToAttribute
		if to == "" {
			to = o.FromAttribute
		}
		result[to] = o.FromAttribute
	}
	return result, nil
}

// Compose builds the fresh, instance-specific composing ConstraintDescriptors
// for a source constraint with kind srcKind and attribute values srcAttrs.
func (c *AnnotationComposer) Compose(srcKind string, srcAttrs map[string]any) ([]*ComposingConstraint, error) {
	shapes, err := c.shapeFor(srcKind)
	if err != nil {
		return nil, err
	}
	return c.instantiate(shapes, srcAttrs)
}

func (c *AnnotationComposer) instantiate(shapes []*composingShape, srcAttrs map[string]any) ([]*ComposingConstraint, error) {
	out := make([]*ComposingConstraint, 0, len(shapes))
	for _, shape := range shapes {
		def, _ := c.defs.Get(shape.kind)

		attrs := map[string]any{}
		if def != nil {
			for k, v := range def.DefaultAttributes {
				attrs[k] = v
			}
		}
		for toAttr, fromAttr := range shape.overrides {
			if v, ok := srcAttrs[fromAttr]; ok {
				attrs[toAttr] = v
			}
		}

		grandchildren, err := c.instantiate(shape.children, attrs)
		if err != nil {
			return nil, err
		}

		var reportSingle bool
		var appliesTo ValidationAppliesTo
		var scope Scope
		if def != nil {
			reportSingle = def.ReportAsSingleViolation
			appliesTo = def.ValidationAppliesTo
			scope = def.Scope
		}

		desc := &ConstraintDescriptor{
			Kind:                    shape.kind,
			Attributes:              attrs,
			Groups:                  normalizeGroups(nil),
			Payloads:                map[string]bool{},
			Composing:               grandchildren,
			ReportAsSingleViolation: reportSingle,
			ValidationAppliesTo:     appliesTo,
			Scope:                   scope,
		}
		out = append(out, &ComposingConstraint{Constraint: desc, Overrides: shape.overrides})
	}
	return out, nil
}
