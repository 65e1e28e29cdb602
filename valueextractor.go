package govalid

import "reflect"

// ExtractedValue is one (path-node, value) pair yielded by a ValueExtractor
// for a single container element.
type ExtractedValue struct {
	Node  Node
	Value any
}

// ValueExtractor unwraps one container type's element(s) for traversal
// (spec.md §6). Extract calls yield once per element; returning an error
// from yield (or from Extract itself) aborts extraction for this container.
type ValueExtractor interface {
	Extract(name string, container any, yield func(ExtractedValue) error) error
}

type valueExtractorEntry struct {
	extractor ValueExtractor
	gate      func() bool // activation gate; nil means always active
}

// ValueExtractorRegistry maps (container-type, type-arg-index) to the
// extractor responsible for it, per spec.md §6's ValueExtractor(container-type,
// type-arg-index) binding. Extractors registered with an activation gate are
// skipped while the gate reports false (the Go analogue of the JDK-version
// gated extractors in the reference).
type ValueExtractorRegistry struct {
	entries map[ContainerElementKey]valueExtractorEntry
}

func NewValueExtractorRegistry() *ValueExtractorRegistry {
	r := &ValueExtractorRegistry{entries: map[ContainerElementKey]valueExtractorEntry{}}
	r.registerBuiltins()
	return r
}

func (r *ValueExtractorRegistry) Register(key ContainerElementKey, extractor ValueExtractor, gate func() bool) {
	r.entries[key] = valueExtractorEntry{extractor: extractor, gate: gate}
}

// Lookup returns the active extractor for key, or false if none is
// registered or its activation gate currently reports false.
func (r *ValueExtractorRegistry) Lookup(key ContainerElementKey) (ValueExtractor, bool) {
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	if e.gate != nil && !e.gate() {
		return nil, false
	}
	return e.extractor, true
}

func (r *ValueExtractorRegistry) registerBuiltins() {
	r.Register(ContainerElementKey{ContainerType: "slice", TypeArgIndex: 0}, sliceExtractor{}, nil)
	r.Register(ContainerElementKey{ContainerType: "array", TypeArgIndex: 0}, sliceExtractor{}, nil)
	r.Register(ContainerElementKey{ContainerType: "map", TypeArgIndex: 0}, mapKeyExtractor{}, nil)
	r.Register(ContainerElementKey{ContainerType: "map", TypeArgIndex: 1}, mapValueExtractor{}, nil)
	r.Register(ContainerElementKey{ContainerType: "pointer", TypeArgIndex: 0}, pointerExtractor{}, nil)
}

// sliceExtractor walks a slice or array, yielding index(i) nodes.
type sliceExtractor struct{}

func (sliceExtractor) Extract(name string, container any, yield func(ExtractedValue) error) error {
	v := reflect.ValueOf(container)
	if !v.IsValid() {
		return nil
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil
	}
	for i := 0; i < v.Len(); i++ {
		n := ContainerElementNode("", "slice", 0)
		n.Index, n.HasIndex = i, true
		if err := yield(ExtractedValue{Node: n, Value: v.Index(i).Interface()}); err != nil {
			return err
		}
	}
	return nil
}

// mapKeyExtractor yields each map key as a value in its own right (type
// argument index 0), keyed by key(k).
type mapKeyExtractor struct{}

func (mapKeyExtractor) Extract(name string, container any, yield func(ExtractedValue) error) error {
	v := reflect.ValueOf(container)
	if !v.IsValid() || v.Kind() != reflect.Map {
		return nil
	}
	for _, k := range v.MapKeys() {
		n := ContainerElementNode("", "map", 0)
		n.Key, n.HasKey = k.Interface(), true
		if err := yield(ExtractedValue{Node: n, Value: k.Interface()}); err != nil {
			return err
		}
	}
	return nil
}

// mapValueExtractor yields each map value (type argument index 1), keyed by
// key(k) of its owning key.
type mapValueExtractor struct{}

func (mapValueExtractor) Extract(name string, container any, yield func(ExtractedValue) error) error {
	v := reflect.ValueOf(container)
	if !v.IsValid() || v.Kind() != reflect.Map {
		return nil
	}
	iter := v.MapRange()
	for iter.Next() {
		n := ContainerElementNode("", "map", 1)
		n.Key, n.HasKey = iter.Key().Interface(), true
		if err := yield(ExtractedValue{Node: n, Value: iter.Value().Interface()}); err != nil {
			return err
		}
	}
	return nil
}

// pointerExtractor unwraps a non-nil pointer to its single pointee, with no
// index/key qualifier on the node.
type pointerExtractor struct{}

func (pointerExtractor) Extract(name string, container any, yield func(ExtractedValue) error) error {
	v := reflect.ValueOf(container)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() {
		return nil
	}
	n := ContainerElementNode("", "pointer", 0)
	return yield(ExtractedValue{Node: n, Value: v.Elem().Interface()})
}
