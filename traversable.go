package govalid

import "reflect"

// TraversableResolver gates reachability and cascadability of a property
// during traversal (spec.md §6). Implementations may wrap a persistence
// layer that wants to avoid triggering lazy loads for properties a caller
// has no business inspecting.
type TraversableResolver interface {
	IsReachable(traversableObject any, node Node, rootClass reflect.Type, pathToTraversableObject *Path, elementType ElementKind) (bool, error)
	IsCascadable(traversableObject any, node Node, rootClass reflect.Type, pathToTraversableObject *Path, elementType ElementKind) (bool, error)
}

// defaultTraversableResolver treats every property as reachable and
// cascadable, matching the JSR default when no resolver is configured.
type defaultTraversableResolver struct{}

func (defaultTraversableResolver) IsReachable(any, Node, reflect.Type, *Path, ElementKind) (bool, error) {
	return true, nil
}

func (defaultTraversableResolver) IsCascadable(any, Node, reflect.Type, *Path, ElementKind) (bool, error) {
	return true, nil
}

// DefaultTraversableResolver is the always-reachable, always-cascadable
// resolver. An Engine does not substitute it for a nil Traversable field;
// callers set it explicitly.
var DefaultTraversableResolver TraversableResolver = defaultTraversableResolver{}
