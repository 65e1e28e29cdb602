package govalid

import "reflect"

// ParameterNameProvider resolves a method or constructor's declared
// parameter names for use in parameter(name,i) path nodes (spec.md §6). Go
// has no runtime parameter-name reflection, so the only faithful source is
// one the caller supplies explicitly (e.g. generated from source, or a
// struct-tag convention on a synthetic parameters struct);
// PositionalParameterNames falls back to positional arg0, arg1, ... names.
type ParameterNameProvider interface {
	NamesFor(signature string, paramTypes []reflect.Type) []string
}

type positionalParameterNames struct{}

func (positionalParameterNames) NamesFor(_ string, paramTypes []reflect.Type) []string {
	names := make([]string, len(paramTypes))
	for i := range names {
		names[i] = ParameterNode("", i).String()
	}
	return names
}

// PositionalParameterNames is the default provider: arg0, arg1, ...
var PositionalParameterNames ParameterNameProvider = positionalParameterNames{}

// StaticParameterNames is a ParameterNameProvider backed by an explicit
// signature -> names table, for callers that know their real parameter
// names (e.g. from a generation step) and want them to appear in paths.
type StaticParameterNames struct {
	bySignature map[string][]string
}

func NewStaticParameterNames(names map[string][]string) *StaticParameterNames {
	return &StaticParameterNames{bySignature: names}
}

func (s *StaticParameterNames) NamesFor(signature string, paramTypes []reflect.Type) []string {
	if names, ok := s.bySignature[signature]; ok {
		return names
	}
	return positionalParameterNames{}.NamesFor(signature, paramTypes)
}
