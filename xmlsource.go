package govalid

import (
	"encoding/xml"
	"fmt"
	"os"
	"reflect"
)

// XML schema validation of the mapping documents themselves is out of
// scope; XMLSource trusts its input to already conform to the vocabulary
// below and relies on encoding/xml's own structural decoding errors.

// xmlBeanMapping is the on-disk shape of one `<bean>` element in a
// constraint-mapping document (a deliberately small subset of the
// reference's three-versioned-schema vocabulary, spec.md §6).
type xmlBeanMapping struct {
	XMLName       xml.Name           `xml:"bean"`
	Class         string             `xml:"class,attr"`
	GroupSequence string             `xml:"group-sequence,attr"`
	Constraints   []xmlConstraint    `xml:"constraint"`
	Fields        []xmlFieldMapping  `xml:"field"`
}

type xmlFieldMapping struct {
	Name        string          `xml:"name,attr"`
	Valid       bool            `xml:"valid,attr"`
	Constraints []xmlConstraint `xml:"constraint"`
}

type xmlConstraint struct {
	Kind       string         `xml:"kind,attr"`
	Groups     string         `xml:"groups,attr"`
	Attributes []xmlAttribute `xml:"attribute"`
}

type xmlAttribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// xmlMappingDocument is the root `<constraint-mappings>` element.
type xmlMappingDocument struct {
	XMLName xml.Name          `xml:"constraint-mappings"`
	Beans   []xmlBeanMapping  `xml:"bean"`
}

// XMLSource is a ForBean backed by a parsed constraint-mapping document
// (spec.md §4.3's "XML source"). It never itself decides MERGE/OVERRIDE/
// ABSTAIN: that's the composing CompositeSource/HierarchySource's job, set
// by the caller when wiring XMLSource alongside a ReflectiveSource.
type XMLSource struct {
	byClass map[string]xmlBeanMapping
}

// LoadXMLSource reads and parses a constraint-mapping document from path.
func LoadXMLSource(path string) (*XMLSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("govalid: reading xml source %s: %w", path, err)
	}
	var doc xmlMappingDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("govalid: parsing xml source %s: %w", path, err)
	}

	byClass := make(map[string]xmlBeanMapping, len(doc.Beans))
	for _, b := range doc.Beans {
		byClass[b.Class] = b
	}
	return &XMLSource{byClass: byClass}, nil
}

func (x *XMLSource) TypeConstraints(t reflect.Type) ([]rawConstraintSpec, error) {
	b, ok := x.byClass[t.Name()]
	if !ok {
		return nil, nil
	}
	return decodeXMLConstraints(b.Constraints)
}

func (x *XMLSource) GroupSequence(t reflect.Type) ([]string, error) {
	b, ok := x.byClass[t.Name()]
	if !ok || b.GroupSequence == "" {
		return nil, nil
	}
	return splitCommaList(b.GroupSequence), nil
}

func (x *XMLSource) Fields(t reflect.Type) ([]rawFieldSpec, error) {
	b, ok := x.byClass[t.Name()]
	if !ok {
		return nil, nil
	}
	out := make([]rawFieldSpec, 0, len(b.Fields))
	for _, f := range b.Fields {
		constraints, err := decodeXMLConstraints(f.Constraints)
		if err != nil {
			return nil, err
		}
		structField, found := t.FieldByName(f.Name)
		var ft reflect.Type
		if found {
			ft = structField.Type
		}
		out = append(out, rawFieldSpec{
			Name:             f.Name,
			Type:             ft,
			Constraints:      constraints,
			IsCascade:        f.Valid,
			GroupConversions: map[string]string{},
		})
	}
	return out, nil
}

func decodeXMLConstraints(in []xmlConstraint) ([]rawConstraintSpec, error) {
	out := make([]rawConstraintSpec, 0, len(in))
	for _, c := range in {
		attrs := map[string]any{}
		for _, a := range c.Attributes {
			attrs[a.Name] = parseAttributeValue(a.Value)
		}
		out = append(out, rawConstraintSpec{Kind: c.Kind, Attributes: attrs, Groups: splitCommaList(c.Groups)})
	}
	return out, nil
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
