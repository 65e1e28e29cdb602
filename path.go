package govalid

import (
	"fmt"
	"strings"
)

// NodeKind identifies the shape of a single Path element.
type NodeKind int

const (
	NodeBean NodeKind = iota
	NodeProperty
	NodeIndex
	NodeKey
	NodeParameter
	NodeReturnValue
	NodeCrossParameter
	NodeContainerElement
)

func (k NodeKind) String() string {
	switch k {
	case NodeBean:
		return "bean"
	case NodeProperty:
		return "property"
	case NodeIndex:
		return "index"
	case NodeKey:
		return "key"
	case NodeParameter:
		return "parameter"
	case NodeReturnValue:
		return "returnValue"
	case NodeCrossParameter:
		return "crossParameter"
	case NodeContainerElement:
		return "containerElement"
	default:
		return "unknown"
	}
}

// Node is a single element of a Path. Which fields are meaningful depends on
// Kind; see the NodeXxx constructors.
type Node struct {
	Kind NodeKind

	Name string // property(name), parameter(name,i), containerElement(name,...)

	Index         int  // index(i), parameter(name,i)
	HasIndex      bool // index() nodes and indexed container elements
	Key           any  // key(k)
	HasKey        bool
	ContainerType string // containerElement(name, containerType, typeArgIndex)
	TypeArgIndex  int
}

func PropertyNode(name string) Node { return Node{Kind: NodeProperty, Name: name} }

func IndexNode(i int) Node { return Node{Kind: NodeIndex, Index: i, HasIndex: true} }

func KeyNode(k any) Node { return Node{Kind: NodeKey, Key: k, HasKey: true} }

func ParameterNode(name string, i int) Node {
	return Node{Kind: NodeParameter, Name: name, Index: i, HasIndex: true}
}

func ReturnValueNode() Node { return Node{Kind: NodeReturnValue} }

func CrossParameterNode() Node { return Node{Kind: NodeCrossParameter} }

func ContainerElementNode(name, containerType string, typeArgIndex int) Node {
	return Node{Kind: NodeContainerElement, Name: name, ContainerType: containerType, TypeArgIndex: typeArgIndex}
}

func BeanNode() Node { return Node{Kind: NodeBean} }

func (n Node) String() string {
	switch n.Kind {
	case NodeProperty:
		return n.Name
	case NodeIndex:
		return fmt.Sprintf("[%d]", n.Index)
	case NodeKey:
		return fmt.Sprintf("[%v]", n.Key)
	case NodeParameter:
		if n.Name != "" {
			return n.Name
		}
		return fmt.Sprintf("arg%d", n.Index)
	case NodeReturnValue:
		return "<return value>"
	case NodeCrossParameter:
		return "<cross-parameter>"
	case NodeContainerElement:
		if n.HasIndex {
			return fmt.Sprintf("%s[%d]", n.Name, n.Index)
		}
		if n.HasKey {
			return fmt.Sprintf("%s[%v]", n.Name, n.Key)
		}
		if n.Name == "" {
			return fmt.Sprintf("<%s value>", n.ContainerType)
		}
		return fmt.Sprintf("%s.<%s value>", n.Name, n.ContainerType)
	case NodeBean:
		return "<bean>"
	default:
		return "?"
	}
}

// Path is an ordered sequence of Nodes describing the route from the
// validation root to an offending element. Path must be deep-copied whenever
// it is shared outward (e.g. recorded on a violation); internal manipulation
// by the builder pipeline and the traversal engine is in-place.
type Path struct {
	nodes []Node
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

// Copy returns a deep copy safe to retain independently of the receiver.
func (p *Path) Copy() *Path {
	cp := make([]Node, len(p.nodes))
	copy(cp, p.nodes)
	return &Path{nodes: cp}
}

// Append mutates the path in place, adding node as the new leaf, and returns
// the receiver for chaining.
func (p *Path) Append(n Node) *Path {
	p.nodes = append(p.nodes, n)
	return p
}

// RemoveLeaf pops the last node off the path in place and returns it. It
// panics if the path is empty, matching the teacher's contract-violation
// panics for programmer errors rather than returning a zero Node silently.
func (p *Path) RemoveLeaf() Node {
	if len(p.nodes) == 0 {
		panic("govalid: RemoveLeaf on empty path")
	}
	leaf := p.nodes[len(p.nodes)-1]
	p.nodes = p.nodes[:len(p.nodes)-1]
	return leaf
}

// Leaf returns the last node, and false if the path is empty.
func (p *Path) Leaf() (Node, bool) {
	if len(p.nodes) == 0 {
		return Node{}, false
	}
	return p.nodes[len(p.nodes)-1], true
}

func (p *Path) Nodes() []Node { return p.nodes }

func (p *Path) Len() int { return len(p.nodes) }

func (p *Path) String() string {
	var b strings.Builder
	for i, n := range p.nodes {
		subscript := n.Kind == NodeIndex || n.Kind == NodeKey ||
			(n.Kind == NodeContainerElement && n.Name == "" && (n.HasIndex || n.HasKey))
		if i > 0 && !subscript {
			b.WriteByte('.')
		}
		b.WriteString(n.String())
	}
	return b.String()
}
