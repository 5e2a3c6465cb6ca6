package model

import (
	"fmt"
	"strings"
)

// AttributeSpec describes a node attribute.
// A nil Default makes the attribute required.
type AttributeSpec struct {
	Default any
}

// NodeSpec describes a node type.
type NodeSpec struct {
	// Content is the content expression. Empty means the node is a leaf.
	Content string

	// Group is a space-separated list of groups the type belongs to.
	Group string

	// Attrs lists the attributes nodes of this type carry.
	Attrs map[string]AttributeSpec

	// Inline marks inline nodes. Text is always inline.
	Inline bool

	// TableRole tags nodes that take part in table structure
	// ("table", "row" or "cell").
	TableRole string
}

// NamedSpec pairs a node spec with its type name. Schemas keep the
// order of their specs; group lookups return types in that order.
type NamedSpec struct {
	Name string
	Spec NodeSpec
}

// SchemaSpec describes a schema.
type SchemaSpec struct {
	Nodes []NamedSpec

	// TopNode names the document node type. Defaults to "doc".
	TopNode string
}

// Schema is a set of node types.
type Schema struct {
	types map[string]*NodeType
	order []*NodeType
	top   *NodeType
	text  *NodeType
}

// NewSchema builds a schema from its specification.
func NewSchema(spec SchemaSpec) (*Schema, error) {
	s := &Schema{types: make(map[string]*NodeType, len(spec.Nodes))}

	for _, ns := range spec.Nodes {
		if ns.Name == "" {
			return nil, fmt.Errorf("%w: node type without name", ErrInvalidSchema)
		}
		if _, dup := s.types[ns.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate node type %q", ErrInvalidSchema, ns.Name)
		}
		t := &NodeType{
			Name:   ns.Name,
			Spec:   ns.Spec,
			schema: s,
			groups: strings.Fields(ns.Spec.Group),
		}
		s.types[ns.Name] = t
		s.order = append(s.order, t)
	}

	for _, t := range s.order {
		elems, err := parseContent(s, t.Spec.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: node type %q: %v", ErrInvalidSchema, t.Name, err)
		}
		t.content = elems
	}

	topName := spec.TopNode
	if topName == "" {
		topName = "doc"
	}
	s.top = s.types[topName]
	if s.top == nil {
		return nil, fmt.Errorf("%w: missing top node type %q", ErrInvalidSchema, topName)
	}
	s.text = s.types["text"]
	if s.text == nil {
		return nil, fmt.Errorf("%w: missing text node type", ErrInvalidSchema)
	}
	return s, nil
}

// NodeType returns the named node type, or nil.
func (s *Schema) NodeType(name string) *NodeType {
	return s.types[name]
}

// TopNodeType returns the document node type.
func (s *Schema) TopNodeType() *NodeType {
	return s.top
}

// NodeTypes returns all node types in schema order.
func (s *Schema) NodeTypes() []*NodeType {
	out := make([]*NodeType, len(s.order))
	copy(out, s.order)
	return out
}

// Text creates a text node.
func (s *Schema) Text(text string) *Node {
	return newNode(s.text, Attrs{}, emptyFragment, text)
}

// Node creates a node of the named type.
func (s *Schema) Node(name string, attrs Attrs, content ...*Node) (*Node, error) {
	t := s.types[name]
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, name)
	}
	return t.Create(attrs, NewFragment(content...))
}

// typesFor returns the node types named by name, either directly or as group.
func (s *Schema) typesFor(name string) []*NodeType {
	if t, ok := s.types[name]; ok {
		return []*NodeType{t}
	}
	var out []*NodeType
	for _, t := range s.order {
		for _, g := range t.groups {
			if g == name {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// NodeType describes a kind of node.
type NodeType struct {
	Name string
	Spec NodeSpec

	schema  *Schema
	groups  []string
	content []ContentElement
}

// Schema returns the schema the type belongs to.
func (t *NodeType) Schema() *Schema {
	return t.schema
}

// IsText reports whether this is the text type.
func (t *NodeType) IsText() bool {
	return t.Name == "text"
}

// IsInline reports whether nodes of this type are inline.
func (t *NodeType) IsInline() bool {
	return t.Spec.Inline || t.IsText()
}

// IsLeaf reports whether nodes of this type have no content.
func (t *NodeType) IsLeaf() bool {
	return len(t.content) == 0
}

// InlineContent reports whether the type's content is inline.
func (t *NodeType) InlineContent() bool {
	if len(t.content) == 0 {
		return false
	}
	for _, e := range t.content {
		for _, ct := range e.Types {
			if !ct.IsInline() {
				return false
			}
		}
	}
	return true
}

// IsTextblock reports whether nodes of this type hold inline content.
func (t *NodeType) IsTextblock() bool {
	return !t.IsInline() && t.InlineContent()
}

// IsTableRow reports whether the type carries the table row capability.
func (t *NodeType) IsTableRow() bool {
	return t.Spec.TableRole == "row"
}

// InGroup reports whether the type belongs to the named group.
func (t *NodeType) InGroup(group string) bool {
	for _, g := range t.groups {
		if g == group {
			return true
		}
	}
	return false
}

// ContentElements returns the parsed content expression.
func (t *NodeType) ContentElements() []ContentElement {
	out := make([]ContentElement, len(t.content))
	copy(out, t.content)
	return out
}

// ComputeAttrs fills in defaults and rejects missing required attributes.
func (t *NodeType) ComputeAttrs(attrs Attrs) (Attrs, error) {
	out := make(Attrs, len(t.Spec.Attrs))
	for name, spec := range t.Spec.Attrs {
		if v, ok := attrs[name]; ok && v != nil {
			out[name] = normalizeValue(v)
			continue
		}
		if spec.Default == nil {
			return nil, fmt.Errorf("%w: %q on %s", ErrMissingAttribute, name, t.Name)
		}
		out[name] = normalizeValue(spec.Default)
	}
	return out, nil
}

// Create creates a node of this type. The content is not validated;
// use CreateChecked or Node.Check for that.
func (t *NodeType) Create(attrs Attrs, content *Fragment) (*Node, error) {
	if t.IsText() {
		return nil, fmt.Errorf("%w: text nodes are created with Schema.Text", ErrInvalidContent)
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	if content == nil {
		content = emptyFragment
	}
	return newNode(t, computed, content, ""), nil
}

// CreateChecked is like Create but validates the content.
func (t *NodeType) CreateChecked(attrs Attrs, content *Fragment) (*Node, error) {
	n, err := t.Create(attrs, content)
	if err != nil {
		return nil, err
	}
	if err := t.ValidContent(n.content, n.attrs); err != nil {
		return nil, err
	}
	return n, nil
}

// CreateAndFill creates a node of this type with the minimal valid
// content. Returns nil if no such content can be generated.
func (t *NodeType) CreateAndFill(attrs Attrs) *Node {
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil
	}
	var children []*Node
	for _, e := range t.content {
		lo, _ := e.bounds(computed)
		if lo == 0 {
			continue
		}
		fill := e.fillType()
		if fill == nil {
			return nil
		}
		childAttrs := e.childAttrs(computed)
		for i := 0; i < lo; i++ {
			child := fill.CreateAndFill(childAttrs)
			if child == nil {
				return nil
			}
			children = append(children, child)
		}
	}
	return newNode(t, computed, NewFragment(children...), "")
}

// ValidContent checks that content matches the type's content expression
// for a node carrying attrs.
func (t *NodeType) ValidContent(content *Fragment, attrs Attrs) error {
	idx := 0
	n := content.ChildCount()
	for _, e := range t.content {
		lo, hi := e.bounds(attrs)
		count := 0
		for idx < n && (hi < 0 || count < hi) {
			child := content.Child(idx)
			if !e.matches(child, attrs) {
				break
			}
			idx++
			count++
		}
		if count < lo {
			return fmt.Errorf("%w: %s expects at least %d %s, got %d", ErrInvalidContent, t.Name, lo, e.name, count)
		}
	}
	if idx < n {
		return fmt.Errorf("%w: %s cannot contain %s at index %d", ErrInvalidContent, t.Name, content.Child(idx).Type().Name, idx)
	}
	return nil
}
