package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Node is an immutable document tree node.
type Node struct {
	typ     *NodeType
	attrs   Attrs
	content *Fragment
	text    string
	size    int
}

func newNode(t *NodeType, attrs Attrs, content *Fragment, text string) *Node {
	n := &Node{typ: t, attrs: attrs, content: content, text: text}
	switch {
	case t.IsText():
		n.size = utf8.RuneCountInString(text)
	case t.IsLeaf():
		n.size = 1
	default:
		n.size = content.size + 2
	}
	return n
}

// Type returns the node's type.
func (n *Node) Type() *NodeType {
	return n.typ
}

// Attrs returns a copy of the node's attributes.
func (n *Node) Attrs() Attrs {
	return n.attrs.Clone()
}

// Attr returns a single attribute value.
func (n *Node) Attr(name string) any {
	return n.attrs[name]
}

// Content returns the node's children.
func (n *Node) Content() *Fragment {
	return n.content
}

// NodeSize returns the size of the node in the token stream.
func (n *Node) NodeSize() int {
	return n.size
}

// ContentSize returns the size of the node's content.
func (n *Node) ContentSize() int {
	return n.content.size
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return n.content.ChildCount()
}

// Child returns the child at index i. It panics if i is out of range.
func (n *Node) Child(i int) *Node {
	return n.content.Child(i)
}

// MaybeChild returns the child at index i, or nil.
func (n *Node) MaybeChild(i int) *Node {
	return n.content.MaybeChild(i)
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	return n.content.FirstChild()
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	return n.content.LastChild()
}

// ForEach calls fn for every child with its offset and index.
func (n *Node) ForEach(fn func(child *Node, offset, index int)) {
	n.content.ForEach(fn)
}

// IsText reports whether this is a text node.
func (n *Node) IsText() bool {
	return n.typ.IsText()
}

// IsLeaf reports whether the node has no content.
func (n *Node) IsLeaf() bool {
	return n.typ.IsLeaf()
}

// IsInline reports whether the node is inline.
func (n *Node) IsInline() bool {
	return n.typ.IsInline()
}

// IsTextblock reports whether the node holds inline content.
func (n *Node) IsTextblock() bool {
	return n.typ.IsTextblock()
}

// InlineContent reports whether the node's content is inline.
func (n *Node) InlineContent() bool {
	return n.typ.InlineContent()
}

// Text returns the text of a text node.
func (n *Node) Text() string {
	return n.text
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.text
	}
	var sb strings.Builder
	n.content.ForEach(func(child *Node, _, _ int) {
		sb.WriteString(child.TextContent())
	})
	return sb.String()
}

// Copy returns a node of the same type and attributes with new content.
func (n *Node) Copy(content *Fragment) *Node {
	if content == n.content {
		return n
	}
	return newNode(n.typ, n.attrs, content, "")
}

// Cut returns the node with its content cut to [from, to).
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		return n.cutText(from, to)
	}
	if from == 0 && to == n.content.size {
		return n
	}
	return n.Copy(n.content.Cut(from, to))
}

func (n *Node) cutText(from, to int) *Node {
	if from == 0 && to == n.size {
		return n
	}
	runes := []rune(n.text)
	return n.withText(string(runes[from:to]))
}

func (n *Node) withText(text string) *Node {
	return newNode(n.typ, n.attrs, emptyFragment, text)
}

// NodeAt returns the node directly after pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.content.findIndex(pos)
		if err != nil {
			return nil
		}
		node = node.content.MaybeChild(index)
		if node == nil {
			return nil
		}
		if offset == pos || node.IsText() {
			return node
		}
		pos -= offset + 1
	}
}

// Replace returns a new tree where [from, to) is replaced by content.
// Both ends must share a parent node; the result is validated against
// that parent's content expression.
func (n *Node) Replace(from, to int, content *Fragment) (*Node, error) {
	if content == nil {
		content = emptyFragment
	}
	if from > to {
		return nil, &ReplaceError{From: from, To: to, Message: "inverted range"}
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, &ReplaceError{From: from, To: to, Message: err.Error(), Err: err}
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, &ReplaceError{From: from, To: to, Message: err.Error(), Err: err}
	}
	if rFrom.Depth() != rTo.Depth() || rFrom.Start(rFrom.Depth()) != rTo.Start(rTo.Depth()) {
		return nil, &ReplaceError{From: from, To: to, Message: "range crosses node boundaries"}
	}
	return replaceFlat(n, rFrom, rTo, content, 0)
}

func replaceFlat(node *Node, rFrom, rTo *ResolvedPos, content *Fragment, depth int) (*Node, error) {
	if depth == rFrom.Depth() {
		c := node.content
		joined := c.Cut(0, rFrom.ParentOffset()).Append(content).Append(c.Cut(rTo.ParentOffset(), c.size))
		if err := node.typ.ValidContent(joined, node.attrs); err != nil {
			return nil, &ReplaceError{From: rFrom.Pos, To: rTo.Pos, Message: err.Error(), Err: err}
		}
		return node.Copy(joined), nil
	}
	index := rFrom.Index(depth)
	child, err := replaceFlat(node.Child(index), rFrom, rTo, content, depth+1)
	if err != nil {
		return nil, err
	}
	return node.Copy(node.content.ReplaceChild(index, child)), nil
}

// Slice returns the content between from and to, which must share a parent.
func (n *Node) Slice(from, to int) (*Fragment, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	if from > to || rFrom.Depth() != rTo.Depth() || rFrom.Start(rFrom.Depth()) != rTo.Start(rTo.Depth()) {
		return nil, &ReplaceError{From: from, To: to, Message: "slice crosses node boundaries"}
	}
	return rFrom.Parent().content.Cut(rFrom.ParentOffset(), rTo.ParentOffset()), nil
}

// Eq reports whether two nodes are structurally equal.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if other == nil {
		return false
	}
	return n.typ == other.typ &&
		n.text == other.text &&
		n.attrs.Eq(other.attrs) &&
		n.content.Eq(other.content)
}

// Check validates the node and its descendants against the schema.
func (n *Node) Check() error {
	if n.IsText() {
		return nil
	}
	for name := range n.typ.Spec.Attrs {
		if _, ok := n.attrs[name]; !ok {
			return fmt.Errorf("%w: %q on %s", ErrMissingAttribute, name, n.typ.Name)
		}
	}
	if err := n.typ.ValidContent(n.content, n.attrs); err != nil {
		return err
	}
	for _, child := range n.content.content {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// String returns a debug representation such as
// table(table_row(table_cell(paragraph("a")))).
func (n *Node) String() string {
	if n.IsText() {
		return strconv.Quote(n.text)
	}
	if n.content.ChildCount() == 0 {
		return n.typ.Name
	}
	return n.typ.Name + "(" + strings.Trim(n.content.String(), "<>") + ")"
}
