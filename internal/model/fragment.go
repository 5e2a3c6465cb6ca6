package model

import (
	"fmt"
	"strings"
)

var emptyFragment = &Fragment{}

// Fragment is an immutable sequence of nodes, the content of a node.
type Fragment struct {
	content []*Node
	size    int
}

// EmptyFragment returns the empty fragment.
func EmptyFragment() *Fragment {
	return emptyFragment
}

// NewFragment builds a fragment from nodes. Adjacent text nodes are
// joined and empty text nodes dropped.
func NewFragment(nodes ...*Node) *Fragment {
	if len(nodes) == 0 {
		return emptyFragment
	}
	content := make([]*Node, 0, len(nodes))
	size := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.IsText() {
			if n.text == "" {
				continue
			}
			if last := len(content) - 1; last >= 0 && content[last].IsText() {
				joined := content[last].withText(content[last].text + n.text)
				size += n.size
				content[last] = joined
				continue
			}
		}
		content = append(content, n)
		size += n.size
	}
	if len(content) == 0 {
		return emptyFragment
	}
	return &Fragment{content: content, size: size}
}

// Size returns the total size of the fragment's nodes.
func (f *Fragment) Size() int {
	return f.size
}

// ChildCount returns the number of nodes.
func (f *Fragment) ChildCount() int {
	return len(f.content)
}

// Child returns the node at index i. It panics if i is out of range.
func (f *Fragment) Child(i int) *Node {
	return f.content[i]
}

// MaybeChild returns the node at index i, or nil.
func (f *Fragment) MaybeChild(i int) *Node {
	if i < 0 || i >= len(f.content) {
		return nil
	}
	return f.content[i]
}

// FirstChild returns the first node, or nil.
func (f *Fragment) FirstChild() *Node {
	return f.MaybeChild(0)
}

// LastChild returns the last node, or nil.
func (f *Fragment) LastChild() *Node {
	return f.MaybeChild(len(f.content) - 1)
}

// Nodes returns a copy of the node list.
func (f *Fragment) Nodes() []*Node {
	out := make([]*Node, len(f.content))
	copy(out, f.content)
	return out
}

// ForEach calls fn for every node with its offset from the start of the
// fragment and its index.
func (f *Fragment) ForEach(fn func(node *Node, offset, index int)) {
	pos := 0
	for i, child := range f.content {
		fn(child, pos, i)
		pos += child.size
	}
}

// OffsetAt returns the offset of the node at index.
func (f *Fragment) OffsetAt(index int) int {
	pos := 0
	for i := 0; i < index && i < len(f.content); i++ {
		pos += f.content[i].size
	}
	return pos
}

// Append returns the concatenation of f and other.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other.size == 0 && len(other.content) == 0 {
		return f
	}
	if f.size == 0 && len(f.content) == 0 {
		return other
	}
	nodes := make([]*Node, 0, len(f.content)+len(other.content))
	nodes = append(nodes, f.content...)
	nodes = append(nodes, other.content...)
	return NewFragment(nodes...)
}

// ReplaceChild returns a fragment with the node at index replaced.
func (f *Fragment) ReplaceChild(index int, node *Node) *Fragment {
	if f.content[index] == node {
		return f
	}
	nodes := f.Nodes()
	nodes[index] = node
	return NewFragment(nodes...)
}

// Cut returns the part of the fragment between from and to.
func (f *Fragment) Cut(from, to int) *Fragment {
	if from <= 0 && to >= f.size {
		return f
	}
	var result []*Node
	pos := 0
	for _, child := range f.content {
		if pos >= to {
			break
		}
		end := pos + child.size
		if end > from {
			if pos < from || end > to {
				if child.IsText() {
					child = child.cutText(max(0, from-pos), min(child.size, to-pos))
				} else {
					child = child.Cut(max(0, from-pos-1), min(child.content.size, to-pos-1))
				}
			}
			result = append(result, child)
		}
		pos = end
	}
	return NewFragment(result...)
}

// Eq reports whether two fragments hold equal nodes.
func (f *Fragment) Eq(other *Fragment) bool {
	if len(f.content) != len(other.content) {
		return false
	}
	for i := range f.content {
		if !f.content[i].Eq(other.content[i]) {
			return false
		}
	}
	return true
}

// String returns a debug representation.
func (f *Fragment) String() string {
	parts := make([]string, len(f.content))
	for i, n := range f.content {
		parts[i] = n.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// findIndex returns the index of the child containing pos and the offset
// at which that child starts.
func (f *Fragment) findIndex(pos int) (int, int, error) {
	if pos == 0 {
		return 0, 0, nil
	}
	if pos == f.size {
		return len(f.content), pos, nil
	}
	if pos > f.size || pos < 0 {
		return 0, 0, fmt.Errorf("%w: %d in fragment of size %d", ErrPositionOutOfRange, pos, f.size)
	}
	cur := 0
	for i, child := range f.content {
		end := cur + child.size
		if end >= pos {
			if end == pos {
				return i + 1, end, nil
			}
			return i, cur, nil
		}
		cur = end
	}
	return len(f.content), f.size, nil
}
