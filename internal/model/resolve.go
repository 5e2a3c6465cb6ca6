package model

import "fmt"

type pathEntry struct {
	node   *Node
	index  int
	offset int
}

// ResolvedPos is a position together with the path of ancestor nodes
// that contain it. Depth 0 is the document node.
type ResolvedPos struct {
	// Pos is the resolved offset.
	Pos int

	path         []pathEntry
	depth        int
	parentOffset int
}

// Resolve resolves pos in the document rooted at n.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.content.size {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrPositionOutOfRange, pos, n.content.size)
	}
	var path []pathEntry
	start := 0
	parentOffset := pos
	for node := n; ; {
		index, offset, err := node.content.findIndex(parentOffset)
		if err != nil {
			return nil, err
		}
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, path: path, depth: len(path) - 1, parentOffset: parentOffset}, nil
}

// Depth returns the number of ancestors above the position's parent.
func (r *ResolvedPos) Depth() int {
	return r.depth
}

// ParentOffset returns the offset of the position within its parent.
func (r *ResolvedPos) ParentOffset() int {
	return r.parentOffset
}

// Node returns the ancestor at depth d.
func (r *ResolvedPos) Node(d int) *Node {
	return r.path[d].node
}

// Parent returns the innermost node containing the position.
func (r *ResolvedPos) Parent() *Node {
	return r.path[r.depth].node
}

// Doc returns the root node.
func (r *ResolvedPos) Doc() *Node {
	return r.path[0].node
}

// Index returns the index of the position in the ancestor at depth d.
func (r *ResolvedPos) Index(d int) int {
	return r.path[d].index
}

// IndexAfter returns the index pointing after the position in the
// ancestor at depth d.
func (r *ResolvedPos) IndexAfter(d int) int {
	if d == r.depth && r.TextOffset() == 0 {
		return r.Index(d)
	}
	return r.Index(d) + 1
}

// Start returns the position at the start of the ancestor at depth d.
func (r *ResolvedPos) Start(d int) int {
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset + 1
}

// End returns the position at the end of the ancestor at depth d.
func (r *ResolvedPos) End(d int) int {
	return r.Start(d) + r.Node(d).content.size
}

// Before returns the position directly before the ancestor at depth d.
// d must be at least 1.
func (r *ResolvedPos) Before(d int) int {
	if d < 1 {
		panic("model: no position before the top-level node")
	}
	if d == r.depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset
}

// After returns the position directly after the ancestor at depth d.
// d must be at least 1.
func (r *ResolvedPos) After(d int) int {
	if d < 1 {
		panic("model: no position after the top-level node")
	}
	if d == r.depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset + r.path[d].node.size
}

// TextOffset returns how far into a text node the position points.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[r.depth].offset
}

// NodeAfter returns the node directly after the position, or nil.
// A text node is cut to the part after the position.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if off := r.TextOffset(); off > 0 {
		return child.cutText(off, child.size)
	}
	return child
}

// NodeBefore returns the node directly before the position, or nil.
// A text node is cut to the part before the position.
func (r *ResolvedPos) NodeBefore() *Node {
	parent := r.Parent()
	index := r.Index(r.depth)
	if off := r.TextOffset(); off > 0 {
		return parent.Child(index).cutText(0, off)
	}
	if index == 0 {
		return nil
	}
	return parent.Child(index - 1)
}

// String returns a debug representation.
func (r *ResolvedPos) String() string {
	s := ""
	for d := 1; d <= r.depth; d++ {
		if s != "" {
			s += "/"
		}
		s += fmt.Sprintf("%s_%d", r.Node(d).typ.Name, r.Index(d-1))
	}
	return fmt.Sprintf("%s:%d", s, r.parentOffset)
}
