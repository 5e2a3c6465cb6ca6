package state

import (
	"fmt"

	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/transform"
)

// Selection is a text selection. Anchor stays put when the selection is
// extended; Head moves.
type Selection struct {
	Anchor int
	Head   int
}

// NewSelection creates a selection.
func NewSelection(anchor, head int) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// Cursor creates an empty selection at pos.
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// From returns the lower bound of the selection.
func (s Selection) From() int {
	return min(s.Anchor, s.Head)
}

// To returns the upper bound of the selection.
func (s Selection) To() int {
	return max(s.Anchor, s.Head)
}

// Empty reports whether the selection is a cursor.
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

// Map maps the selection through a mapping.
func (s Selection) Map(m transform.Mappable) Selection {
	return Selection{
		Anchor: m.Map(s.Anchor, transform.AssocAfter),
		Head:   m.Map(s.Head, transform.AssocAfter),
	}
}

// String returns a debug representation.
func (s Selection) String() string {
	if s.Empty() {
		return fmt.Sprintf("cursor(%d)", s.Head)
	}
	return fmt.Sprintf("selection(%d, %d)", s.Anchor, s.Head)
}

// FindSelectionFrom finds a cursor position inside inline content,
// starting at rp and searching in direction dir (1 or -1), first among
// the parent's children and then outward.
func FindSelectionFrom(rp *model.ResolvedPos, dir int) (Selection, bool) {
	if rp.Parent().InlineContent() {
		return Cursor(rp.Pos), true
	}
	if pos, ok := findSelectionIn(rp.Parent(), rp.Pos, rp.Index(rp.Depth()), dir); ok {
		return Cursor(pos), true
	}
	for d := rp.Depth() - 1; d >= 0; d-- {
		var pos int
		var ok bool
		if dir < 0 {
			pos, ok = findSelectionIn(rp.Node(d), rp.Before(d+1), rp.Index(d), dir)
		} else {
			pos, ok = findSelectionIn(rp.Node(d), rp.After(d+1), rp.Index(d)+1, dir)
		}
		if ok {
			return Cursor(pos), true
		}
	}
	return Selection{}, false
}

// AtStart returns the first cursor position in doc.
func AtStart(doc *model.Node) (Selection, bool) {
	pos, ok := findSelectionIn(doc, 0, 0, 1)
	if !ok {
		return Selection{}, false
	}
	return Cursor(pos), true
}

// AtEnd returns the last cursor position in doc.
func AtEnd(doc *model.Node) (Selection, bool) {
	pos, ok := findSelectionIn(doc, doc.ContentSize(), doc.ChildCount(), -1)
	if !ok {
		return Selection{}, false
	}
	return Cursor(pos), true
}

func findSelectionIn(node *model.Node, pos, index, dir int) (int, bool) {
	if node.InlineContent() {
		return pos, true
	}
	i := index
	if dir < 0 {
		i = index - 1
	}
	for ; (dir > 0 && i < node.ChildCount()) || (dir < 0 && i >= 0); i += dir {
		child := node.Child(i)
		if !child.IsLeaf() {
			start := 0
			if dir < 0 {
				start = child.ChildCount()
			}
			if p, ok := findSelectionIn(child, pos+dir, start, dir); ok {
				return p, true
			}
		}
		pos += child.NodeSize() * dir
	}
	return 0, false
}
