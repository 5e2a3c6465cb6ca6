package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var contentElemRe = regexp.MustCompile(`^(\w+)(?:\[([^\]]*)\])?(\+|\*|\?|\{[^}]*\})?$`)

// ContentElement is one element of a parsed content expression.
type ContentElement struct {
	// Types are the node types the element accepts, in schema order.
	Types []*NodeType

	// Min and Max bound the repetition count. Max < 0 means unbounded.
	Min int
	Max int

	// CountAttr, when set, makes the count equal to the parent's
	// attribute of that name.
	CountAttr string

	// AttrConstraints maps child attribute names to the parent attribute
	// whose value they must equal.
	AttrConstraints map[string]string

	name string
}

// bounds returns the repetition bounds for a parent with attrs.
func (e ContentElement) bounds(attrs Attrs) (int, int) {
	if e.CountAttr != "" {
		n, _ := attrs.Int(e.CountAttr)
		return n, n
	}
	return e.Min, e.Max
}

// matches reports whether child may be matched by the element under a
// parent with attrs.
func (e ContentElement) matches(child *Node, attrs Attrs) bool {
	found := false
	for _, t := range e.Types {
		if t == child.Type() {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for childAttr, parentAttr := range e.AttrConstraints {
		if !valueEq(child.attrs[childAttr], attrs[parentAttr]) {
			return false
		}
	}
	return true
}

// fillType returns the type used to generate required content.
func (e ContentElement) fillType() *NodeType {
	for _, t := range e.Types {
		if !t.IsText() {
			return t
		}
	}
	return nil
}

// childAttrs returns the attributes a generated child needs to satisfy
// the element's constraints.
func (e ContentElement) childAttrs(attrs Attrs) Attrs {
	if len(e.AttrConstraints) == 0 {
		return nil
	}
	out := make(Attrs, len(e.AttrConstraints))
	for childAttr, parentAttr := range e.AttrConstraints {
		out[childAttr] = attrs[parentAttr]
	}
	return out
}

func parseContent(s *Schema, expr string) ([]ContentElement, error) {
	var elems []ContentElement
	for _, tok := range strings.Fields(expr) {
		m := contentElemRe.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("bad content element %q", tok)
		}
		types := s.typesFor(m[1])
		if len(types) == 0 {
			return nil, fmt.Errorf("no node type or group %q", m[1])
		}
		e := ContentElement{Types: types, Min: 1, Max: 1, name: m[1]}
		if m[2] != "" {
			e.AttrConstraints = make(map[string]string)
			for _, c := range strings.Split(m[2], ",") {
				parts := strings.SplitN(strings.TrimSpace(c), "=", 2)
				if len(parts) != 2 || !strings.HasPrefix(parts[1], ".") {
					return nil, fmt.Errorf("bad attribute constraint %q", c)
				}
				e.AttrConstraints[parts[0]] = parts[1][1:]
			}
		}
		switch q := m[3]; {
		case q == "+":
			e.Min, e.Max = 1, -1
		case q == "*":
			e.Min, e.Max = 0, -1
		case q == "?":
			e.Min, e.Max = 0, 1
		case strings.HasPrefix(q, "{."):
			e.CountAttr = strings.TrimSuffix(q[2:], "}")
		case strings.HasPrefix(q, "{"):
			n, err := strconv.Atoi(strings.TrimSuffix(q[1:], "}"))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad repeat count %q", q)
			}
			e.Min, e.Max = n, n
		}
		elems = append(elems, e)
	}
	return elems, nil
}
