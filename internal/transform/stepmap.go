package transform

import (
	"fmt"
	"strings"
)

// Association sides used when mapping a position that sits exactly at
// the edge of a changed range.
const (
	// AssocBefore keeps the position with the content before it.
	AssocBefore = -1
	// AssocAfter keeps the position with the content after it.
	AssocAfter = 1
)

// Mappable is anything positions can be mapped through.
type Mappable interface {
	Map(pos, assoc int) int
	MapResult(pos, assoc int) MapResult
}

// recoverPoint records which range a mapped position fell into and how
// far into it, so a mirrored map can put it back.
type recoverPoint struct {
	index  int
	offset int
}

// MapResult is the detailed outcome of mapping a position.
type MapResult struct {
	// Pos is the mapped position.
	Pos int

	// Deleted reports whether the content on the associated side of the
	// position was deleted.
	Deleted bool

	recover *recoverPoint
}

// StepMap describes the position changes made by a single step as a list
// of independent, non-overlapping replaced ranges in ascending order.
type StepMap struct {
	ranges   []int
	inverted bool
}

// EmptyStepMap is a map that changes nothing.
var EmptyStepMap = &StepMap{}

// NewStepMap creates a map from flat (start, oldSize, newSize) triples.
func NewStepMap(ranges []int) *StepMap {
	if len(ranges) == 0 {
		return EmptyStepMap
	}
	if len(ranges)%3 != 0 {
		panic(fmt.Sprintf("transform: step map ranges must be triples, got %d values", len(ranges)))
	}
	r := make([]int, len(ranges))
	copy(r, ranges)
	return &StepMap{ranges: r}
}

// Ranges returns a copy of the flat range triples.
func (m *StepMap) Ranges() []int {
	out := make([]int, len(m.ranges))
	copy(out, m.ranges)
	return out
}

// Invert returns the map that maps positions back.
func (m *StepMap) Invert() *StepMap {
	return &StepMap{ranges: m.ranges, inverted: !m.inverted}
}

// Map maps pos through the map.
func (m *StepMap) Map(pos, assoc int) int {
	return m.mapResult(pos, assoc).Pos
}

// MapResult maps pos and reports whether it was deleted.
func (m *StepMap) MapResult(pos, assoc int) MapResult {
	return m.mapResult(pos, assoc)
}

func (m *StepMap) mapResult(pos, assoc int) MapResult {
	diff := 0
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			side := assoc
			if oldSize != 0 {
				switch pos {
				case start:
					side = -1
				case end:
					side = 1
				}
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			edge := end
			if assoc < 0 {
				edge = start
			}
			var rp *recoverPoint
			if pos != edge {
				rp = &recoverPoint{index: i / 3, offset: pos - start}
			}
			deleted := pos != end
			if assoc < 0 {
				deleted = pos != start
			}
			return MapResult{Pos: result, Deleted: deleted, recover: rp}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff}
}

// recoverPos returns the position a recover point describes in this
// map's output.
func (m *StepMap) recoverPos(rp *recoverPoint) int {
	diff := 0
	if !m.inverted {
		for i := 0; i < rp.index; i++ {
			diff += m.ranges[i*3+2] - m.ranges[i*3+1]
		}
	}
	return m.ranges[rp.index*3] + diff + rp.offset
}

// ForEach calls fn for each changed range with its old and new extent.
func (m *StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	diff := 0
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		oldStart := start
		if m.inverted {
			oldStart -= diff
		}
		newStart := start
		if !m.inverted {
			newStart += diff
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// String returns a debug representation.
func (m *StepMap) String() string {
	var sb strings.Builder
	if m.inverted {
		sb.WriteString("-")
	}
	sb.WriteString("[")
	for i, v := range m.ranges {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	sb.WriteString("]")
	return sb.String()
}

// Mapping is a pipeline of step maps.
type Mapping struct {
	maps   []*StepMap
	mirror map[int]int
	from   int
	to     int
}

// NewMapping creates a mapping over maps.
func NewMapping(maps ...*StepMap) *Mapping {
	m := &Mapping{}
	for _, sm := range maps {
		m.AppendMap(sm, -1)
	}
	return m
}

// Maps returns the maps in the active range of the mapping.
func (m *Mapping) Maps() []*StepMap {
	out := make([]*StepMap, m.to-m.from)
	copy(out, m.maps[m.from:m.to])
	return out
}

// Len returns the total number of maps held.
func (m *Mapping) Len() int {
	return len(m.maps)
}

// Slice returns a mapping over maps [from, to). Mirror information is shared.
func (m *Mapping) Slice(from, to int) *Mapping {
	return &Mapping{maps: m.maps, mirror: m.mirror, from: from, to: to}
}

// SliceFrom returns a mapping over all maps from index from.
func (m *Mapping) SliceFrom(from int) *Mapping {
	return m.Slice(from, len(m.maps))
}

// AppendMap adds a map. When mirrors >= 0 it names the index of the map
// this one mirrors.
func (m *Mapping) AppendMap(sm *StepMap, mirrors int) {
	m.maps = append(m.maps, sm)
	m.to = len(m.maps)
	if mirrors >= 0 {
		m.SetMirror(len(m.maps)-1, mirrors)
	}
}

// AppendMapping adds all maps of other, keeping its mirror pairs.
func (m *Mapping) AppendMapping(other *Mapping) {
	startSize := len(m.maps)
	for i := other.from; i < other.to; i++ {
		mirr := -1
		if j, ok := other.GetMirror(i); ok && j < i && j >= other.from {
			mirr = startSize + j - other.from
		}
		m.AppendMap(other.maps[i], mirr)
	}
}

// SetMirror records that maps n and k undo each other.
func (m *Mapping) SetMirror(n, k int) {
	if m.mirror == nil {
		m.mirror = make(map[int]int)
	}
	m.mirror[n] = k
	m.mirror[k] = n
}

// GetMirror returns the index of the map mirroring map n.
func (m *Mapping) GetMirror(n int) (int, bool) {
	k, ok := m.mirror[n]
	return k, ok
}

// Map maps pos through every map in the mapping.
func (m *Mapping) Map(pos, assoc int) int {
	return m.mapResult(pos, assoc).Pos
}

// MapResult maps pos and reports whether it was deleted along the way.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	return m.mapResult(pos, assoc)
}

func (m *Mapping) mapResult(pos, assoc int) MapResult {
	deleted := false
	for i := m.from; i < m.to; i++ {
		res := m.maps[i].mapResult(pos, assoc)
		if res.recover != nil {
			if corr, ok := m.GetMirror(i); ok && corr > i && corr < m.to {
				i = corr
				pos = m.maps[corr].recoverPos(res.recover)
				continue
			}
		}
		if res.Deleted {
			deleted = true
		}
		pos = res.Pos
	}
	return MapResult{Pos: pos, Deleted: deleted}
}
