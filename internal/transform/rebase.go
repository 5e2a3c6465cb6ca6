package transform

import (
	"fmt"

	"github.com/dshills/tabular/internal/model"
)

// Rebaseable is a locally applied step together with its inverse.
type Rebaseable struct {
	Step     Step
	Inverted Step
	Origin   any
}

// NewRebaseable pairs step with its inverse computed against doc, the
// document the step was applied to.
func NewRebaseable(step Step, doc *model.Node, origin any) (Rebaseable, error) {
	inv, err := step.Invert(doc)
	if err != nil {
		return Rebaseable{}, err
	}
	return Rebaseable{Step: step, Inverted: inv, Origin: origin}, nil
}

// RebaseSteps moves local steps on top of over. tr must start at the
// document that has the local steps applied. The local steps are undone,
// over is applied, and each local step is mapped and reapplied. Steps
// that no longer apply are dropped from the result.
func RebaseSteps(tr *Transform, steps []Rebaseable, over []Step) ([]Rebaseable, error) {
	base := tr.Mapping().Len()
	for i := len(steps) - 1; i >= 0; i-- {
		if err := tr.Step(steps[i].Inverted); err != nil {
			return nil, fmt.Errorf("undo local step %d: %w", i, err)
		}
	}
	for i, s := range over {
		if err := tr.Step(s); err != nil {
			return nil, fmt.Errorf("apply remote step %d: %w", i, err)
		}
	}

	var result []Rebaseable
	mapFrom := base + len(steps)
	for _, s := range steps {
		mapped := s.Step.Map(tr.Mapping().SliceFrom(mapFrom))
		mapFrom--
		if mapped == nil {
			continue
		}
		before := tr.Doc()
		if res := tr.MaybeStepMirrored(mapped, mapFrom); res.Failed() {
			continue
		}
		inv, err := mapped.Invert(before)
		if err != nil {
			return nil, err
		}
		result = append(result, Rebaseable{Step: mapped, Inverted: inv, Origin: s.Origin})
	}
	return result, nil
}

// MapSteps rebases a chain of steps, which starts at the same document as
// over, so that it starts at the document over produces. It only needs
// the step maps. The result has one entry per input step; dropped steps
// are nil.
func MapSteps(steps []Step, over *Mapping) []Step {
	out, _ := MapChain(steps, over)
	return out
}

// ChainMapping maps positions from the documents along a chain of steps
// onto the documents along the rebased chain.
type ChainMapping struct {
	mapping *Mapping
	n       int
	ends    []int
}

// At returns the mapping for the document reached after the first i steps
// of the original chain. At(0) maps the chain's start document.
func (c *ChainMapping) At(i int) *Mapping {
	return c.mapping.Slice(c.n-i, c.ends[i])
}

// MapChain is MapSteps that also returns the mapping for every
// intermediate document of the chain.
func MapChain(steps []Step, over *Mapping) ([]Step, *ChainMapping) {
	mapping := NewMapping()
	for i := len(steps) - 1; i >= 0; i-- {
		mapping.AppendMap(steps[i].GetMap().Invert(), -1)
	}
	mapping.AppendMapping(over)

	out := make([]Step, len(steps))
	ends := make([]int, 0, len(steps)+1)
	ends = append(ends, mapping.Len())
	mapFrom := len(steps)
	for i, s := range steps {
		mapped := s.Map(mapping.SliceFrom(mapFrom))
		mapFrom--
		if mapped != nil {
			mapping.AppendMap(mapped.GetMap(), mapFrom)
			out[i] = mapped
		}
		ends = append(ends, mapping.Len())
	}
	return out, &ChainMapping{mapping: mapping, n: len(steps), ends: ends}
}
