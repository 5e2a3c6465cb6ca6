package transform

import (
	"fmt"

	"github.com/dshills/tabular/internal/model"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ReplaceStepType is the JSON tag of ReplaceStep.
const ReplaceStepType = "replace"

func init() {
	RegisterStep(ReplaceStepType, decodeReplaceStep)
}

// ReplaceStep replaces the range [From, To) with Content. Both ends must
// share a parent node.
type ReplaceStep struct {
	From    int
	To      int
	Content *model.Fragment
}

// NewReplaceStep creates a replace step. A nil content deletes the range.
func NewReplaceStep(from, to int, content *model.Fragment) *ReplaceStep {
	if content == nil {
		content = model.EmptyFragment()
	}
	return &ReplaceStep{From: from, To: to, Content: content}
}

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *model.Node) Result {
	return FromReplace(doc, s.From, s.To, s.Content)
}

// GetMap implements Step.
func (s *ReplaceStep) GetMap() *StepMap {
	return NewStepMap([]int{s.From, s.To - s.From, s.Content.Size()})
}

// Invert implements Step.
func (s *ReplaceStep) Invert(doc *model.Node) (Step, error) {
	old, err := doc.Slice(s.From, s.To)
	if err != nil {
		return nil, fmt.Errorf("invert replace: %w", err)
	}
	return NewReplaceStep(s.From, s.From+s.Content.Size(), old), nil
}

// Map implements Step.
func (s *ReplaceStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, AssocAfter)
	to := mapping.MapResult(s.To, AssocBefore)
	if from.Deleted && to.Deleted {
		return nil
	}
	return NewReplaceStep(from.Pos, max(from.Pos, to.Pos), s.Content)
}

// StepType implements Step.
func (s *ReplaceStep) StepType() string {
	return ReplaceStepType
}

// String returns a debug representation.
func (s *ReplaceStep) String() string {
	return fmt.Sprintf("replace(%d, %d, %s)", s.From, s.To, s.Content)
}

// MarshalJSON implements Step.
func (s *ReplaceStep) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "stepType", ReplaceStepType); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "from", s.From); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "to", s.To); err != nil {
		return nil, err
	}
	if s.Content.ChildCount() == 0 {
		return out, nil
	}
	if out, err = sjson.SetRawBytes(out, "content", []byte(`[]`)); err != nil {
		return nil, err
	}
	for _, n := range s.Content.Nodes() {
		raw, err := n.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "content.-1", raw); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeReplaceStep(schema *model.Schema, r gjson.Result) (Step, error) {
	from, to := r.Get("from"), r.Get("to")
	if from.Type != gjson.Number || to.Type != gjson.Number {
		return nil, fmt.Errorf("%w: replace step needs numeric from/to", ErrInvalidStepJSON)
	}
	var nodes []*model.Node
	for _, c := range r.Get("content").Array() {
		n, err := schema.NodeFromResult(c)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return NewReplaceStep(int(from.Int()), int(to.Int()), model.NewFragment(nodes...)), nil
}
