package transform

import (
	"fmt"

	"github.com/dshills/tabular/internal/model"
)

// Transform accumulates steps applied to a document, keeping every
// intermediate document and the combined mapping.
type Transform struct {
	doc     *model.Node
	docs    []*model.Node
	steps   []Step
	mapping *Mapping
}

// NewTransform starts a transform at doc.
func NewTransform(doc *model.Node) *Transform {
	return &Transform{doc: doc, mapping: NewMapping()}
}

// Doc returns the current document.
func (tr *Transform) Doc() *model.Node {
	return tr.doc
}

// Before returns the document the transform started from.
func (tr *Transform) Before() *model.Node {
	if len(tr.docs) > 0 {
		return tr.docs[0]
	}
	return tr.doc
}

// Steps returns the applied steps.
func (tr *Transform) Steps() []Step {
	out := make([]Step, len(tr.steps))
	copy(out, tr.steps)
	return out
}

// Docs returns the document before each step.
func (tr *Transform) Docs() []*model.Node {
	out := make([]*model.Node, len(tr.docs))
	copy(out, tr.docs)
	return out
}

// Mapping returns the combined mapping of all steps.
func (tr *Transform) Mapping() *Mapping {
	return tr.mapping
}

// DocChanged reports whether any step was applied.
func (tr *Transform) DocChanged() bool {
	return len(tr.steps) > 0
}

// Step applies step, returning an error wrapping ErrStepFailed if it
// does not apply.
func (tr *Transform) Step(step Step) error {
	res := tr.MaybeStep(step)
	if res.Failed() {
		return fmt.Errorf("%w: %s: %w", ErrStepFailed, step.StepType(), res.Err)
	}
	return nil
}

// MaybeStep applies step if it fits the current document.
func (tr *Transform) MaybeStep(step Step) Result {
	res := step.Apply(tr.doc)
	if !res.Failed() {
		tr.addStep(step, res.Doc, -1)
	}
	return res
}

// MaybeStepMirrored is MaybeStep for a step that mirrors the step
// whose map is at index mirrors in the mapping.
func (tr *Transform) MaybeStepMirrored(step Step, mirrors int) Result {
	res := step.Apply(tr.doc)
	if !res.Failed() {
		tr.addStep(step, res.Doc, mirrors)
	}
	return res
}

func (tr *Transform) addStep(step Step, doc *model.Node, mirrors int) {
	tr.docs = append(tr.docs, tr.doc)
	tr.steps = append(tr.steps, step)
	tr.mapping.AppendMap(step.GetMap(), mirrors)
	tr.doc = doc
}
