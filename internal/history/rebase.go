package history

import (
	"github.com/dshills/tabular/internal/transform"
)

// Rebase maps the stored steps through mapping, which must start at the
// document the history currently applies to. Steps that no longer apply
// are dropped, and so are entries left without steps.
func (h *History) Rebase(mapping *transform.Mapping) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = rebaseStack(h.undoStack, mapping)
	h.redoStack = rebaseStack(h.redoStack, mapping)
}

// rebaseStack maps a stack whose newest entry applies to the current
// document. The entries form one chain of steps, newest first. An entry's
// selection belongs to the document its steps produce, so it is mapped
// through the chain mapping at that point.
func rebaseStack(stack []*entry, mapping *transform.Mapping) []*entry {
	var chain []transform.Step
	for i := len(stack) - 1; i >= 0; i-- {
		chain = append(chain, stack[i].steps...)
	}
	mapped, chainMap := transform.MapChain(chain, mapping)

	out := make([]*entry, len(stack))
	pos := 0
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		var steps []transform.Step
		for range e.steps {
			if s := mapped[pos]; s != nil {
				steps = append(steps, s)
			}
			pos++
		}
		out[i] = &entry{
			steps:       steps,
			selection:   e.selection.Map(chainMap.At(pos)),
			description: e.description,
			timestamp:   e.timestamp,
		}
	}

	kept := out[:0]
	for _, e := range out {
		if len(e.steps) > 0 {
			kept = append(kept, e)
		}
	}
	return kept
}
