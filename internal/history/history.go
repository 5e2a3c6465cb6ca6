package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/tabular/internal/state"
	"github.com/dshills/tabular/internal/transform"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// MetaAddToHistory is the transaction metadata key that, when set to
// false, keeps a transaction out of the history.
const MetaAddToHistory = "addToHistory"

// DefaultMaxEntries is used when NewHistory is given a non-positive limit.
const DefaultMaxEntries = 1000

// entry is one undo unit: steps that revert it, in apply order.
type entry struct {
	steps       []transform.Step
	selection   state.Selection
	description string
	timestamp   time.Time
}

// EntryInfo describes an undo or redo entry.
type EntryInfo struct {
	Description string
	Steps       int
	Timestamp   time.Time
}

func (e *entry) info() EntryInfo {
	return EntryInfo{Description: e.description, Steps: len(e.steps), Timestamp: e.timestamp}
}

// History manages undo/redo stacks for an editor state.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// Grouping state
	grouping bool
	group    *entry

	maxEntries int
}

// NewHistory creates a history keeping at most maxEntries undo entries.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// invertSteps returns the steps that revert tr, in apply order.
func invertSteps(tr *state.Transaction) ([]transform.Step, error) {
	steps, docs := tr.Steps(), tr.Docs()
	out := make([]transform.Step, len(steps))
	for i, step := range steps {
		inv, err := step.Invert(docs[i])
		if err != nil {
			return nil, fmt.Errorf("invert %s: %w", step.StepType(), err)
		}
		out[len(steps)-1-i] = inv
	}
	return out, nil
}

// Record adds an applied transaction to the undo stack and clears the
// redo stack. Transactions without steps, or with MetaAddToHistory set
// to false, are ignored.
func (h *History) Record(tr *state.Transaction, description string) error {
	if !tr.DocChanged() {
		return nil
	}
	if add, ok := tr.Meta(MetaAddToHistory).(bool); ok && !add {
		return nil
	}
	steps, err := invertSteps(tr)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if h.group.steps == nil {
			h.group.selection = tr.SelectionBefore()
		}
		h.group.steps = append(steps, h.group.steps...)
		return nil
	}

	h.pushLocked(&entry{
		steps:       steps,
		selection:   tr.SelectionBefore(),
		description: description,
		timestamp:   time.Now(),
	})
	return nil
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *entry) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// revert applies e to st and returns the new state together with the
// entry that reverts the revert.
func revert(st *state.EditorState, e *entry) (*state.EditorState, *entry, error) {
	tr := st.Tr()
	for _, step := range e.steps {
		if err := tr.Step(step); err != nil {
			return nil, nil, err
		}
	}
	tr.SetSelection(e.selection)
	tr.SetMeta(MetaAddToHistory, false)

	back, err := invertSteps(tr)
	if err != nil {
		return nil, nil, err
	}
	next, err := st.Apply(tr)
	if err != nil {
		return nil, nil, err
	}
	return next, &entry{
		steps:       back,
		selection:   st.Selection(),
		description: e.description,
		timestamp:   time.Now(),
	}, nil
}

// Undo reverts the last recorded entry and returns the resulting state.
// On failure the entry stays on the stack.
func (h *History) Undo(st *state.EditorState) (*state.EditorState, error) {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	next, redo, err := revert(st, e)
	if err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, e)
		h.mu.Unlock()
		return nil, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, redo)
	h.mu.Unlock()
	return next, nil
}

// Redo reapplies the last undone entry and returns the resulting state.
func (h *History) Redo(st *state.EditorState) (*state.EditorState, error) {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	next, undo, err := revert(st, e)
	if err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, e)
		h.mu.Unlock()
		return nil, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, undo)
	h.mu.Unlock()
	return next, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = nil
}

// UndoInfo describes the undo entries, oldest first.
func (h *History) UndoInfo() []EntryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]EntryInfo, len(h.undoStack))
	for i, e := range h.undoStack {
		result[i] = e.info()
	}
	return result
}

// PeekUndo describes the next undo entry without removing it.
func (h *History) PeekUndo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return EntryInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo describes the next redo entry without removing it.
func (h *History) PeekRedo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return EntryInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = n
	if len(h.undoStack) > n {
		h.undoStack = h.undoStack[len(h.undoStack)-n:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
