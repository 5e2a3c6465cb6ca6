package state

import (
	"errors"
	"fmt"

	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/transform"
)

// ErrMismatchedTransaction indicates a transaction built from another state.
var ErrMismatchedTransaction = errors.New("transaction was not created from this state")

// Command inspects a state and reports whether it applies. When dispatch
// is non-nil and the command applies, it builds a transaction and passes
// it to dispatch.
type Command func(s *EditorState, dispatch func(tr *Transaction)) bool

// EditorState is an immutable document with a selection.
type EditorState struct {
	doc       *model.Node
	selection Selection
}

// New creates a state. The selection is clamped to the document.
func New(doc *model.Node, sel Selection) *EditorState {
	return &EditorState{doc: doc, selection: clampSelection(doc, sel)}
}

// NewAtStart creates a state with the cursor at the first text position.
func NewAtStart(doc *model.Node) *EditorState {
	sel, _ := AtStart(doc)
	return New(doc, sel)
}

// Doc returns the document.
func (s *EditorState) Doc() *model.Node {
	return s.doc
}

// Selection returns the selection.
func (s *EditorState) Selection() Selection {
	return s.selection
}

// Schema returns the document's schema.
func (s *EditorState) Schema() *model.Schema {
	return s.doc.Type().Schema()
}

// ResolveFrom resolves the start of the selection.
func (s *EditorState) ResolveFrom() (*model.ResolvedPos, error) {
	return s.doc.Resolve(s.selection.From())
}

// WithSelection returns a state with the same document and a new selection.
func (s *EditorState) WithSelection(sel Selection) *EditorState {
	return New(s.doc, sel)
}

// Tr starts a transaction on this state.
func (s *EditorState) Tr() *Transaction {
	return &Transaction{
		Transform: transform.NewTransform(s.doc),
		start:     s.selection,
	}
}

// Apply applies a transaction and returns the resulting state.
func (s *EditorState) Apply(tr *Transaction) (*EditorState, error) {
	if tr.Before() != s.doc {
		return nil, ErrMismatchedTransaction
	}
	return New(tr.Doc(), tr.Selection()), nil
}

// Transaction is a Transform that also tracks the selection.
type Transaction struct {
	*transform.Transform

	start     Selection
	selection *Selection
	meta      map[string]any
}

// SetSelection sets the selection the resulting state will have.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	tr.selection = &sel
	return tr
}

// SelectionSet reports whether SetSelection was called.
func (tr *Transaction) SelectionSet() bool {
	return tr.selection != nil
}

// Selection returns the explicitly set selection, or the starting
// selection mapped through the transaction's steps.
func (tr *Transaction) Selection() Selection {
	if tr.selection != nil {
		return *tr.selection
	}
	return tr.start.Map(tr.Mapping())
}

// SelectionBefore returns the selection of the state the transaction
// was started from.
func (tr *Transaction) SelectionBefore() Selection {
	return tr.start
}

// SetMeta stores a metadata value on the transaction.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	if tr.meta == nil {
		tr.meta = make(map[string]any)
	}
	tr.meta[key] = value
	return tr
}

// Meta returns a metadata value.
func (tr *Transaction) Meta(key string) any {
	return tr.meta[key]
}

// String returns a debug representation.
func (tr *Transaction) String() string {
	return fmt.Sprintf("transaction(%d steps, %s)", len(tr.Steps()), tr.Selection())
}

func clampSelection(doc *model.Node, sel Selection) Selection {
	size := doc.ContentSize()
	clamp := func(p int) int { return max(0, min(p, size)) }
	return Selection{Anchor: clamp(sel.Anchor), Head: clamp(sel.Head)}
}
