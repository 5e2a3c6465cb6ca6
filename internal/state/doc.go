// Package state holds the editor state: a document plus a text selection.
//
// State values are immutable. Commands inspect a state and, when given a
// dispatch function, build a Transaction describing their change. Applying
// the transaction yields the next state; the previous one stays valid,
// which is what undo history and collaboration rely on.
//
//	st := state.NewAtStart(doc)
//	if table.AddColumnAfter(st, nil) { // applicable?
//	    table.AddColumnAfter(st, func(tr *state.Transaction) {
//	        st, _ = st.Apply(tr)
//	    })
//	}
package state
