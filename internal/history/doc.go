// Package history provides undo/redo for editor states.
//
// Every recorded transaction is stored as the inverse of its steps,
// together with the selection it started from. Undoing applies the
// inverse steps to the current state and records their own inverse for
// redo, so column steps undo as single atomic edits.
//
//	h := history.NewHistory(100)
//
//	next, _ := st.Apply(tr)
//	h.Record(tr, "Add Column")
//
//	prev, err := h.Undo(next)
//
// # Grouping
//
// Transactions recorded between BeginGroup and EndGroup undo as one unit:
//
//	defer h.GroupScope("Insert Table").End()
//
// # Collaboration
//
// When remote steps are rebased under local history, Rebase maps the
// stored steps through the remote mapping. Entries whose steps no longer
// apply are dropped.
package history
