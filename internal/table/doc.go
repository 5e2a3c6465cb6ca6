// Package table adds table semantics to the document model: table, row
// and cell node types, and steps that insert or remove a whole column in
// one atomic edit.
//
// # Structure
//
// A table node has a "columns" attribute and contains rows. Every row
// carries the same "columns" value and holds exactly that many cells:
//
//	table{columns=2}
//	    table_row{columns=2}(table_cell, table_cell)
//	    table_row{columns=2}(table_cell, table_cell)
//
// # Column Steps
//
// AddColumnStep and RemoveColumnStep record one position (or one cell
// span) per row. Applying them validates that all recorded positions
// still point into the same table at the same column, then replaces the
// whole table with a rebuilt copy. A stale step fails with one of the
// package's sentinel errors instead of corrupting the document.
//
// The steps invert into each other and map their positions through
// other steps, so they take part in undo history and collaborative
// rebasing like any other transform.Step. They register as
// "addTableColumn" and "removeTableColumn" for JSON serialization.
//
// # Commands
//
// AddColumnBefore, AddColumnAfter, RemoveColumn, AddRowBefore,
// AddRowAfter, RemoveRow, SelectNextCell and SelectPreviousCell are
// state.Commands that locate the row around the selection and build the
// matching step.
package table
