package table

import "errors"

// Failure kinds reported by column steps and table construction.
var (
	// ErrInvalidInsertPosition indicates a recorded insert position that no
	// longer sits between cells of the expected row.
	ErrInvalidInsertPosition = errors.New("invalid cell insert position")

	// ErrInvalidDeletePosition indicates a recorded cell span that no
	// longer covers exactly one cell of the expected row.
	ErrInvalidDeletePosition = errors.New("invalid cell delete positions")

	// ErrRowCountMismatch indicates the table's row count differs from the
	// number of recorded positions.
	ErrRowCountMismatch = errors.New("mismatch in number of rows")

	// ErrInconsistentColumnTarget indicates recorded positions that do not
	// all address the same table and column.
	ErrInconsistentColumnTarget = errors.New("column positions not consistent")

	// ErrNotATable indicates a position or node type that is not a table.
	ErrNotATable = errors.New("not a table")

	// ErrColumnOutOfRange indicates a column index outside a row.
	ErrColumnOutOfRange = errors.New("column index out of range")

	// ErrCellNotFillable indicates a cell type without a valid empty form.
	ErrCellNotFillable = errors.New("cell type cannot be filled")
)
