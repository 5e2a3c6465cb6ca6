package table

import "github.com/dshills/tabular/internal/model"

// ColumnsAttr names the attribute holding a table's or row's column count.
const ColumnsAttr = "columns"

// Columns returns the column count stored in attrs, or 0.
func Columns(attrs model.Attrs) int {
	n, _ := attrs.Int(ColumnsAttr)
	return n
}

// WithColumns returns a copy of attrs with the column count set to n.
func WithColumns(attrs model.Attrs, n int) model.Attrs {
	return attrs.With(ColumnsAttr, n)
}

// AdjustColumns returns a copy of attrs with the column count changed by delta.
func AdjustColumns(attrs model.Attrs, delta int) model.Attrs {
	return WithColumns(attrs, Columns(attrs)+delta)
}
