package table

import (
	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/state"
	"github.com/dshills/tabular/internal/transform"
)

// findRow returns the depth of the innermost table row around rp for
// which pred holds, or -1. Rows directly below the document are skipped
// since they have no table to edit.
func findRow(rp *model.ResolvedPos, pred func(d int) bool) int {
	for d := rp.Depth(); d > 0; d-- {
		if !rp.Node(d).Type().IsTableRow() {
			continue
		}
		if d >= 2 && (pred == nil || pred(d)) {
			return d
		}
	}
	return -1
}

// emit runs step in a new transaction and hands it to dispatch. The step
// is applied even when dispatch is nil so that a dry run reports the same
// outcome as a real one.
func emit(s *state.EditorState, dispatch func(tr *state.Transaction), step transform.Step) bool {
	tr := s.Tr()
	if err := tr.Step(step); err != nil {
		return false
	}
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// AddColumnBefore adds a column before the column holding the selection.
func AddColumnBefore(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	from, err := s.ResolveFrom()
	if err != nil {
		return false
	}
	var cell *model.Node
	rowDepth := findRow(from, func(d int) bool {
		if d == from.Depth() {
			cell = from.NodeBefore()
		} else {
			cell = from.Node(d + 1)
		}
		return cell != nil
	})
	if rowDepth == -1 {
		return false
	}
	step, err := CreateAddColumnStep(s.Doc(), from.Before(rowDepth-1), from.Index(rowDepth), cell.Type(), cell.Attrs())
	if err != nil {
		return false
	}
	return emit(s, dispatch, step)
}

// AddColumnAfter adds a column after the column holding the selection.
func AddColumnAfter(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	from, err := s.ResolveFrom()
	if err != nil {
		return false
	}
	var cell *model.Node
	rowDepth := findRow(from, func(d int) bool {
		if d == from.Depth() {
			cell = from.NodeAfter()
		} else {
			cell = from.Node(d + 1)
		}
		return cell != nil
	})
	if rowDepth == -1 {
		return false
	}
	index := from.IndexAfter(rowDepth)
	if rowDepth == from.Depth() {
		index++
	}
	step, err := CreateAddColumnStep(s.Doc(), from.Before(rowDepth-1), index, cell.Type(), cell.Attrs())
	if err != nil {
		return false
	}
	return emit(s, dispatch, step)
}

// RemoveColumn removes the column holding the selection. It refuses to
// remove a row's last cell.
func RemoveColumn(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	from, err := s.ResolveFrom()
	if err != nil {
		return false
	}
	rowDepth := findRow(from, func(d int) bool { return from.Node(d).ChildCount() > 1 })
	if rowDepth == -1 {
		return false
	}
	index := from.Index(rowDepth)
	if n := from.Node(rowDepth).ChildCount(); index >= n {
		index = n - 1
	}
	step, err := CreateRemoveColumnStep(s.Doc(), from.Before(rowDepth-1), index)
	if err != nil {
		return false
	}
	tr := s.Tr()
	if err := tr.Step(step); err != nil {
		return false
	}
	selectNear(tr, tr.Selection().From())
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// AddRowBefore adds an empty row before the row holding the selection.
func AddRowBefore(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	return addRow(s, dispatch, -1)
}

// AddRowAfter adds an empty row after the row holding the selection.
func AddRowAfter(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	return addRow(s, dispatch, 1)
}

func addRow(s *state.EditorState, dispatch func(tr *state.Transaction), side int) bool {
	from, err := s.ResolveFrom()
	if err != nil {
		return false
	}
	rowDepth := findRow(from, nil)
	if rowDepth == -1 {
		return false
	}

	example := from.Node(rowDepth)
	cells := make([]*model.Node, 0, example.ChildCount())
	for _, cell := range example.Content().Nodes() {
		empty := cell.Type().CreateAndFill(cell.Attrs())
		if empty == nil {
			return false
		}
		cells = append(cells, empty)
	}
	row := example.Copy(model.NewFragment(cells...))

	pos := from.After(rowDepth)
	if side < 0 {
		pos = from.Before(rowDepth)
	}
	return emit(s, dispatch, transform.NewReplaceStep(pos, pos, model.NewFragment(row)))
}

// RemoveRow removes the row holding the selection. It refuses to remove
// a table's last row.
func RemoveRow(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	from, err := s.ResolveFrom()
	if err != nil {
		return false
	}
	rowDepth := findRow(from, func(d int) bool { return from.Node(d-1).ChildCount() > 1 })
	if rowDepth == -1 {
		return false
	}

	start := from.Before(rowDepth)
	tr := s.Tr()
	if err := tr.Step(transform.NewReplaceStep(start, from.After(rowDepth), nil)); err != nil {
		return false
	}
	selectNear(tr, tr.Mapping().Map(start, transform.AssocAfter))
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// selectNear puts the cursor in the first text position at or after pos
// in the transaction's document, falling back to the last one before it.
func selectNear(tr *state.Transaction, pos int) {
	rp, err := tr.Doc().Resolve(pos)
	if err != nil {
		return
	}
	sel, ok := state.FindSelectionFrom(rp, 1)
	if !ok {
		sel, ok = state.FindSelectionFrom(rp, -1)
	}
	if ok {
		tr.SetSelection(sel)
	}
}

// SelectNextCell moves the cursor to the start of the next cell,
// continuing on the next row after the last cell.
func SelectNextCell(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	return moveCell(s, 1, dispatch)
}

// SelectPreviousCell moves the cursor to the start of the previous cell,
// continuing on the previous row before the first cell.
func SelectPreviousCell(s *state.EditorState, dispatch func(tr *state.Transaction)) bool {
	return moveCell(s, -1, dispatch)
}

func moveCell(s *state.EditorState, dir int, dispatch func(tr *state.Transaction)) bool {
	from, err := s.ResolveFrom()
	if err != nil {
		return false
	}
	rowDepth := findRow(from, nil)
	if rowDepth == -1 {
		return false
	}

	var cellStart int
	row := from.Node(rowDepth)
	if next := from.Index(rowDepth) + dir; next >= 0 && next < row.ChildCount() {
		cellStart = from.Start(rowDepth) + row.Content().OffsetAt(next)
	} else {
		tbl := from.Node(rowDepth - 1)
		rowIndex := from.Index(rowDepth-1) + dir
		if rowIndex < 0 || rowIndex >= tbl.ChildCount() {
			return false
		}
		if dir > 0 {
			cellStart = from.After(rowDepth) + 2
		} else {
			cellStart = from.Before(rowDepth) - 2 - tbl.Child(rowIndex).LastChild().ContentSize()
		}
	}

	rp, err := s.Doc().Resolve(cellStart)
	if err != nil {
		return false
	}
	sel, ok := state.FindSelectionFrom(rp, 1)
	if !ok || sel.From() >= rp.End(rp.Depth()) {
		return false
	}
	if dispatch != nil {
		dispatch(s.Tr().SetSelection(sel))
	}
	return true
}
