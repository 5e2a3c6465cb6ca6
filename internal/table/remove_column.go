package table

import (
	"fmt"

	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/transform"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RemoveColumnStepType is the JSON tag of RemoveColumnStep.
const RemoveColumnStepType = "removeTableColumn"

func init() {
	transform.RegisterStep(RemoveColumnStepType, decodeRemoveColumnStep)
}

// RemoveColumnStep deletes one cell from every row of a table. The span
// [from[i], to[i]) covers exactly one cell of row i.
type RemoveColumnStep struct {
	from []int
	to   []int
}

// NewRemoveColumnStep creates a step from per-row cell spans.
func NewRemoveColumnStep(from, to []int) *RemoveColumnStep {
	return &RemoveColumnStep{
		from: append([]int(nil), from...),
		to:   append([]int(nil), to...),
	}
}

// CreateRemoveColumnStep builds a step that deletes the column at
// columnIndex from the table directly after tablePos.
func CreateRemoveColumnStep(doc *model.Node, tablePos, columnIndex int) (*RemoveColumnStep, error) {
	tbl := doc.NodeAt(tablePos)
	if tbl == nil || tbl.IsText() {
		return nil, fmt.Errorf("%w: no node at %d", ErrNotATable, tablePos)
	}

	var from, to []int
	var err error
	tbl.ForEach(func(row *model.Node, rowOff, i int) {
		if err != nil {
			return
		}
		if columnIndex < 0 || columnIndex >= row.ChildCount() {
			err = fmt.Errorf("%w: column %d in row %d of %d cells", ErrColumnOutOfRange, columnIndex, i, row.ChildCount())
			return
		}
		pos := tablePos + 2 + rowOff + row.Content().OffsetAt(columnIndex)
		from = append(from, pos)
		to = append(to, pos+row.Child(columnIndex).NodeSize())
	})
	if err != nil {
		return nil, err
	}
	return &RemoveColumnStep{from: from, to: to}, nil
}

// From returns a copy of the span starts.
func (s *RemoveColumnStep) From() []int {
	return append([]int(nil), s.from...)
}

// To returns a copy of the span ends.
func (s *RemoveColumnStep) To() []int {
	return append([]int(nil), s.to...)
}

// Apply implements transform.Step.
func (s *RemoveColumnStep) Apply(doc *model.Node) transform.Result {
	if len(s.from) == 0 || len(s.from) != len(s.to) {
		return transform.Fail(ErrInvalidDeletePosition)
	}

	var tbl *model.Node
	tablePos, index := -1, -1
	for i, pos := range s.from {
		rp, err := doc.Resolve(pos)
		if err != nil || rp.Depth() < 2 || !rp.Parent().Type().IsTableRow() || rp.Index(rp.Depth()-1) != i {
			return transform.Fail(fmt.Errorf("%w: row %d at %d", ErrInvalidDeletePosition, i, pos))
		}
		after := rp.NodeAfter()
		if after == nil || pos+after.NodeSize() != s.to[i] {
			return transform.Fail(fmt.Errorf("%w: row %d span [%d, %d)", ErrInvalidDeletePosition, i, pos, s.to[i]))
		}
		if tbl == nil {
			tbl = rp.Node(rp.Depth() - 1)
			if tbl.ChildCount() != len(s.from) {
				return transform.Fail(fmt.Errorf("%w: table has %d rows, step has %d", ErrRowCountMismatch, tbl.ChildCount(), len(s.from)))
			}
			tablePos = rp.Before(rp.Depth() - 1)
			index = rp.Index(rp.Depth())
		} else if rp.Before(rp.Depth()-1) != tablePos || rp.Index(rp.Depth()) != index {
			return transform.Fail(fmt.Errorf("%w: delete at row %d", ErrInconsistentColumnTarget, i))
		}
	}

	rows := make([]*model.Node, tbl.ChildCount())
	for i := range rows {
		row := tbl.Child(i)
		cells := make([]*model.Node, 0, row.ChildCount()-1)
		row.ForEach(func(cell *model.Node, _, j int) {
			if j != index {
				cells = append(cells, cell)
			}
		})
		updated, err := row.Type().Create(AdjustColumns(row.Attrs(), -1), model.NewFragment(cells...))
		if err != nil {
			return transform.Fail(err)
		}
		rows[i] = updated
	}
	updated, err := tbl.Type().Create(AdjustColumns(tbl.Attrs(), -1), model.NewFragment(rows...))
	if err != nil {
		return transform.Fail(err)
	}
	return transform.FromReplace(doc, tablePos, tablePos+tbl.NodeSize(), model.NewFragment(updated))
}

// GetMap implements transform.Step.
func (s *RemoveColumnStep) GetMap() *transform.StepMap {
	ranges := make([]int, 0, 3*len(s.from))
	for i, pos := range s.from {
		ranges = append(ranges, pos, s.to[i]-pos, 0)
	}
	return transform.NewStepMap(ranges)
}

// Invert implements transform.Step. doc must still contain the column;
// the inverse re-inserts the removed cells unchanged.
func (s *RemoveColumnStep) Invert(doc *model.Node) (transform.Step, error) {
	if len(s.from) == 0 {
		return nil, ErrInvalidDeletePosition
	}
	first, err := doc.Resolve(s.from[0])
	if err != nil {
		return nil, fmt.Errorf("invert removeTableColumn: %w", err)
	}
	if first.Depth() < 2 {
		return nil, fmt.Errorf("invert removeTableColumn: %w", ErrInvalidDeletePosition)
	}
	tbl := first.Node(first.Depth() - 1)
	index := first.Index(first.Depth())
	if tbl.ChildCount() != len(s.from) {
		return nil, fmt.Errorf("invert removeTableColumn: %w", ErrRowCountMismatch)
	}

	positions := make([]int, len(s.from))
	cells := make([]*model.Node, len(s.from))
	shift := 0
	for i := range s.from {
		cell := tbl.Child(i).MaybeChild(index)
		if cell == nil {
			return nil, fmt.Errorf("invert removeTableColumn: %w: row %d", ErrColumnOutOfRange, i)
		}
		positions[i] = s.from[i] - shift
		cells[i] = cell
		shift += cell.NodeSize()
	}
	return &AddColumnStep{positions: positions, cells: cells}, nil
}

// Map implements transform.Step. It returns nil when any cell span
// collapses, meaning the column was already removed.
func (s *RemoveColumnStep) Map(mapping transform.Mappable) transform.Step {
	from := make([]int, len(s.from))
	to := make([]int, len(s.to))
	for i := range s.from {
		start := mapping.Map(s.from[i], transform.AssocAfter)
		end := mapping.Map(s.to[i], transform.AssocBefore)
		if end <= start {
			return nil
		}
		from[i], to[i] = start, end
	}
	return &RemoveColumnStep{from: from, to: to}
}

// StepType implements transform.Step.
func (s *RemoveColumnStep) StepType() string {
	return RemoveColumnStepType
}

// String returns a debug representation.
func (s *RemoveColumnStep) String() string {
	return fmt.Sprintf("removeTableColumn(%v, %v)", s.from, s.to)
}

// MarshalJSON implements transform.Step.
func (s *RemoveColumnStep) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "stepType", RemoveColumnStepType); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "from", s.from); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "to", s.to); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRemoveColumnStep(_ *model.Schema, r gjson.Result) (transform.Step, error) {
	from, err := transform.IntsFromJSON(r.Get("from"))
	if err != nil {
		return nil, fmt.Errorf("removeTableColumn from: %w", err)
	}
	to, err := transform.IntsFromJSON(r.Get("to"))
	if err != nil {
		return nil, fmt.Errorf("removeTableColumn to: %w", err)
	}
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: removeTableColumn has %d starts and %d ends", transform.ErrInvalidStepJSON, len(from), len(to))
	}
	return &RemoveColumnStep{from: from, to: to}, nil
}
