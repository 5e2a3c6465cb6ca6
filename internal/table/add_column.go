package table

import (
	"fmt"

	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/transform"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// AddColumnStepType is the JSON tag of AddColumnStep.
const AddColumnStepType = "addTableColumn"

func init() {
	transform.RegisterStep(AddColumnStepType, decodeAddColumnStep)
}

// AddColumnStep inserts one cell into every row of a table.
//
// positions[i] is the insert position inside row i and cells[i] the cell
// inserted there. All positions must address the same table and column.
type AddColumnStep struct {
	positions []int
	cells     []*model.Node
}

// NewAddColumnStep creates a step from per-row insert positions and cells.
func NewAddColumnStep(positions []int, cells []*model.Node) *AddColumnStep {
	return &AddColumnStep{
		positions: append([]int(nil), positions...),
		cells:     append([]*model.Node(nil), cells...),
	}
}

// CreateAddColumnStep builds a step that inserts a column at columnIndex
// (0 through the column count) into the table directly after tablePos.
// Every new cell is an empty instance of cellType with cellAttrs.
func CreateAddColumnStep(doc *model.Node, tablePos, columnIndex int, cellType *model.NodeType, cellAttrs model.Attrs) (*AddColumnStep, error) {
	tbl := doc.NodeAt(tablePos)
	if tbl == nil || tbl.IsText() {
		return nil, fmt.Errorf("%w: no node at %d", ErrNotATable, tablePos)
	}
	cell := cellType.CreateAndFill(cellAttrs)
	if cell == nil {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFillable, cellType.Name)
	}

	var positions []int
	var cells []*model.Node
	var err error
	tbl.ForEach(func(row *model.Node, rowOff, i int) {
		if err != nil {
			return
		}
		if columnIndex < 0 || columnIndex > row.ChildCount() {
			err = fmt.Errorf("%w: column %d in row %d of %d cells", ErrColumnOutOfRange, columnIndex, i, row.ChildCount())
			return
		}
		positions = append(positions, tablePos+2+rowOff+row.Content().OffsetAt(columnIndex))
		cells = append(cells, cell)
	})
	if err != nil {
		return nil, err
	}
	return &AddColumnStep{positions: positions, cells: cells}, nil
}

// Positions returns a copy of the per-row insert positions.
func (s *AddColumnStep) Positions() []int {
	return append([]int(nil), s.positions...)
}

// Cells returns a copy of the per-row cells.
func (s *AddColumnStep) Cells() []*model.Node {
	return append([]*model.Node(nil), s.cells...)
}

// Apply implements transform.Step.
func (s *AddColumnStep) Apply(doc *model.Node) transform.Result {
	if len(s.positions) == 0 || len(s.positions) != len(s.cells) {
		return transform.Fail(ErrInvalidInsertPosition)
	}

	var tbl *model.Node
	tablePos, index := -1, -1
	for i, pos := range s.positions {
		rp, err := doc.Resolve(pos)
		if err != nil || rp.Depth() < 2 || !rp.Parent().Type().IsTableRow() || rp.Index(rp.Depth()-1) != i {
			return transform.Fail(fmt.Errorf("%w: row %d at %d", ErrInvalidInsertPosition, i, pos))
		}
		if tbl == nil {
			tbl = rp.Node(rp.Depth() - 1)
			if tbl.ChildCount() != len(s.positions) {
				return transform.Fail(fmt.Errorf("%w: table has %d rows, step has %d", ErrRowCountMismatch, tbl.ChildCount(), len(s.positions)))
			}
			tablePos = rp.Before(rp.Depth() - 1)
			index = rp.Index(rp.Depth())
		} else if rp.Before(rp.Depth()-1) != tablePos || rp.Index(rp.Depth()) != index {
			return transform.Fail(fmt.Errorf("%w: insert at row %d", ErrInconsistentColumnTarget, i))
		}
	}

	rows := make([]*model.Node, tbl.ChildCount())
	for i := range rows {
		row := tbl.Child(i)
		cells := make([]*model.Node, 0, row.ChildCount()+1)
		cells = append(cells, row.Content().Nodes()[:index]...)
		cells = append(cells, s.cells[i])
		cells = append(cells, row.Content().Nodes()[index:]...)
		updated, err := row.Type().Create(AdjustColumns(row.Attrs(), 1), model.NewFragment(cells...))
		if err != nil {
			return transform.Fail(err)
		}
		rows[i] = updated
	}
	updated, err := tbl.Type().Create(AdjustColumns(tbl.Attrs(), 1), model.NewFragment(rows...))
	if err != nil {
		return transform.Fail(err)
	}
	return transform.FromReplace(doc, tablePos, tablePos+tbl.NodeSize(), model.NewFragment(updated))
}

// GetMap implements transform.Step.
func (s *AddColumnStep) GetMap() *transform.StepMap {
	ranges := make([]int, 0, 3*len(s.positions))
	for i, pos := range s.positions {
		ranges = append(ranges, pos, 0, s.cells[i].NodeSize())
	}
	return transform.NewStepMap(ranges)
}

// Invert implements transform.Step. doc is the document before the step
// was applied; the inverse removes the inserted cells from the result.
func (s *AddColumnStep) Invert(doc *model.Node) (transform.Step, error) {
	from := make([]int, len(s.positions))
	to := make([]int, len(s.positions))
	shift := 0
	for i, pos := range s.positions {
		size := s.cells[i].NodeSize()
		from[i] = pos + shift
		to[i] = from[i] + size
		shift += size
	}
	return &RemoveColumnStep{from: from, to: to}, nil
}

// Map implements transform.Step. Insert positions always map.
func (s *AddColumnStep) Map(mapping transform.Mappable) transform.Step {
	positions := make([]int, len(s.positions))
	for i, pos := range s.positions {
		positions[i] = mapping.Map(pos, transform.AssocAfter)
	}
	return &AddColumnStep{positions: positions, cells: s.cells}
}

// StepType implements transform.Step.
func (s *AddColumnStep) StepType() string {
	return AddColumnStepType
}

// String returns a debug representation.
func (s *AddColumnStep) String() string {
	return fmt.Sprintf("addTableColumn(%v)", s.positions)
}

// MarshalJSON implements transform.Step.
func (s *AddColumnStep) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "stepType", AddColumnStepType); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "positions", s.positions); err != nil {
		return nil, err
	}
	if out, err = sjson.SetRawBytes(out, "cells", []byte(`[]`)); err != nil {
		return nil, err
	}
	for _, c := range s.cells {
		raw, err := c.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "cells.-1", raw); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeAddColumnStep(schema *model.Schema, r gjson.Result) (transform.Step, error) {
	positions, err := transform.IntsFromJSON(r.Get("positions"))
	if err != nil {
		return nil, fmt.Errorf("addTableColumn positions: %w", err)
	}
	raw := r.Get("cells")
	if !raw.IsArray() {
		return nil, fmt.Errorf("%w: addTableColumn needs a cells array", transform.ErrInvalidStepJSON)
	}
	var cells []*model.Node
	for _, c := range raw.Array() {
		n, err := schema.NodeFromResult(c)
		if err != nil {
			return nil, err
		}
		cells = append(cells, n)
	}
	if len(cells) != len(positions) {
		return nil, fmt.Errorf("%w: addTableColumn has %d positions and %d cells", transform.ErrInvalidStepJSON, len(positions), len(cells))
	}
	return &AddColumnStep{positions: positions, cells: cells}, nil
}
