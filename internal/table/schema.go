package table

import (
	"fmt"

	"github.com/dshills/tabular/internal/model"
)

// Node type names used by AddTableNodes.
const (
	TableName = "table"
	RowName   = "table_row"
	CellName  = "table_cell"
)

// Table roles carried in model.NodeSpec.TableRole.
const (
	RoleTable = "table"
	RoleRow   = "row"
	RoleCell  = "cell"
)

// TableSpec returns the spec of a table node, without content expression.
func TableSpec() model.NodeSpec {
	return model.NodeSpec{
		Attrs:     map[string]model.AttributeSpec{ColumnsAttr: {Default: 1}},
		TableRole: RoleTable,
	}
}

// RowSpec returns the spec of a table row node, without content expression.
func RowSpec() model.NodeSpec {
	return model.NodeSpec{
		Attrs:     map[string]model.AttributeSpec{ColumnsAttr: {Default: 1}},
		TableRole: RoleRow,
	}
}

// CellSpec returns the spec of a table cell node, without content expression.
func CellSpec() model.NodeSpec {
	return model.NodeSpec{TableRole: RoleCell}
}

// AddTableNodes appends the table node types to nodes as "table",
// "table_row" and "table_cell". cellContent is the content expression of
// cells; tableGroup the group the table belongs to.
func AddTableNodes(nodes []model.NamedSpec, cellContent, tableGroup string) []model.NamedSpec {
	table := TableSpec()
	table.Content = RowName + "[" + ColumnsAttr + "=." + ColumnsAttr + "]+"
	table.Group = tableGroup

	row := RowSpec()
	row.Content = CellName + "{." + ColumnsAttr + "}"

	cell := CellSpec()
	cell.Content = cellContent

	out := make([]model.NamedSpec, 0, len(nodes)+3)
	out = append(out, nodes...)
	return append(out,
		model.NamedSpec{Name: TableName, Spec: table},
		model.NamedSpec{Name: RowName, Spec: row},
		model.NamedSpec{Name: CellName, Spec: cell},
	)
}

// CreateTable creates a table with rows × columns empty cells. The row
// and cell types are taken from the table type's content expression.
func CreateTable(tableType *model.NodeType, rows, columns int, attrs model.Attrs) (*model.Node, error) {
	if rows < 1 || columns < 1 {
		return nil, fmt.Errorf("table needs at least one row and column, got %dx%d", rows, columns)
	}
	rowType := firstContentType(tableType)
	if rowType == nil {
		return nil, fmt.Errorf("%w: %s has no row content", ErrNotATable, tableType.Name)
	}
	cellType := firstContentType(rowType)
	if cellType == nil {
		return nil, fmt.Errorf("%w: %s has no cell content", ErrNotATable, rowType.Name)
	}

	cell := cellType.CreateAndFill(nil)
	if cell == nil {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFillable, cellType.Name)
	}
	cells := make([]*model.Node, columns)
	for i := range cells {
		cells[i] = cell
	}
	row, err := rowType.Create(WithColumns(nil, columns), model.NewFragment(cells...))
	if err != nil {
		return nil, err
	}
	rowNodes := make([]*model.Node, rows)
	for i := range rowNodes {
		rowNodes[i] = row
	}
	return tableType.Create(WithColumns(attrs, columns), model.NewFragment(rowNodes...))
}

func firstContentType(t *model.NodeType) *model.NodeType {
	elems := t.ContentElements()
	if len(elems) == 0 || len(elems[0].Types) == 0 {
		return nil
	}
	return elems[0].Types[0]
}
