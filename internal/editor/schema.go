package editor

import (
	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/table"
)

// Node type names of the default schema besides the table nodes.
const (
	DocName       = "doc"
	ParagraphName = "paragraph"
	TextName      = "text"
)

// DefaultSchema returns a schema of paragraphs and tables. Table cells
// hold cellContent, typically "paragraph+".
func DefaultSchema(cellContent string) (*model.Schema, error) {
	nodes := table.AddTableNodes([]model.NamedSpec{
		{Name: DocName, Spec: model.NodeSpec{Content: "block+"}},
		{Name: ParagraphName, Spec: model.NodeSpec{Content: "text*", Group: "block"}},
		{Name: TextName},
	}, cellContent, "block")
	return model.NewSchema(model.SchemaSpec{Nodes: nodes, TopNode: DocName})
}

// NewTableDocument returns a document holding one empty table.
func NewTableDocument(schema *model.Schema, rows, columns int) (*model.Node, error) {
	tbl, err := table.CreateTable(schema.NodeType(table.TableName), rows, columns, nil)
	if err != nil {
		return nil, err
	}
	return schema.TopNodeType().CreateChecked(nil, model.NewFragment(tbl))
}
