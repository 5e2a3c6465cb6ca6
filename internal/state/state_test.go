package state

import (
	"errors"
	"testing"

	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/transform"
)

func testDoc(t *testing.T, texts ...string) *model.Node {
	t.Helper()
	s, err := model.NewSchema(model.SchemaSpec{Nodes: []model.NamedSpec{
		{Name: "doc", Spec: model.NodeSpec{Content: "paragraph+"}},
		{Name: "paragraph", Spec: model.NodeSpec{Content: "text*"}},
		{Name: "text"},
	}})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	var paras []*model.Node
	for _, text := range texts {
		p, err := s.Node("paragraph", nil, s.Text(text))
		if err != nil {
			t.Fatal(err)
		}
		paras = append(paras, p)
	}
	doc, err := s.Node("doc", nil, paras...)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestSelectionBounds(t *testing.T) {
	sel := NewSelection(5, 2)
	if sel.From() != 2 || sel.To() != 5 {
		t.Errorf("From/To = %d/%d, want 2/5", sel.From(), sel.To())
	}
	if sel.Empty() {
		t.Error("Empty() = true for a range")
	}
	if !Cursor(3).Empty() {
		t.Error("Empty() = false for a cursor")
	}
	if got := Cursor(3).String(); got != "cursor(3)" {
		t.Errorf("String() = %q", got)
	}
}

func TestSelectionMap(t *testing.T) {
	m := transform.NewStepMap([]int{2, 0, 3})
	got := NewSelection(1, 4).Map(m)
	if got.Anchor != 1 || got.Head != 7 {
		t.Errorf("Map() = %v, want selection(1, 7)", got)
	}
	if got := Cursor(2).Map(m); got.Head != 5 {
		t.Errorf("cursor at insertion maps to %d, want 5", got.Head)
	}
}

func TestAtStartAtEnd(t *testing.T) {
	doc := testDoc(t, "ab", "cd")

	start, ok := AtStart(doc)
	if !ok || start.Head != 1 {
		t.Errorf("AtStart() = %v, %v; want cursor(1)", start, ok)
	}
	end, ok := AtEnd(doc)
	if !ok || end.Head != 7 {
		t.Errorf("AtEnd() = %v, %v; want cursor(7)", end, ok)
	}
}

func TestFindSelectionFrom(t *testing.T) {
	doc := testDoc(t, "ab", "cd")
	tests := []struct {
		name string
		pos  int
		dir  int
		want int
	}{
		{"inside text", 2, 1, 2},
		{"between blocks forward", 4, 1, 5},
		{"between blocks backward", 4, -1, 3},
		{"doc start", 0, 1, 1},
		{"doc end", 8, -1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp, err := doc.Resolve(tt.pos)
			if err != nil {
				t.Fatal(err)
			}
			sel, ok := FindSelectionFrom(rp, tt.dir)
			if !ok {
				t.Fatal("FindSelectionFrom() found nothing")
			}
			if sel.Head != tt.want {
				t.Errorf("FindSelectionFrom(%d, %d) = %d, want %d", tt.pos, tt.dir, sel.Head, tt.want)
			}
		})
	}

	rp, _ := doc.Resolve(8)
	if _, ok := FindSelectionFrom(rp, 1); ok {
		t.Error("FindSelectionFrom past the end found a position")
	}
}

func TestNewClampsSelection(t *testing.T) {
	doc := testDoc(t, "ab", "cd")
	st := New(doc, NewSelection(-3, 100))
	if got := st.Selection(); got.Anchor != 0 || got.Head != 8 {
		t.Errorf("Selection() = %v, want selection(0, 8)", got)
	}
}

func TestApplyTransaction(t *testing.T) {
	doc := testDoc(t, "ab")
	st := New(doc, Cursor(2))

	tr := st.Tr()
	if err := tr.Step(transform.NewReplaceStep(1, 1, model.NewFragment(doc.Type().Schema().Text("X")))); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	tr.SetMeta("origin", "test")

	next, err := st.Apply(tr)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := next.Doc().TextContent(); got != "Xab" {
		t.Errorf("doc text = %q, want %q", got, "Xab")
	}
	if got := next.Selection(); got.Head != 3 {
		t.Errorf("selection = %v, want cursor(3)", got)
	}
	if tr.Meta("origin") != "test" {
		t.Errorf("Meta(origin) = %v", tr.Meta("origin"))
	}
	if st.Doc().TextContent() != "ab" {
		t.Error("Apply() modified the original state")
	}

	if _, err := next.Apply(tr); !errors.Is(err, ErrMismatchedTransaction) {
		t.Errorf("Apply() on another state error = %v, want ErrMismatchedTransaction", err)
	}
}

func TestTransactionExplicitSelection(t *testing.T) {
	st := New(testDoc(t, "abc"), Cursor(1))
	tr := st.Tr().SetSelection(NewSelection(1, 3))
	if !tr.SelectionSet() {
		t.Error("SelectionSet() = false")
	}
	next, err := st.Apply(tr)
	if err != nil {
		t.Fatal(err)
	}
	if got := next.Selection(); got != NewSelection(1, 3) {
		t.Errorf("Selection() = %v, want selection(1, 3)", got)
	}
	if next.Doc() != st.Doc() {
		t.Error("selection-only transaction changed the document")
	}
}
