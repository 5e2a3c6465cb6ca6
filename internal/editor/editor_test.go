package editor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/tabular/internal/history"
	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/table"
	"github.com/dshills/tabular/internal/transform"
)

// Empty 2x2 table: cell text positions are 4, 8, 14 and 18.
func newSession(t *testing.T, rows, columns int) *Session {
	t.Helper()
	schema, err := DefaultSchema("paragraph+")
	if err != nil {
		t.Fatalf("DefaultSchema() error = %v", err)
	}
	doc, err := NewTableDocument(schema, rows, columns)
	if err != nil {
		t.Fatalf("NewTableDocument() error = %v", err)
	}
	return NewSession(doc, WithHistory(history.NewHistory(10)))
}

func tableOf(t *testing.T, s *Session) *model.Node {
	t.Helper()
	tbl := s.Doc().Child(0)
	if tbl.Type().Name != table.TableName {
		t.Fatalf("first child = %s, want table", tbl.Type().Name)
	}
	return tbl
}

func TestNewTableDocument(t *testing.T) {
	s := newSession(t, 2, 3)
	tbl := tableOf(t, s)
	if tbl.ChildCount() != 2 {
		t.Errorf("rows = %d, want 2", tbl.ChildCount())
	}
	if got := table.Columns(tbl.Attrs()); got != 3 {
		t.Errorf("columns attr = %d, want 3", got)
	}
	if err := s.Doc().Check(); err != nil {
		t.Errorf("Check() = %v", err)
	}
	if got := s.Selection().Head; got != 4 {
		t.Errorf("initial cursor = %d, want 4", got)
	}
}

func TestExecUndoRedo(t *testing.T) {
	s := newSession(t, 2, 2)

	ok, err := s.Exec("add_column_after")
	if err != nil || !ok {
		t.Fatalf("Exec() = %v, %v", ok, err)
	}
	if got := table.Columns(tableOf(t, s).Attrs()); got != 3 {
		t.Fatalf("columns after add = %d, want 3", got)
	}
	if !s.History().CanUndo() {
		t.Fatal("command was not recorded")
	}
	if info, _ := s.History().PeekUndo(); info.Description != "add_column_after" {
		t.Errorf("undo description = %q", info.Description)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := table.Columns(tableOf(t, s).Attrs()); got != 2 {
		t.Errorf("columns after undo = %d, want 2", got)
	}
	if err := s.Redo(); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if got := tableOf(t, s).Child(1).ChildCount(); got != 3 {
		t.Errorf("second row cells after redo = %d, want 3", got)
	}
}

func TestExecErrors(t *testing.T) {
	s := newSession(t, 1, 1)

	if _, err := s.Exec("explode"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Exec(unknown) error = %v, want ErrUnknownCommand", err)
	}

	ok, err := s.Exec("remove_column")
	if err != nil {
		t.Fatalf("Exec(remove_column) error = %v", err)
	}
	if ok {
		t.Error("remove_column applied to the only column")
	}
	if s.History().CanUndo() {
		t.Error("refused command was recorded")
	}
}

func TestNavigationNotRecorded(t *testing.T) {
	s := newSession(t, 2, 2)
	for _, want := range []int{8, 14, 18} {
		ok, err := s.Exec("next_cell")
		if err != nil || !ok {
			t.Fatalf("next_cell = %v, %v", ok, err)
		}
		if got := s.Selection().Head; got != want {
			t.Errorf("cursor = %d, want %d", got, want)
		}
	}
	if ok, _ := s.Exec("next_cell"); ok {
		t.Error("next_cell applied in the last cell")
	}
	if s.History().CanUndo() {
		t.Error("navigation was recorded in history")
	}
}

func TestSelect(t *testing.T) {
	s := newSession(t, 2, 2)
	if err := s.Select(14, 14); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got := s.Selection().From(); got != 14 {
		t.Errorf("from = %d, want 14", got)
	}
	for _, pos := range []int{-1, 23} {
		if err := s.SetCursor(pos); !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("SetCursor(%d) error = %v, want ErrInvalidSelection", pos, err)
		}
	}
}

func TestInsertText(t *testing.T) {
	s := newSession(t, 2, 2)
	if err := s.SetCursor(8); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertText("hi"); err != nil {
		t.Fatalf("InsertText() error = %v", err)
	}
	if got := tableOf(t, s).Child(0).Child(1).TextContent(); got != "hi" {
		t.Errorf("cell text = %q, want hi", got)
	}
	if got := s.Selection().Head; got != 10 {
		t.Errorf("cursor = %d, want 10", got)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := s.Doc().TextContent(); got != "" {
		t.Errorf("text after undo = %q", got)
	}
}

func TestApplySteps(t *testing.T) {
	s := newSession(t, 2, 2)
	schema := s.State().Schema()

	raw, err := transform.NewReplaceStep(14, 14, model.NewFragment(schema.Text("x"))).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ApplySteps([]byte("[" + string(raw) + "]")); err != nil {
		t.Fatalf("ApplySteps() error = %v", err)
	}
	if got := tableOf(t, s).Child(1).Child(0).TextContent(); got != "x" {
		t.Errorf("cell text = %q, want x", got)
	}

	if err := s.ApplySteps([]byte("{nope")); !errors.Is(err, transform.ErrInvalidStepJSON) {
		t.Errorf("malformed error = %v", err)
	}
	if err := s.ApplySteps([]byte(`{"stepType":"frobnicate"}`)); !errors.Is(err, transform.ErrUnknownStepType) {
		t.Errorf("unknown type error = %v", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	s := newSession(t, 2, 2)
	if err := s.InsertText("a"); err != nil {
		t.Fatal(err)
	}
	doc := s.Doc()
	schema := s.State().Schema()

	tests := []struct {
		name   string
		file   string
		indent bool
	}{
		{"json", "doc.json", false},
		{"pretty json", "doc.json", true},
		{"yaml", "doc.yaml", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(doc, tt.file, tt.indent)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if tt.indent && !bytes.Contains(data, []byte("\n  ")) {
				t.Errorf("indented output not indented: %s", data)
			}
			got, err := Decode(schema, tt.file, data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !got.Eq(doc) {
				t.Errorf("round trip = %s, want %s", got, doc)
			}
		})
	}

	if _, err := Decode(schema, "doc.txt", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode(.txt) error = %v", err)
	}
}

func TestRegistryNames(t *testing.T) {
	names := DefaultRegistry().Names()
	if len(names) != 8 {
		t.Fatalf("names = %v", names)
	}
	if !strings.HasPrefix(names[0], "add_column") {
		t.Errorf("names not sorted: %v", names)
	}
}
