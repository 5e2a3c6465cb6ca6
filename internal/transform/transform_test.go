package transform

import (
	"errors"
	"testing"

	"github.com/dshills/tabular/internal/model"
)

func testSchema(t *testing.T) *model.Schema {
	t.Helper()
	s, err := model.NewSchema(model.SchemaSpec{Nodes: []model.NamedSpec{
		{Name: "doc", Spec: model.NodeSpec{Content: "paragraph+"}},
		{Name: "paragraph", Spec: model.NodeSpec{Content: "text*"}},
		{Name: "text"},
	}})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return s
}

func textDoc(t *testing.T, s *model.Schema, texts ...string) *model.Node {
	t.Helper()
	var paras []*model.Node
	for _, text := range texts {
		var content []*model.Node
		if text != "" {
			content = append(content, s.Text(text))
		}
		p, err := s.Node("paragraph", nil, content...)
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

func TestStepMapInsertion(t *testing.T) {
	m := NewStepMap([]int{2, 0, 3})
	tests := []struct {
		pos, assoc, want int
	}{
		{1, AssocAfter, 1},
		{2, AssocAfter, 5},
		{2, AssocBefore, 2},
		{4, AssocAfter, 7},
	}
	for _, tt := range tests {
		if got := m.Map(tt.pos, tt.assoc); got != tt.want {
			t.Errorf("Map(%d, %d) = %d, want %d", tt.pos, tt.assoc, got, tt.want)
		}
	}
	if m.MapResult(2, AssocAfter).Deleted {
		t.Error("insertion point should not be deleted")
	}
}

func TestStepMapDeletion(t *testing.T) {
	m := NewStepMap([]int{2, 3, 0})
	tests := []struct {
		name    string
		pos     int
		assoc   int
		want    int
		deleted bool
	}{
		{"before", 1, AssocAfter, 1, false},
		{"start after", 2, AssocAfter, 2, true},
		{"start before", 2, AssocBefore, 2, false},
		{"inside", 3, AssocAfter, 2, true},
		{"end before", 5, AssocBefore, 2, true},
		{"end after", 5, AssocAfter, 2, false},
		{"after", 6, AssocAfter, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.MapResult(tt.pos, tt.assoc)
			if res.Pos != tt.want || res.Deleted != tt.deleted {
				t.Errorf("MapResult(%d, %d) = {%d %v}, want {%d %v}",
					tt.pos, tt.assoc, res.Pos, res.Deleted, tt.want, tt.deleted)
			}
		})
	}
}

func TestStepMapInvert(t *testing.T) {
	m := NewStepMap([]int{2, 0, 3, 10, 2, 0}).Invert()
	if got := m.Map(5, AssocAfter); got != 2 {
		t.Errorf("Map(5) = %d, want 2", got)
	}
	if got := m.Map(8, AssocAfter); got != 5 {
		t.Errorf("Map(8) = %d, want 5", got)
	}
	// old position 12 sits after the deletion at 10..12, new position 13
	if got := m.Map(13, AssocAfter); got != 12 {
		t.Errorf("Map(13) = %d, want 12", got)
	}
}

func TestStepMapForEach(t *testing.T) {
	m := NewStepMap([]int{2, 0, 3, 10, 2, 0})
	var got [][4]int
	m.ForEach(func(oldStart, oldEnd, newStart, newEnd int) {
		got = append(got, [4]int{oldStart, oldEnd, newStart, newEnd})
	})
	want := [][4]int{{2, 2, 2, 5}, {10, 12, 13, 13}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ForEach() = %v, want %v", got, want)
	}
}

func TestMappingMirrorRecovery(t *testing.T) {
	del := NewStepMap([]int{2, 3, 0})

	plain := NewMapping(del, del.Invert())
	if got := plain.Map(3, AssocAfter); got != 5 {
		t.Errorf("without mirror Map(3) = %d, want 5", got)
	}

	mirrored := NewMapping()
	mirrored.AppendMap(del, -1)
	mirrored.AppendMap(del.Invert(), 0)
	if got := mirrored.Map(3, AssocAfter); got != 3 {
		t.Errorf("with mirror Map(3) = %d, want 3", got)
	}
	if k, ok := mirrored.GetMirror(1); !ok || k != 0 {
		t.Errorf("GetMirror(1) = %d, %v", k, ok)
	}
}

func TestMappingSliceAndAppend(t *testing.T) {
	a := NewStepMap([]int{0, 0, 2})
	b := NewStepMap([]int{0, 0, 3})
	m := NewMapping(a, b)
	if got := m.Map(1, AssocAfter); got != 6 {
		t.Errorf("Map(1) = %d, want 6", got)
	}
	if got := m.SliceFrom(1).Map(1, AssocAfter); got != 4 {
		t.Errorf("SliceFrom(1).Map(1) = %d, want 4", got)
	}

	outer := NewMapping(a)
	outer.AppendMapping(m)
	if outer.Len() != 3 {
		t.Errorf("Len() = %d, want 3", outer.Len())
	}
}

func TestReplaceStepApplyInvert(t *testing.T) {
	s := testSchema(t)
	doc := textDoc(t, s, "hello")

	step := NewReplaceStep(2, 4, model.NewFragment(s.Text("XY")))
	res := step.Apply(doc)
	if res.Failed() {
		t.Fatalf("Apply() error = %v", res.Err)
	}
	if got := res.Doc.TextContent(); got != "hXYlo" {
		t.Errorf("text = %q, want hXYlo", got)
	}

	inv, err := step.Invert(doc)
	if err != nil {
		t.Fatalf("Invert() error = %v", err)
	}
	back := inv.Apply(res.Doc)
	if back.Failed() || !back.Doc.Eq(doc) {
		t.Errorf("inverse result = %v, want %s", back.Doc, doc)
	}
}

func TestReplaceStepApplyFails(t *testing.T) {
	s := testSchema(t)
	doc := textDoc(t, s, "hello")

	res := NewReplaceStep(0, 7, nil).Apply(doc)
	if !res.Failed() {
		t.Fatal("deleting the only paragraph should fail")
	}
	var re *model.ReplaceError
	if !errors.As(res.Err, &re) {
		t.Errorf("Err = %T, want *model.ReplaceError", res.Err)
	}
}

func TestReplaceStepMap(t *testing.T) {
	s := testSchema(t)
	step := NewReplaceStep(2, 4, model.NewFragment(s.Text("X")))

	shifted := step.Map(NewStepMap([]int{0, 0, 3}))
	rs, ok := shifted.(*ReplaceStep)
	if !ok || rs.From != 5 || rs.To != 7 {
		t.Errorf("Map(insert) = %v", shifted)
	}

	if got := step.Map(NewStepMap([]int{1, 5, 0})); got != nil {
		t.Errorf("Map(covering delete) = %v, want nil", got)
	}
}

func TestStepJSON(t *testing.T) {
	s := testSchema(t)
	step := NewReplaceStep(1, 3, model.NewFragment(s.Text("ab")))

	data, err := step.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	back, err := StepFromJSON(s, data)
	if err != nil {
		t.Fatalf("StepFromJSON() error = %v", err)
	}
	rs, ok := back.(*ReplaceStep)
	if !ok || rs.From != 1 || rs.To != 3 || !rs.Content.Eq(step.Content) {
		t.Errorf("decoded = %v, want %v", back, step)
	}
}

func TestStepFromJSONErrors(t *testing.T) {
	s := testSchema(t)
	tests := []struct {
		name string
		data string
		want error
	}{
		{"malformed", `{`, ErrInvalidStepJSON},
		{"no tag", `{"from":1}`, ErrInvalidStepJSON},
		{"unknown", `{"stepType":"teleport"}`, ErrUnknownStepType},
		{"bad fields", `{"stepType":"replace","from":"x"}`, ErrInvalidStepJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StepFromJSON(s, []byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("StepFromJSON() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterStepDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RegisterStep() with duplicate tag should panic")
		}
	}()
	RegisterStep(ReplaceStepType, decodeReplaceStep)
}

func TestRegisteredStepTypes(t *testing.T) {
	types := RegisteredStepTypes()
	found := false
	for i, name := range types {
		if name == ReplaceStepType {
			found = true
		}
		if i > 0 && types[i-1] >= name {
			t.Errorf("RegisteredStepTypes() not sorted: %v", types)
		}
	}
	if !found {
		t.Errorf("RegisteredStepTypes() = %v, missing %q", types, ReplaceStepType)
	}
}

func TestTransform(t *testing.T) {
	s := testSchema(t)
	doc := textDoc(t, s, "ab", "cd")
	tr := NewTransform(doc)

	if err := tr.Step(NewReplaceStep(1, 1, model.NewFragment(s.Text("X")))); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if err := tr.Step(NewReplaceStep(6, 6, model.NewFragment(s.Text("Y")))); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if got := tr.Doc().TextContent(); got != "XabYcd" {
		t.Errorf("text = %q, want XabYcd", got)
	}
	if !tr.DocChanged() || len(tr.Steps()) != 2 || len(tr.Docs()) != 2 {
		t.Error("steps and docs should be recorded")
	}
	if tr.Before() != doc {
		t.Error("Before() should be the starting document")
	}
	// position 5 (start of "cd") moves past both insertions
	if got := tr.Mapping().Map(5, AssocAfter); got != 7 {
		t.Errorf("Mapping().Map(5) = %d, want 7", got)
	}

	err := tr.Step(NewReplaceStep(0, tr.Doc().ContentSize(), nil))
	if !errors.Is(err, ErrStepFailed) {
		t.Errorf("Step() error = %v, want ErrStepFailed", err)
	}
	if len(tr.Steps()) != 2 {
		t.Error("failed step should not be recorded")
	}
}

func TestMapSteps(t *testing.T) {
	s := testSchema(t)
	local := []Step{
		NewReplaceStep(3, 3, model.NewFragment(s.Text("A"))),
		NewReplaceStep(4, 4, model.NewFragment(s.Text("B"))),
	}
	over := NewMapping(NewStepMap([]int{1, 0, 2}))

	out := MapSteps(local, over)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	first, second := out[0].(*ReplaceStep), out[1].(*ReplaceStep)
	if first.From != 5 || second.From != 6 {
		t.Errorf("mapped positions = %d, %d, want 5, 6", first.From, second.From)
	}
}

func TestMapChain(t *testing.T) {
	s := testSchema(t)
	local := []Step{
		NewReplaceStep(3, 3, model.NewFragment(s.Text("A"))),
		NewReplaceStep(4, 4, model.NewFragment(s.Text("B"))),
	}
	over := NewMapping(NewStepMap([]int{1, 0, 2}))

	out, chain := MapChain(local, over)
	if len(out) != 2 || out[0] == nil || out[1] == nil {
		t.Fatalf("MapChain() steps = %v", out)
	}

	tests := []struct {
		at   int
		pos  int
		want int
	}{
		{0, 3, 5}, // start document: only over applies
		{1, 4, 6}, // after A
		{2, 5, 7}, // after B
		{2, 0, 0}, // before the remote insertion
	}
	for _, tt := range tests {
		if got := chain.At(tt.at).Map(tt.pos, AssocAfter); got != tt.want {
			t.Errorf("At(%d).Map(%d) = %d, want %d", tt.at, tt.pos, got, tt.want)
		}
	}
}

func TestRebaseSteps(t *testing.T) {
	s := testSchema(t)
	base := textDoc(t, s, "hello")

	localStep := NewReplaceStep(6, 6, model.NewFragment(s.Text("A")))
	local, err := NewRebaseable(localStep, base, "me")
	if err != nil {
		t.Fatal(err)
	}
	localDoc := localStep.Apply(base).Doc

	remote := NewReplaceStep(1, 1, model.NewFragment(s.Text("Z")))

	tr := NewTransform(localDoc)
	out, err := RebaseSteps(tr, []Rebaseable{local}, []Step{remote})
	if err != nil {
		t.Fatalf("RebaseSteps() error = %v", err)
	}
	if got := tr.Doc().TextContent(); got != "ZhelloA" {
		t.Errorf("text = %q, want ZhelloA", got)
	}
	if len(out) != 1 || out[0].Origin != "me" {
		t.Fatalf("rebased = %v", out)
	}
	if rs := out[0].Step.(*ReplaceStep); rs.From != 7 {
		t.Errorf("rebased From = %d, want 7", rs.From)
	}
}
