package collab

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/tabular/internal/history"
	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/state"
	"github.com/dshills/tabular/internal/table"
	"github.com/dshills/tabular/internal/transform"
)

// tableDoc returns doc(table(row("a", "b"), row("c", "d"))).
// Text positions: "a" 4, "b" 9, "c" 16, "d" 21.
func tableDoc(t *testing.T) *model.Node {
	t.Helper()
	s, err := model.NewSchema(model.SchemaSpec{Nodes: table.AddTableNodes([]model.NamedSpec{
		{Name: "doc", Spec: model.NodeSpec{Content: "block+"}},
		{Name: "paragraph", Spec: model.NodeSpec{Content: "text*", Group: "block"}},
		{Name: "text"},
	}, "paragraph+", "block")})
	if err != nil {
		t.Fatal(err)
	}
	node := func(name string, attrs model.Attrs, content ...*model.Node) *model.Node {
		n, err := s.Node(name, attrs, content...)
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	cols := model.Attrs{table.ColumnsAttr: 2}
	row := func(a, b string) *model.Node {
		return node(table.RowName, cols,
			node(table.CellName, nil, node("paragraph", nil, s.Text(a))),
			node(table.CellName, nil, node("paragraph", nil, s.Text(b))))
	}
	return node("doc", nil, node(table.TableName, cols, row("a", "b"), row("c", "d")))
}

func run(t *testing.T, c *Client, cmd state.Command, pos int) {
	t.Helper()
	st := c.State().WithSelection(state.Cursor(pos))
	var tr *state.Transaction
	if !cmd(st, func(x *state.Transaction) { tr = x }) {
		t.Fatal("command not applicable")
	}
	if _, err := c.Apply(tr); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
}

func insertText(t *testing.T, c *Client, pos int, text string) {
	t.Helper()
	st := c.State()
	tr := st.Tr()
	if err := tr.Step(transform.NewReplaceStep(pos, pos, model.NewFragment(st.Schema().Text(text)))); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Apply(tr); err != nil {
		t.Fatal(err)
	}
}

// syncClient sends c's steps, catching up first when the authority moved on.
func syncClient(t *testing.T, a *Authority, c *Client) {
	t.Helper()
	for {
		steps, ids, err := a.StepsSince(c.Version())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.Receive(steps, ids); err != nil {
			t.Fatalf("Receive() error = %v", err)
		}
		s, ok := c.SendableSteps()
		if !ok {
			return
		}
		err = a.ReceiveSteps(s.Version, s.Steps, s.ClientID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrVersionMismatch) {
			t.Fatalf("ReceiveSteps() error = %v", err)
		}
	}
}

func TestConvergence(t *testing.T) {
	doc := tableDoc(t)
	auth := NewAuthority(doc)
	alice := NewClient(state.New(doc, state.Cursor(4)), 0, WithClientID("alice"))
	bob := NewClient(state.New(doc, state.Cursor(21)), 0, WithClientID("bob"))

	run(t, alice, table.AddColumnAfter, 4)
	insertText(t, bob, 21, "X")

	s, _ := alice.SendableSteps()
	if err := auth.ReceiveSteps(s.Version, s.Steps, s.ClientID); err != nil {
		t.Fatal(err)
	}
	s, _ = bob.SendableSteps()
	if err := auth.ReceiveSteps(s.Version, s.Steps, s.ClientID); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("stale ReceiveSteps() error = %v, want ErrVersionMismatch", err)
	}

	syncClient(t, auth, bob)
	syncClient(t, auth, alice)

	if auth.Version() != 2 {
		t.Errorf("Version() = %d, want 2", auth.Version())
	}
	for _, c := range []*Client{alice, bob} {
		if !c.State().Doc().Eq(auth.Doc()) {
			t.Errorf("%s diverged:\n%v\n%v", c.ID(), c.State().Doc(), auth.Doc())
		}
		if c.Unconfirmed() != 0 {
			t.Errorf("%s has %d unconfirmed steps", c.ID(), c.Unconfirmed())
		}
	}
	tbl := auth.Doc().NodeAt(0)
	if table.Columns(tbl.Attrs()) != 3 {
		t.Errorf("columns = %d, want 3", table.Columns(tbl.Attrs()))
	}
	if got := tbl.Child(1).Child(2).TextContent(); got != "Xd" {
		t.Errorf("last cell = %q, want Xd", got)
	}
}

func TestConcurrentRemoveDropped(t *testing.T) {
	doc := tableDoc(t)
	auth := NewAuthority(doc)
	alice := NewClient(state.New(doc, state.Cursor(9)), 0, WithClientID("alice"))
	bob := NewClient(state.New(doc, state.Cursor(21)), 0, WithClientID("bob"))

	run(t, alice, table.RemoveColumn, 9)
	run(t, bob, table.RemoveColumn, 21)

	syncClient(t, auth, alice)
	syncClient(t, auth, bob)

	if auth.Version() != 1 {
		t.Errorf("Version() = %d, want 1; bob's duplicate removal should be dropped", auth.Version())
	}
	if !bob.State().Doc().Eq(auth.Doc()) {
		t.Errorf("bob diverged:\n%v\n%v", bob.State().Doc(), auth.Doc())
	}
	if got := table.Columns(auth.Doc().NodeAt(0).Attrs()); got != 1 {
		t.Errorf("columns = %d, want 1", got)
	}
}

func TestReceiveRebasesHistory(t *testing.T) {
	doc := tableDoc(t)
	auth := NewAuthority(doc)
	h := history.NewHistory(10)
	alice := NewClient(state.New(doc, state.Cursor(4)), 0, WithClientID("alice"), WithHistory(h))
	bob := NewClient(state.New(doc, state.Cursor(4)), 0)

	if bob.ID() == "" {
		t.Fatal("generated client ID is empty")
	}

	// alice types into "d" and records it for undo
	st := alice.State()
	tr := st.Tr()
	if err := tr.Step(transform.NewReplaceStep(21, 21, model.NewFragment(st.Schema().Text("X")))); err != nil {
		t.Fatal(err)
	}
	if _, err := alice.Apply(tr); err != nil {
		t.Fatal(err)
	}
	if err := h.Record(tr, "type"); err != nil {
		t.Fatal(err)
	}

	run(t, bob, table.AddColumnBefore, 4)
	syncClient(t, auth, bob)
	syncClient(t, auth, alice)

	undone, err := h.Undo(alice.State())
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	tbl := undone.Doc().NodeAt(0)
	if table.Columns(tbl.Attrs()) != 3 {
		t.Errorf("undo reverted the remote column")
	}
	if got := tbl.Child(1).Child(2).TextContent(); got != "d" {
		t.Errorf("cell after undo = %q, want d", got)
	}
}

func TestReceiveStepsRejectsFailingStep(t *testing.T) {
	doc := tableDoc(t)
	auth := NewAuthority(doc)

	bad := table.NewAddColumnStep([]int{4}, nil)
	err := auth.ReceiveSteps(0, []transform.Step{bad}, "x")
	if !errors.Is(err, transform.ErrStepFailed) {
		t.Errorf("ReceiveSteps() error = %v, want ErrStepFailed", err)
	}
	if auth.Version() != 0 || auth.Doc() != doc {
		t.Error("failed ReceiveSteps() changed the authority")
	}
	if _, _, err := auth.StepsSince(5); !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("StepsSince(5) error = %v, want ErrVersionMismatch", err)
	}
}

func TestWaitForSteps(t *testing.T) {
	doc := tableDoc(t)
	auth := NewAuthority(doc)

	step, err := table.CreateAddColumnStep(doc, 0, 0, doc.Type().Schema().NodeType(table.CellName), nil)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan []string, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, ids, err := auth.WaitForSteps(ctx, 0)
		if err != nil {
			t.Errorf("WaitForSteps() error = %v", err)
		}
		done <- ids
	}()

	if err := auth.ReceiveSteps(0, []transform.Step{step}, "alice"); err != nil {
		t.Fatal(err)
	}
	select {
	case ids := <-done:
		if len(ids) != 1 || ids[0] != "alice" {
			t.Errorf("WaitForSteps() ids = %v", ids)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForSteps() did not return")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := auth.WaitForSteps(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForSteps() error = %v, want DeadlineExceeded", err)
	}
}
