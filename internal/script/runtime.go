package script

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tabular/internal/editor"
	"github.com/dshills/tabular/internal/table"
)

// DefaultTimeout bounds a script run when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Runtime binds a Lua state to an editing session.
type Runtime struct {
	state   *State
	session *editor.Session
	allow   func(name string) bool
	timeout time.Duration
	group   string
	logger  *log.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithAllow restricts which commands scripts may run.
func WithAllow(allow func(name string) bool) Option {
	return func(r *Runtime) {
		r.allow = allow
	}
}

// WithTimeout sets the per-run time limit. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// WithGroup records each run as a single undo entry named name.
func WithGroup(name string) Option {
	return func(r *Runtime) {
		r.group = name
	}
}

// WithLogger receives print and editor.log output.
func WithLogger(l *log.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a runtime for sess.
func NewRuntime(sess *editor.Session, opts ...Option) *Runtime {
	r := &Runtime{
		state:   NewState(),
		session: sess,
		allow:   func(string) bool { return true },
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard, "", 0)
	}
	r.install()
	return r
}

// Run executes Lua source.
func (r *Runtime) Run(ctx context.Context, code string) error {
	return r.run(ctx, func(ctx context.Context) error {
		return r.state.DoString(ctx, code)
	})
}

// RunFile executes a Lua file.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	return r.run(ctx, func(ctx context.Context) error {
		return r.state.DoFile(ctx, path)
	})
}

func (r *Runtime) run(ctx context.Context, fn func(context.Context) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if r.group != "" {
		defer r.session.History().GroupScope(r.group).End()
	}
	return fn(ctx)
}

// Close releases the Lua state.
func (r *Runtime) Close() error {
	return r.state.Close()
}

func (r *Runtime) install() {
	funcs := map[string]lua.LGFunction{
		"exec":     r.luaExec,
		"commands": r.luaCommands,
		"undo":     r.luaUndo,
		"redo":     r.luaRedo,
		"cursor":   r.luaCursor,
		"select":   r.luaSelect,
		"insert":   r.luaInsert,
		"text":     r.luaText,
		"doc_json": r.luaDocJSON,
		"table":    r.luaTable,
		"log":      r.luaLog,
	}
	for _, name := range r.session.Registry().Names() {
		funcs[name] = r.commandFunc(name)
	}
	r.state.RegisterModule("editor", funcs)
	r.state.RegisterFunc("print", r.luaPrint)
}

// checkAllowed raises a Lua error for names outside the allow list.
func (r *Runtime) checkAllowed(L *lua.LState, name string) {
	if !r.allow(name) {
		L.RaiseError("%v: %s", ErrCommandNotAllowed, name)
	}
}

func (r *Runtime) commandFunc(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		return r.exec(L, name)
	}
}

func (r *Runtime) exec(L *lua.LState, name string) int {
	r.checkAllowed(L, name)
	ok, err := r.session.Exec(name)
	if err != nil {
		L.RaiseError("%s: %v", name, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

// editor.exec(name) -> bool
func (r *Runtime) luaExec(L *lua.LState) int {
	return r.exec(L, L.CheckString(1))
}

// editor.commands() -> {name, ...}
func (r *Runtime) luaCommands(L *lua.LState) int {
	tbl := L.NewTable()
	for _, name := range r.session.Registry().Names() {
		tbl.Append(lua.LString(name))
	}
	L.Push(tbl)
	return 1
}

// editor.undo() -> bool
func (r *Runtime) luaUndo(L *lua.LState) int {
	r.checkAllowed(L, "undo")
	if r.session.History().IsGrouping() {
		L.RaiseError("undo is unavailable inside a grouped run")
	}
	L.Push(lua.LBool(r.session.Undo() == nil))
	return 1
}

// editor.redo() -> bool
func (r *Runtime) luaRedo(L *lua.LState) int {
	r.checkAllowed(L, "redo")
	if r.session.History().IsGrouping() {
		L.RaiseError("redo is unavailable inside a grouped run")
	}
	L.Push(lua.LBool(r.session.Redo() == nil))
	return 1
}

// editor.cursor([pos]) -> anchor, head
func (r *Runtime) luaCursor(L *lua.LState) int {
	if L.GetTop() >= 1 {
		if err := r.session.SetCursor(L.CheckInt(1)); err != nil {
			L.ArgError(1, err.Error())
		}
	}
	sel := r.session.Selection()
	L.Push(lua.LNumber(sel.Anchor))
	L.Push(lua.LNumber(sel.Head))
	return 2
}

// editor.select(anchor, [head])
func (r *Runtime) luaSelect(L *lua.LState) int {
	anchor := L.CheckInt(1)
	head := L.OptInt(2, anchor)
	if err := r.session.Select(anchor, head); err != nil {
		L.RaiseError("select: %v", err)
	}
	return 0
}

// editor.insert(text)
func (r *Runtime) luaInsert(L *lua.LState) int {
	r.checkAllowed(L, "insert")
	if err := r.session.InsertText(L.CheckString(1)); err != nil {
		L.RaiseError("insert: %v", err)
	}
	return 0
}

// editor.text() -> string
func (r *Runtime) luaText(L *lua.LState) int {
	L.Push(lua.LString(r.session.Doc().TextContent()))
	return 1
}

// editor.doc_json() -> string
func (r *Runtime) luaDocJSON(L *lua.LState) int {
	data, err := r.session.Doc().MarshalJSON()
	if err != nil {
		L.RaiseError("doc_json: %v", err)
	}
	L.Push(lua.LString(data))
	return 1
}

// editor.table() -> rows, columns, row, column of the cell at the cursor,
// or nil outside a table. Row and column are 1-based.
func (r *Runtime) luaTable(L *lua.LState) int {
	st := r.session.State()
	rp, err := st.ResolveFrom()
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	for d := rp.Depth(); d >= 2; d-- {
		if !rp.Node(d).Type().IsTableRow() {
			continue
		}
		tbl := rp.Node(d - 1)
		L.Push(lua.LNumber(tbl.ChildCount()))
		L.Push(lua.LNumber(table.Columns(tbl.Attrs())))
		L.Push(lua.LNumber(rp.Index(d-1) + 1))
		L.Push(lua.LNumber(rp.Index(d) + 1))
		return 4
	}
	L.Push(lua.LNil)
	return 1
}

// editor.log(...)
func (r *Runtime) luaLog(L *lua.LState) int {
	r.logger.Print(joinArgs(L))
	return 0
}

func (r *Runtime) luaPrint(L *lua.LState) int {
	r.logger.Print(joinArgs(L))
	return 0
}

func joinArgs(L *lua.LState) string {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, "\t")
}
