package editor

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/dshills/tabular/internal/history"
	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/state"
	"github.com/dshills/tabular/internal/transform"
)

// Session is a single-user editing session.
type Session struct {
	mu       sync.Mutex
	state    *state.EditorState
	history  *history.History
	registry *Registry
	logger   *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithHistory sets the undo history. Without it a history of
// history.DefaultMaxEntries entries is used.
func WithHistory(h *history.History) Option {
	return func(s *Session) {
		s.history = h
	}
}

// WithRegistry sets the command registry.
func WithRegistry(r *Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithLogger sets the logger for command tracing.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession starts a session on doc with the cursor at the first text
// position.
func NewSession(doc *model.Node, opts ...Option) *Session {
	s := &Session{state: state.NewAtStart(doc)}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = history.NewHistory(history.DefaultMaxEntries)
	}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	return s
}

// State returns the current editor state.
func (s *Session) State() *state.EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Doc returns the current document.
func (s *Session) Doc() *model.Node {
	return s.State().Doc()
}

// Selection returns the current selection.
func (s *Session) Selection() state.Selection {
	return s.State().Selection()
}

// History returns the session's undo history.
func (s *Session) History() *history.History {
	return s.history
}

// Registry returns the session's command registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Select sets the selection. Both ends must lie within the document.
func (s *Session) Select(anchor, head int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.state.Doc().ContentSize()
	if anchor < 0 || anchor > size || head < 0 || head > size {
		return fmt.Errorf("%w: %d..%d (document size %d)", ErrInvalidSelection, anchor, head, size)
	}
	s.state = s.state.WithSelection(state.NewSelection(anchor, head))
	return nil
}

// SetCursor collapses the selection to pos.
func (s *Session) SetCursor(pos int) error {
	return s.Select(pos, pos)
}

// Exec runs the named command. It reports false when the command does
// not apply at the current selection.
func (s *Session) Exec(name string) (bool, error) {
	cmd, ok := s.registry.Get(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return s.Run(cmd, name)
}

// Run runs cmd, applies its transaction and records it in the history
// under description.
func (s *Session) Run(cmd state.Command, description string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tr *state.Transaction
	if !cmd(s.state, func(t *state.Transaction) { tr = t }) {
		s.logger.Printf("%s: not applicable at %s", description, s.state.Selection())
		return false, nil
	}
	if tr == nil {
		return true, nil
	}
	if err := s.applyLocked(tr, description); err != nil {
		return false, err
	}
	s.logger.Printf("%s: %d step(s), selection %s", description, len(tr.Steps()), s.state.Selection())
	return true, nil
}

// Dispatch applies an externally built transaction.
func (s *Session) Dispatch(tr *state.Transaction, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(tr, description)
}

func (s *Session) applyLocked(tr *state.Transaction, description string) error {
	next, err := s.state.Apply(tr)
	if err != nil {
		return err
	}
	if err := s.history.Record(tr, description); err != nil {
		return fmt.Errorf("recording %s: %w", description, err)
	}
	s.state = next
	return nil
}

// InsertText replaces the selection with text.
func (s *Session) InsertText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.state.Selection()
	tr := s.state.Tr()
	var content *model.Fragment
	if text != "" {
		content = model.NewFragment(s.state.Schema().Text(text))
	}
	if err := tr.Step(transform.NewReplaceStep(sel.From(), sel.To(), content)); err != nil {
		return err
	}
	return s.applyLocked(tr, "insert text")
}

// ApplySteps applies serialized steps, either a single step object or
// an array of them, as one history entry.
func (s *Session) ApplySteps(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed JSON", transform.ErrInvalidStepJSON)
	}
	r := gjson.ParseBytes(data)
	items := []gjson.Result{r}
	if r.IsArray() {
		items = r.Array()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tr := s.state.Tr()
	for i, item := range items {
		step, err := transform.StepFromResult(s.state.Schema(), item)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := tr.Step(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return s.applyLocked(tr, "apply steps")
}

// Undo reverts the most recent history entry.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.history.Undo(s.state)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Redo reapplies the most recently undone entry.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.history.Redo(s.state)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}
