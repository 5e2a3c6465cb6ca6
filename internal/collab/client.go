package collab

import (
	"fmt"
	"log"
	"sync"

	"github.com/dshills/tabular/internal/history"
	"github.com/dshills/tabular/internal/state"
	"github.com/dshills/tabular/internal/transform"
	"github.com/google/uuid"
)

// WithClientID sets the client ID. By default a random UUID is used.
func WithClientID(id string) Option {
	return func(o *options) { o.clientID = id }
}

// WithHistory attaches an undo history that is rebased whenever remote
// steps arrive.
func WithHistory(h *history.History) Option {
	return func(o *options) { o.history = h }
}

// Sendable is a batch of unconfirmed local steps ready for the authority.
type Sendable struct {
	Version  int
	Steps    []transform.Step
	ClientID string
}

// Client tracks one participant's state and its unconfirmed steps.
// It is safe for concurrent use.
type Client struct {
	mu          sync.Mutex
	id          string
	version     int
	state       *state.EditorState
	unconfirmed []transform.Rebaseable
	history     *history.History
	logger      *log.Logger
}

// NewClient creates a client whose state st corresponds to the
// authority's version.
func NewClient(st *state.EditorState, version int, opts ...Option) *Client {
	o := applyOptions(opts)
	id := o.clientID
	if id == "" {
		id = uuid.NewString()
	}
	return &Client{
		id:      id,
		version: version,
		state:   st,
		history: o.history,
		logger:  o.logger,
	}
}

// ID returns the client ID.
func (c *Client) ID() string {
	return c.id
}

// Version returns the last authority version the client has seen.
func (c *Client) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// State returns the client's current state.
func (c *Client) State() *state.EditorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Unconfirmed returns the number of local steps not yet confirmed.
func (c *Client) Unconfirmed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.unconfirmed)
}

// Apply applies a local transaction and queues its steps for sending.
func (c *Client) Apply(tr *state.Transaction) (*state.EditorState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.state.Apply(tr)
	if err != nil {
		return nil, err
	}
	docs := tr.Docs()
	tracked := make([]transform.Rebaseable, 0, len(docs))
	for i, step := range tr.Steps() {
		r, err := transform.NewRebaseable(step, docs[i], c.id)
		if err != nil {
			return nil, fmt.Errorf("track local step: %w", err)
		}
		tracked = append(tracked, r)
	}
	c.unconfirmed = append(c.unconfirmed, tracked...)
	c.state = next
	return next, nil
}

// SendableSteps returns the unconfirmed steps, or false if there are none.
func (c *Client) SendableSteps() (Sendable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.unconfirmed) == 0 {
		return Sendable{}, false
	}
	steps := make([]transform.Step, len(c.unconfirmed))
	for i, r := range c.unconfirmed {
		steps[i] = r.Step
	}
	return Sendable{Version: c.version, Steps: steps, ClientID: c.id}, true
}

// Receive applies steps confirmed by the authority. Leading steps made by
// this client confirm its own unconfirmed steps; the rest are remote and
// the remaining local steps are rebased over them.
func (c *Client) Receive(steps []transform.Step, clientIDs []string) (*state.EditorState, error) {
	if len(steps) != len(clientIDs) {
		return nil, fmt.Errorf("received %d steps with %d client IDs", len(steps), len(clientIDs))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ours := 0
	for ours < len(clientIDs) && ours < len(c.unconfirmed) && clientIDs[ours] == c.id {
		ours++
	}
	local, remote := c.unconfirmed[ours:], steps[ours:]
	if len(remote) == 0 {
		c.version += len(steps)
		c.unconfirmed = local
		return c.state, nil
	}

	tr := c.state.Tr()
	rebased, err := transform.RebaseSteps(tr.Transform, local, remote)
	if err != nil {
		return nil, fmt.Errorf("rebase local steps: %w", err)
	}
	tr.SetMeta(history.MetaAddToHistory, false)
	next, err := c.state.Apply(tr)
	if err != nil {
		return nil, err
	}

	if dropped := len(local) - len(rebased); dropped > 0 {
		c.logger.Printf("collab: client %s dropped %d local steps during rebase", c.id, dropped)
	}
	c.version += len(steps)
	c.unconfirmed = rebased
	c.state = next
	if c.history != nil {
		c.history.Rebase(tr.Mapping())
	}
	return next, nil
}
