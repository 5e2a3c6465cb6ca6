package collab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/dshills/tabular/internal/history"
	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/transform"
)

// ErrVersionMismatch indicates steps based on a version other than the
// authority's current one.
var ErrVersionMismatch = errors.New("version mismatch")

// Authority is the central step log all clients synchronize against.
// It is safe for concurrent use.
type Authority struct {
	mu        sync.Mutex
	doc       *model.Node
	steps     []transform.Step
	clientIDs []string
	notify    chan struct{}
	logger    *log.Logger
}

// Option configures an Authority or a Client.
type Option func(*options)

type options struct {
	logger   *log.Logger
	clientID string
	history  *history.History
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	return o
}

// NewAuthority creates an authority starting at doc, version 0.
func NewAuthority(doc *model.Node, opts ...Option) *Authority {
	o := applyOptions(opts)
	return &Authority{
		doc:    doc,
		notify: make(chan struct{}),
		logger: o.logger,
	}
}

// Version returns the number of accepted steps.
func (a *Authority) Version() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.steps)
}

// Doc returns the current document.
func (a *Authority) Doc() *model.Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc
}

// ReceiveSteps appends steps made by clientID on top of version. Either
// all steps are accepted or none are.
func (a *Authority) ReceiveSteps(version int, steps []transform.Step, clientID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if version != len(a.steps) {
		return fmt.Errorf("%w: client %s at %d, authority at %d", ErrVersionMismatch, clientID, version, len(a.steps))
	}

	doc := a.doc
	for i, step := range steps {
		res := step.Apply(doc)
		if res.Failed() {
			a.logger.Printf("collab: rejected step %d from %s: %v", i, clientID, res.Err)
			return fmt.Errorf("%w: %s step %d: %w", transform.ErrStepFailed, step.StepType(), i, res.Err)
		}
		doc = res.Doc
	}
	if len(steps) == 0 {
		return nil
	}

	a.doc = doc
	a.steps = append(a.steps, steps...)
	for range steps {
		a.clientIDs = append(a.clientIDs, clientID)
	}
	close(a.notify)
	a.notify = make(chan struct{})

	a.logger.Printf("collab: accepted %d steps from %s, version %d", len(steps), clientID, len(a.steps))
	return nil
}

// StepsSince returns the steps accepted after version and the IDs of the
// clients that made them.
func (a *Authority) StepsSince(version int) ([]transform.Step, []string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stepsSinceLocked(version)
}

func (a *Authority) stepsSinceLocked(version int) ([]transform.Step, []string, error) {
	if version < 0 || version > len(a.steps) {
		return nil, nil, fmt.Errorf("%w: %d not in [0, %d]", ErrVersionMismatch, version, len(a.steps))
	}
	steps := append([]transform.Step(nil), a.steps[version:]...)
	ids := append([]string(nil), a.clientIDs[version:]...)
	return steps, ids, nil
}

// WaitForSteps blocks until steps newer than version exist, then returns
// them like StepsSince. It returns ctx.Err() if ctx ends first.
func (a *Authority) WaitForSteps(ctx context.Context, version int) ([]transform.Step, []string, error) {
	for {
		a.mu.Lock()
		if version != len(a.steps) {
			steps, ids, err := a.stepsSinceLocked(version)
			a.mu.Unlock()
			return steps, ids, err
		}
		ch := a.notify
		a.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-ch:
		}
	}
}
