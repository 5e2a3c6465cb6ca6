package history

import "time"

// BeginGroup starts an undo group. Transactions recorded while grouping
// are combined into a single entry. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.group = &entry{description: name}
}

// EndGroup finishes the group and pushes it as one entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	g := h.group
	h.group = nil

	if len(g.steps) == 0 {
		return
	}
	g.timestamp = time.Now()
	h.pushLocked(g)
}

// CancelGroup discards the group without adding it to history.
// Transactions already applied still affect the document.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.group = nil
}

// IsGrouping returns true if currently in a group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// GroupScope provides a convenient way to group transactions using defer.
//
//	func insertTable(h *History, ...) {
//	    defer h.GroupScope("Insert Table").End()
//	    // ... several transactions ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{history: h, active: true}
}

// End ends the group scope. Only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without creating an entry.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Group runs fn within an undo group. If fn returns an error, the group
// is cancelled.
func (h *History) Group(name string, fn func() error) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}

	h.EndGroup()
	return nil
}
