package editor

import (
	"sort"
	"sync"

	"github.com/dshills/tabular/internal/state"
	"github.com/dshills/tabular/internal/table"
)

// Registry maps command names to commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]state.Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]state.Command)}
}

// DefaultRegistry returns a registry holding the table commands.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("add_column_before", table.AddColumnBefore)
	r.Register("add_column_after", table.AddColumnAfter)
	r.Register("remove_column", table.RemoveColumn)
	r.Register("add_row_before", table.AddRowBefore)
	r.Register("add_row_after", table.AddRowAfter)
	r.Register("remove_row", table.RemoveRow)
	r.Register("next_cell", table.SelectNextCell)
	r.Register("prev_cell", table.SelectPreviousCell)
	return r
}

// Register adds or replaces a command.
func (r *Registry) Register(name string, cmd state.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = cmd
}

// Unregister removes a command.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get returns the named command.
func (r *Registry) Get(name string) (state.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
