// Package tracereg keeps the set of computed traces and drives their
// creation: validation, registration, computation and cleanup on failure.
package tracereg

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vitalvas/mathtrace/series"
)

var (
	ErrExists   = errors.New("a math trace with this name already exists")
	ErrNotFound = errors.New("math trace not found")
)

// Registry is a goroutine-safe collection of computed traces keyed by name.
type Registry struct {
	mu     sync.RWMutex
	traces map[string]*series.Computed
}

func NewRegistry() *Registry {
	return &Registry{
		traces: make(map[string]*series.Computed),
	}
}

// Add registers a trace under its label.
func (r *Registry) Add(trace *series.Computed) error {
	if trace == nil {
		return errors.New("trace is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.traces[trace.Label()]; ok {
		return fmt.Errorf("%w: %s", ErrExists, trace.Label())
	}

	r.traces[trace.Label()] = trace
	return nil
}

// Remove drops a trace.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.traces[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	delete(r.traces, name)
	return nil
}

// removeIf drops name only while it still maps to trace.
func (r *Registry) removeIf(name string, trace *series.Computed) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.traces[name] == trace {
		delete(r.traces, name)
	}
}

func (r *Registry) Get(name string) (*series.Computed, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trace, ok := r.traces[name]
	return trace, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered trace names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.traces))
	for name := range r.traces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
