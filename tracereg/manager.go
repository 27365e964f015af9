package tracereg

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/vitalvas/mathtrace/series"
	"github.com/vitalvas/mathtrace/tracecomp"
	"github.com/vitalvas/mathtrace/xlogger"
)

// Manager creates traces in a Registry. A trace is registered before its
// computation starts and removed again if the computation fails or is
// cancelled, so the registry never keeps a partial trace.
type Manager struct {
	registry *Registry
	logger   *slog.Logger

	mu      sync.Mutex
	running map[string]*tracecomp.Computer
}

func NewManager(registry *Registry, logger *slog.Logger) *Manager {
	return &Manager{
		registry: registry,
		logger:   xlogger.OrDiscard(logger),
		running:  make(map[string]*tracecomp.Computer),
	}
}

// Registry returns the registry the manager writes to.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Create validates def, registers a new trace and computes it on a worker
// goroutine. When editing is not empty the trace with that name is replaced.
func (m *Manager) Create(ctx context.Context, def Definition, editing string, hooks tracecomp.Hooks) (*series.Computed, tracecomp.Result, error) {
	if err := def.Validate(m.registry, editing); err != nil {
		return nil, tracecomp.Result{}, err
	}

	name := strings.TrimSpace(def.Name)
	logger := m.logger.With("trace", name)

	if editing != "" {
		if err := m.registry.Remove(editing); err == nil {
			logger.Debug("replacing math trace", "previous", editing)
		}
	}

	trace := series.NewComputed(name, strings.TrimSpace(def.Expression), def.Bindings())
	if err := m.registry.Add(trace); err != nil {
		return nil, tracecomp.Result{}, err
	}

	computer := tracecomp.New(
		tracecomp.WithLogger(logger),
		tracecomp.WithHooks(hooks),
	)

	err := computer.Compute(tracecomp.Request{
		Expression: trace.Expression(),
		Bindings:   trace.Inputs(),
		Output:     trace,
		MaxGap:     def.MaxGap,
	})
	if err != nil {
		m.registry.removeIf(name, trace)
		return nil, tracecomp.Result{}, err
	}

	m.track(name, computer)
	defer m.untrack(name, computer)

	outcome := <-computer.Start(ctx)
	if outcome.Err != nil {
		m.registry.removeIf(name, trace)
		logger.Warn("math trace discarded", "state", outcome.Result.State, "error", outcome.Err)
		return nil, outcome.Result, outcome.Err
	}

	logger.Info("math trace created",
		"valid", outcome.Result.Valid,
		"skipped", outcome.Result.Skipped,
		"elapsed", outcome.Result.Elapsed,
	)

	return trace, outcome.Result, nil
}

// Cancel requests cancellation of the computation for name. It reports
// whether a computation was running.
func (m *Manager) Cancel(name string) bool {
	m.mu.Lock()
	computer, ok := m.running[name]
	m.mu.Unlock()

	if ok {
		computer.Cancel()
	}
	return ok
}

// CancelAll requests cancellation of every running computation.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, computer := range m.running {
		computer.Cancel()
	}
}

func (m *Manager) track(name string, computer *tracecomp.Computer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running[name] = computer
}

func (m *Manager) untrack(name string, computer *tracecomp.Computer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running[name] == computer {
		delete(m.running, name)
	}
}
