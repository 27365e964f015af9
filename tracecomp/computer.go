// Package tracecomp derives a new time series by evaluating an arithmetic
// expression over the merged timestamps of its input series.
//
// For every timestamp in the union of all input timestamps the computer
// checks that no input is in a gap wider than the configured maximum,
// interpolates each variable, evaluates the expression and appends the
// result to the output series. Points that cannot be computed are skipped.
//
// Example:
//
//	computer := tracecomp.New(tracecomp.WithHooks(tracecomp.Hooks{
//	    OnProgress: func(p int) { fmt.Println(p, "%") },
//	}))
//
//	err := computer.Compute(tracecomp.Request{
//	    Expression: "a - b",
//	    Bindings:   map[string]series.TimeSeries{"a": left, "b": right},
//	    Output:     out,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := computer.Run(ctx)
package tracecomp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/vitalvas/mathtrace/mathexpr"
	"github.com/vitalvas/mathtrace/series"
	"github.com/vitalvas/mathtrace/xlogger"
)

// DefaultMaxGap is the widest gap, in timestamp units, that is interpolated across.
const DefaultMaxGap = 1000.0

// Request describes one computation.
type Request struct {
	Expression string
	Bindings   map[string]series.TimeSeries
	Output     series.Sink
	// MaxGap <= 0 selects DefaultMaxGap.
	MaxGap float64
}

// Result summarises a finished run.
type Result struct {
	State   State
	Valid   int
	Skipped int
	Total   int
	Elapsed time.Duration
}

// Outcome is delivered by Start once the run has finished.
type Outcome struct {
	Result Result
	Err    error
}

type Option func(*Computer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Computer) {
		c.logger = logger
	}
}

func WithHooks(hooks Hooks) Option {
	return func(c *Computer) {
		c.hooks = hooks
	}
}

// Computer runs one computation at a time. Compute and Cancel may be called
// from any goroutine; Run does the work on the caller's goroutine.
type Computer struct {
	hooks  Hooks
	logger *slog.Logger

	mu              sync.Mutex
	request         *Request
	state           State
	cancelRequested bool
}

func New(opts ...Option) *Computer {
	c := &Computer{}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = xlogger.OrDiscard(c.logger)
	return c
}

// Compute captures a snapshot of req for the next Run. Nil bindings,
// including typed nil pointers, are dropped and count as unbound.
func (c *Computer) Compute(req Request) error {
	if req.Output == nil {
		return ErrNoOutput
	}

	snapshot := req
	snapshot.Bindings = make(map[string]series.TimeSeries, len(req.Bindings))
	for name, ts := range req.Bindings {
		if !series.IsNil(ts) {
			snapshot.Bindings[name] = ts
		}
	}
	if snapshot.MaxGap <= 0 {
		snapshot.MaxGap = DefaultMaxGap
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return ErrBusy
	}

	c.request = &snapshot
	c.state = StatePreparing
	c.cancelRequested = false

	return nil
}

// Cancel asks a prepared or running computation to stop. It is honoured
// before the next timestamp is processed.
func (c *Computer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelRequested = true
}

// State returns the current lifecycle state.
func (c *Computer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Start executes Run on a new goroutine.
func (c *Computer) Start(ctx context.Context) <-chan Outcome {
	done := make(chan Outcome, 1)

	go func() {
		defer close(done)

		result, err := c.Run(ctx)
		done <- Outcome{Result: result, Err: err}
	}()

	return done
}

// Run executes the prepared computation. A done ctx acts like Cancel.
// Points already written to the output are kept when the run fails or is
// cancelled.
func (c *Computer) Run(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.state != StatePreparing || c.request == nil {
		c.mu.Unlock()
		return Result{State: c.State()}, ErrNoRequest
	}
	req := *c.request
	c.state = StateRunning
	c.mu.Unlock()

	start := time.Now()
	c.hooks.started()

	result, err := c.run(ctx, req)
	result.Elapsed = time.Since(start)

	switch {
	case err == nil:
		result.State = StateCompleted
	case errors.Is(err, ErrCancelled):
		result.State = StateCancelled
	default:
		result.State = StateFailed
	}

	c.mu.Lock()
	c.state = result.State
	c.mu.Unlock()

	switch result.State {
	case StateCompleted:
		c.logger.Debug("math trace computation complete",
			"elapsed", result.Elapsed,
			"valid", result.Valid,
			"skipped", result.Skipped,
			"total", result.Total,
		)
		c.hooks.completed(result)
	case StateCancelled:
		c.logger.Debug("math trace computation cancelled", "valid", result.Valid, "total", result.Total)
		c.hooks.cancelled()
	default:
		c.logger.Debug("math trace computation failed", "error", err)
		c.hooks.failed(err)
	}

	return result, err
}

func (c *Computer) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cancelRequested
}

func (c *Computer) run(ctx context.Context, req Request) (Result, error) {
	var result Result

	expr, err := mathexpr.Compile(req.Expression)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrParse, err)
	}

	variables := expr.Variables()

	err = mathexpr.CheckBindings(variables, func(name string) bool {
		return req.Bindings[name] != nil
	})
	if err != nil {
		return result, fmt.Errorf("%w in mapping", err)
	}

	for _, name := range variables {
		if req.Bindings[name].Size() == 0 {
			return result, fmt.Errorf("%w: variable '%s'", ErrEmptySeries, name)
		}
	}

	c.logger.Debug("collecting timestamps from input series", "series", len(req.Bindings))

	timestamps := TimestampUnion(req.Bindings)
	if len(timestamps) == 0 {
		return result, ErrNoTimestamps
	}

	result.Total = len(timestamps)
	c.logger.Debug("found unique timestamps", "count", result.Total)

	req.Output.Clear()

	values := make(map[string]float64, len(variables))
	lastProgress := -1

	for i, t := range timestamps {
		if c.cancelled(ctx) {
			return result, ErrCancelled
		}

		if progress := i * 100 / result.Total; progress != lastProgress && progress%10 == 0 {
			c.hooks.progress(progress)
			lastProgress = progress
		}

		value, ok := c.evaluateAt(t, expr, variables, values, req)
		if !ok {
			result.Skipped++
			continue
		}

		req.Output.Append(t, value)
		result.Valid++
	}

	if result.Valid == 0 {
		return result, fmt.Errorf("%w (%d points skipped) - check for division by zero or invalid operations",
			ErrNoValidPoints, result.Skipped)
	}

	req.Output.Finalize()
	c.hooks.progress(100)

	return result, nil
}

// evaluateAt computes the expression at t. It reports false when t is in a
// gap, an input cannot be interpolated, or the result is not finite.
func (c *Computer) evaluateAt(t float64, expr *mathexpr.Expression, variables []string, values map[string]float64, req Request) (float64, bool) {
	if !TimestampValid(t, req.Bindings, req.MaxGap) {
		return 0, false
	}

	for _, name := range variables {
		value := req.Bindings[name].ValueAt(t, series.Interpolate)
		if !isFinite(value) {
			return 0, false
		}
		values[name] = value
	}

	result, err := expr.Evaluate(values)
	if err != nil || !isFinite(result) {
		return 0, false
	}

	return result, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
