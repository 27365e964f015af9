// Package series provides the time-series capability consumed by trace
// computation and a goroutine-safe in-memory store implementing it.
package series

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"
)

// Mode selects how ValueAt resolves timestamps between samples.
type Mode uint8

const (
	// Interpolate linearly between the bracketing samples.
	Interpolate Mode = iota
	// Nearest returns the value of the closest sample.
	Nearest
	// Previous returns the value of the last sample at or before the timestamp.
	Previous
)

// TimeSeries is a read-only ordered sequence of timestamp/value samples.
type TimeSeries interface {
	Size() int
	TimestampAt(index int) float64
	// IndexForTimestamp returns the first index whose timestamp is >= t,
	// Size() if t is after every sample.
	IndexForTimestamp(t float64) int
	ValueAt(t float64, mode Mode) float64
}

// IsNil reports whether ts is nil or an interface holding a nil pointer.
func IsNil(ts TimeSeries) bool {
	if ts == nil {
		return true
	}
	v := reflect.ValueOf(ts)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Sink receives computed samples.
type Sink interface {
	Append(t, v float64)
	Clear()
	Finalize()
}

var ErrLengthMismatch = errors.New("timestamps and values must have the same length")

// Point is a single sample.
type Point struct {
	Timestamp float64
	Value     float64
}

// Series is an in-memory TimeSeries and Sink. Samples are kept sorted by
// timestamp; appending out of order inserts at the right place.
type Series struct {
	mu         sync.RWMutex
	label      string
	timestamps []float64
	values     []float64
	version    uint64
}

// New creates an empty series.
func New(label string) *Series {
	return &Series{label: label}
}

// FromPoints creates a series from parallel timestamp and value slices.
func FromPoints(label string, timestamps, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(timestamps), len(values))
	}

	s := &Series{
		label:      label,
		timestamps: make([]float64, len(timestamps)),
		values:     make([]float64, len(values)),
	}
	copy(s.timestamps, timestamps)
	copy(s.values, values)

	if !sort.Float64sAreSorted(s.timestamps) {
		sort.Stable(byTimestamp{s})
	}

	return s, nil
}

type byTimestamp struct{ s *Series }

func (b byTimestamp) Len() int           { return len(b.s.timestamps) }
func (b byTimestamp) Less(i, j int) bool { return b.s.timestamps[i] < b.s.timestamps[j] }
func (b byTimestamp) Swap(i, j int) {
	b.s.timestamps[i], b.s.timestamps[j] = b.s.timestamps[j], b.s.timestamps[i]
	b.s.values[i], b.s.values[j] = b.s.values[j], b.s.values[i]
}

// Label returns the series name.
func (s *Series) Label() string {
	return s.label
}

func (s *Series) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.timestamps)
}

func (s *Series) TimestampAt(index int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.timestamps[index]
}

func (s *Series) IndexForTimestamp(t float64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sort.SearchFloat64s(s.timestamps, t)
}

// ValueAt resolves the value at t. Outside the sampled range the boundary
// value is returned. An empty series yields NaN.
func (s *Series) ValueAt(t float64, mode Mode) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.timestamps)
	if n == 0 {
		return math.NaN()
	}

	idx := sort.SearchFloat64s(s.timestamps, t)

	switch {
	case idx == 0:
		return s.values[0]
	case idx == n:
		return s.values[n-1]
	case s.timestamps[idx] == t:
		return s.values[idx]
	}

	t0, t1 := s.timestamps[idx-1], s.timestamps[idx]
	v0, v1 := s.values[idx-1], s.values[idx]

	switch mode {
	case Previous:
		return v0
	case Nearest:
		if t-t0 <= t1-t {
			return v0
		}
		return v1
	}

	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// Append adds a sample without notifying observers; call Finalize when done.
func (s *Series) Append(t, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.timestamps)
	if n == 0 || t >= s.timestamps[n-1] {
		s.timestamps = append(s.timestamps, t)
		s.values = append(s.values, v)
		return
	}

	idx := sort.SearchFloat64s(s.timestamps, t)
	s.timestamps = append(s.timestamps, 0)
	s.values = append(s.values, 0)
	copy(s.timestamps[idx+1:], s.timestamps[idx:])
	copy(s.values[idx+1:], s.values[idx:])
	s.timestamps[idx] = t
	s.values[idx] = v
}

// Clear drops every sample.
func (s *Series) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timestamps = s.timestamps[:0]
	s.values = s.values[:0]
}

// Finalize publishes the current contents by bumping the version.
func (s *Series) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
}

// Version returns the number of Finalize calls.
func (s *Series) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Points returns a copy of all samples.
func (s *Series) Points() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Point, len(s.timestamps))
	for i := range s.timestamps {
		out[i] = Point{Timestamp: s.timestamps[i], Value: s.values[i]}
	}
	return out
}

// Computed is a series derived from an expression over input series.
type Computed struct {
	*Series
	expression string
	inputs     map[string]TimeSeries
}

// NewComputed creates an empty computed series. The inputs map is copied.
func NewComputed(label, expression string, inputs map[string]TimeSeries) *Computed {
	copied := make(map[string]TimeSeries, len(inputs))
	for name, ts := range inputs {
		copied[name] = ts
	}

	return &Computed{
		Series:     New(label),
		expression: expression,
		inputs:     copied,
	}
}

// Expression returns the expression the series is computed from.
func (c *Computed) Expression() string {
	return c.expression
}

// Inputs returns a copy of the variable to input series mapping.
func (c *Computed) Inputs() map[string]TimeSeries {
	out := make(map[string]TimeSeries, len(c.inputs))
	for name, ts := range c.inputs {
		out[name] = ts
	}
	return out
}

// Input returns the series bound to a variable.
func (c *Computed) Input(name string) (TimeSeries, bool) {
	ts, ok := c.inputs[name]
	return ts, ok
}
