package tracereg

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/mathtrace/series"
	"github.com/vitalvas/mathtrace/tracecomp"
)

// hookedSeries runs onValue before every interpolation.
type hookedSeries struct {
	*series.Series
	once    sync.Once
	onValue func()
}

func (h *hookedSeries) ValueAt(t float64, mode series.Mode) float64 {
	h.once.Do(h.onValue)
	return h.Series.ValueAt(t, mode)
}

func mustSeries(t *testing.T, label string, timestamps, values []float64) *series.Series {
	t.Helper()

	s, err := series.FromPoints(label, timestamps, values)
	require.NoError(t, err)
	return s
}

func TestManagerCreate(t *testing.T) {
	a := mustSeries(t, "a", []float64{0, 10, 20}, []float64{1, 2, 3})
	b := mustSeries(t, "b", []float64{0, 10, 20}, []float64{10, 20, 30})

	t.Run("registers computed trace", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)

		var completed bool
		trace, result, err := mgr.Create(context.Background(), Definition{
			Name:       " sum ",
			Expression: "a + b",
			Variables:  []Binding{{Name: "a", Series: a}, {Name: "b", Series: b}},
		}, "", tracecomp.Hooks{
			OnCompleted: func(tracecomp.Result) { completed = true },
		})
		require.NoError(t, err)
		require.NotNil(t, trace)

		assert.True(t, completed)
		assert.Equal(t, tracecomp.StateCompleted, result.State)
		assert.Equal(t, 3, result.Valid)
		assert.Equal(t, "sum", trace.Label())
		assert.Equal(t, "a + b", trace.Expression())
		assert.Equal(t, []series.Point{{Timestamp: 0, Value: 11}, {Timestamp: 10, Value: 22}, {Timestamp: 20, Value: 33}}, trace.Points())

		got, ok := mgr.Registry().Get("sum")
		require.True(t, ok)
		assert.Same(t, trace, got)
	})

	t.Run("padded variable names", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)

		trace, _, err := mgr.Create(context.Background(), Definition{
			Name:       "sum",
			Expression: "a + b",
			Variables:  []Binding{{Name: " a", Series: a}, {Name: "b ", Series: b}},
		}, "", tracecomp.Hooks{})
		require.NoError(t, err)

		_, ok := trace.Input("a")
		assert.True(t, ok)
		assert.Equal(t, 3, trace.Size())
	})

	t.Run("validation error leaves registry untouched", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)

		_, _, err := mgr.Create(context.Background(), Definition{
			Name:       "sum",
			Expression: "a + c",
			Variables:  []Binding{{Name: "a", Series: a}},
		}, "", tracecomp.Hooks{})
		assert.ErrorIs(t, err, ErrUndefinedVariable)
		assert.Empty(t, mgr.Registry().Names())
	})

	t.Run("failed computation is discarded", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)

		var failed error
		_, result, err := mgr.Create(context.Background(), Definition{
			Name:       "ratio",
			Expression: "a / (b - b)",
			Variables:  []Binding{{Name: "a", Series: a}, {Name: "b", Series: b}},
		}, "", tracecomp.Hooks{
			OnFailed: func(err error) { failed = err },
		})
		assert.ErrorIs(t, err, tracecomp.ErrNoValidPoints)
		assert.ErrorIs(t, failed, tracecomp.ErrNoValidPoints)
		assert.Equal(t, tracecomp.StateFailed, result.State)
		assert.False(t, mgr.Registry().Has("ratio"))
	})

	t.Run("edit replaces trace", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)
		def := Definition{
			Name:       "calc",
			Expression: "a + b",
			Variables:  []Binding{{Name: "a", Series: a}, {Name: "b", Series: b}},
		}

		first, _, err := mgr.Create(context.Background(), def, "", tracecomp.Hooks{})
		require.NoError(t, err)

		_, _, err = mgr.Create(context.Background(), def, "", tracecomp.Hooks{})
		assert.ErrorIs(t, err, ErrExists)

		def.Expression = "b - a"
		second, _, err := mgr.Create(context.Background(), def, "calc", tracecomp.Hooks{})
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, []series.Point{{Timestamp: 0, Value: 9}, {Timestamp: 10, Value: 18}, {Timestamp: 20, Value: 27}}, second.Points())

		got, ok := mgr.Registry().Get("calc")
		require.True(t, ok)
		assert.Same(t, second, got)
	})

	t.Run("edit with rename", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)
		def := Definition{
			Name:       "old",
			Expression: "a",
			Variables:  []Binding{{Name: "a", Series: a}},
		}

		_, _, err := mgr.Create(context.Background(), def, "", tracecomp.Hooks{})
		require.NoError(t, err)

		def.Name = "new"
		_, _, err = mgr.Create(context.Background(), def, "old", tracecomp.Hooks{})
		require.NoError(t, err)

		assert.Equal(t, []string{"new"}, mgr.Registry().Names())
	})
}

func TestManagerCancel(t *testing.T) {
	t.Run("cancel running computation", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)

		a := &hookedSeries{
			Series: mustSeries(t, "a", []float64{0, 10, 20, 30}, []float64{0, 1, 2, 3}),
		}
		var found bool
		a.onValue = func() { found = mgr.Cancel("slow") }

		var cancelled bool
		_, result, err := mgr.Create(context.Background(), Definition{
			Name:       "slow",
			Expression: "a * 2",
			Variables:  []Binding{{Name: "a", Series: a}},
		}, "", tracecomp.Hooks{
			OnCancelled: func() { cancelled = true },
		})

		assert.True(t, found)
		assert.True(t, cancelled)
		assert.ErrorIs(t, err, tracecomp.ErrCancelled)
		assert.Equal(t, tracecomp.StateCancelled, result.State)
		assert.Equal(t, 1, result.Valid)
		assert.False(t, mgr.Registry().Has("slow"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)
		a := mustSeries(t, "a", []float64{0, 10}, []float64{1, 2})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := mgr.Create(ctx, Definition{
			Name:       "x",
			Expression: "a",
			Variables:  []Binding{{Name: "a", Series: a}},
		}, "", tracecomp.Hooks{})
		assert.ErrorIs(t, err, tracecomp.ErrCancelled)
		assert.False(t, mgr.Registry().Has("x"))
	})

	t.Run("nothing running", func(t *testing.T) {
		mgr := NewManager(NewRegistry(), nil)
		assert.False(t, mgr.Cancel("missing"))

		mgr.CancelAll()
	})
}
