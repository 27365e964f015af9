package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/mathtrace/series"
)

func newTrace(t *testing.T, name string, points map[float64]float64) *series.Computed {
	t.Helper()

	a := series.New("a")
	trace := series.NewComputed(name, "a * 2", map[string]series.TimeSeries{"a": a})
	for ts, v := range points {
		trace.Append(ts, v)
	}
	trace.Finalize()
	return trace
}

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T) *SQLiteRecorder {
		t.Helper()

		rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "traces.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { rec.Close() })
		return rec
	}

	t.Run("save and load", func(t *testing.T) {
		rec := open(t)

		require.NoError(t, rec.SaveTrace(ctx, newTrace(t, "double", map[float64]float64{20: 4, 0: 0, 10: 2})))

		got, err := rec.LoadTrace(ctx, "double")
		require.NoError(t, err)

		assert.Equal(t, "double", got.Label())
		assert.Equal(t, []series.Point{
			{Timestamp: 0, Value: 0},
			{Timestamp: 10, Value: 2},
			{Timestamp: 20, Value: 4},
		}, got.Points())
	})

	t.Run("save replaces points", func(t *testing.T) {
		rec := open(t)

		require.NoError(t, rec.SaveTrace(ctx, newTrace(t, "double", map[float64]float64{0: 1, 10: 2, 20: 3})))
		require.NoError(t, rec.SaveTrace(ctx, newTrace(t, "double", map[float64]float64{5: 7})))

		got, err := rec.LoadTrace(ctx, "double")
		require.NoError(t, err)
		assert.Equal(t, []series.Point{{Timestamp: 5, Value: 7}}, got.Points())
	})

	t.Run("empty trace", func(t *testing.T) {
		rec := open(t)

		require.NoError(t, rec.SaveTrace(ctx, newTrace(t, "empty", nil)))

		got, err := rec.LoadTrace(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, 0, got.Size())
	})

	t.Run("not found", func(t *testing.T) {
		rec := open(t)

		_, err := rec.LoadTrace(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("nil trace", func(t *testing.T) {
		rec := open(t)
		assert.Error(t, rec.SaveTrace(ctx, nil))
	})

	t.Run("reopen keeps data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traces.db")

		rec, err := NewSQLiteRecorder(path, nil)
		require.NoError(t, err)
		require.NoError(t, rec.SaveTrace(ctx, newTrace(t, "kept", map[float64]float64{1: 1})))
		require.NoError(t, rec.Close())

		rec, err = NewSQLiteRecorder(path, nil)
		require.NoError(t, err)
		defer rec.Close()

		got, err := rec.LoadTrace(ctx, "kept")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Size())
	})
}

func TestNoopRecorder(t *testing.T) {
	rec := NewNoopRecorder()

	assert.NoError(t, rec.SaveTrace(context.Background(), newTrace(t, "x", nil)))

	_, err := rec.LoadTrace(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, rec.Close())
}

var (
	_ Recorder = (*SQLiteRecorder)(nil)
	_ Recorder = (*NoopRecorder)(nil)
)
