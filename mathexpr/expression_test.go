package mathexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Run("free variables in first-encounter order", func(t *testing.T) {
		expr, err := Compile("a*b+a")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, expr.Variables())
	})

	t.Run("variables inside functions and negation", func(t *testing.T) {
		expr, err := Compile("sqrt(z) - -y + z * x")
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "y", "x"}, expr.Variables())
	})

	t.Run("constants are not variables", func(t *testing.T) {
		expr, err := Compile("2 * pi * r + e")
		require.NoError(t, err)
		assert.Equal(t, []string{"r"}, expr.Variables())
	})

	t.Run("variables slice is a copy", func(t *testing.T) {
		expr, err := Compile("a + b")
		require.NoError(t, err)

		vars := expr.Variables()
		vars[0] = "mutated"
		assert.Equal(t, []string{"a", "b"}, expr.Variables())
	})

	t.Run("source and string", func(t *testing.T) {
		expr, err := Compile("  a - b  ")
		require.NoError(t, err)
		assert.Equal(t, "a - b", expr.Source())
		assert.Equal(t, "(a - b)", expr.String())
		assert.NotNil(t, expr.Root())
	})

	t.Run("evaluate", func(t *testing.T) {
		expr, err := Compile("sqrt(a^2 + b^2)")
		require.NoError(t, err)

		value, err := expr.Evaluate(map[string]float64{"a": 3, "b": 4})
		require.NoError(t, err)
		assert.Equal(t, 5.0, value)
	})

	t.Run("error", func(t *testing.T) {
		expr, err := Compile("a +")
		assert.Nil(t, expr)
		assert.ErrorIs(t, err, ErrUnexpectedEnd)
	})
}

func TestEngine(t *testing.T) {
	t.Run("no expression loaded", func(t *testing.T) {
		engine := NewEngine()
		assert.False(t, engine.Loaded())
		assert.Nil(t, engine.Variables())
		assert.NoError(t, engine.Err())

		_, err := engine.Evaluate(nil)
		assert.ErrorIs(t, err, ErrNoExpression)
	})

	t.Run("parse replaces state", func(t *testing.T) {
		engine := NewEngine()

		require.NoError(t, engine.Parse("a + 1"))
		assert.True(t, engine.Loaded())
		assert.Equal(t, []string{"a"}, engine.Variables())

		value, err := engine.Evaluate(map[string]float64{"a": 1})
		require.NoError(t, err)
		assert.Equal(t, 2.0, value)

		err = engine.Parse("a +* 1")
		require.Error(t, err)
		assert.Equal(t, err, engine.Err())
		assert.False(t, engine.Loaded())
		assert.Nil(t, engine.Expression())
		assert.Nil(t, engine.Variables())

		_, err = engine.Evaluate(map[string]float64{"a": 1})
		assert.ErrorIs(t, err, ErrNoExpression)

		require.NoError(t, engine.Parse("b"))
		assert.NoError(t, engine.Err())
		assert.Equal(t, []string{"b"}, engine.Variables())
	})
}

func TestCheckBindings(t *testing.T) {
	bound := map[string]bool{"a": true, "c": true}
	lookup := func(name string) bool { return bound[name] }

	assert.NoError(t, CheckBindings([]string{"a", "c"}, lookup))
	assert.NoError(t, CheckBindings(nil, lookup))

	err := CheckBindings([]string{"a", "b", "d"}, lookup)
	require.ErrorIs(t, err, ErrUnboundVariable)
	assert.ErrorContains(t, err, "'b'")
}
