package mathexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	t.Run("precedence", func(t *testing.T) {
		root, err := Parse("2+3*4")
		require.NoError(t, err)

		bin, ok := root.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, OpAdd, bin.Op)

		right, ok := bin.Right.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, OpMul, right.Op)
	})

	t.Run("formatting", func(t *testing.T) {
		tests := map[string]string{
			"2^3^2":          "(2 ^ (3 ^ 2))",
			"10-3-2":         "((10 - 3) - 2)",
			"a/b*c":          "((a / b) * c)",
			"-a^2":           "((-a) ^ 2)",
			"--a":            "(-(-a))",
			"sqrt(abs(-9))":  "sqrt(abs((-9)))",
			"(a+b)*c":        "((a + b) * c)",
			"  log( x )  ":   "log(x)",
			"2 * -3":         "(2 * (-3))",
			"a - b ^ -c * d": "(a - ((b ^ (-c)) * d))",
		}

		for input, expected := range tests {
			root, err := Parse(input)
			require.NoError(t, err, input)
			assert.Equal(t, expected, Format(root), input)
		}
	})

	t.Run("function call owns one argument", func(t *testing.T) {
		root, err := Parse("cos(a + 1)")
		require.NoError(t, err)

		call, ok := root.(*FunctionCall)
		require.True(t, ok)
		assert.Equal(t, FuncCos, call.Func)

		_, ok = call.Argument.(*BinaryExpr)
		assert.True(t, ok)
	})
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
		pos   int
	}{
		{"empty", "", ErrEmptyExpression, 0},
		{"whitespace only", "   ", ErrEmptyExpression, 0},
		{"dangling operator", "a +", ErrUnexpectedEnd, 3},
		{"missing lparen", "sqrt 4", ErrMissingLParen, 5},
		{"function without call", "sqrt", ErrMissingLParen, 4},
		{"missing rparen after argument", "sqrt(4", ErrMissingRParen, 6},
		{"missing rparen in group", "(a + b", ErrMissingRParen, 6},
		{"unknown function", "foo(1)", ErrUnknownFunction, 0},
		{"trailing token", "a b", ErrTrailingToken, 2},
		{"trailing rparen", "(a))", ErrTrailingToken, 3},
		{"unexpected operator", "*a", ErrUnexpectedToken, 0},
		{"comma is not consumed", "abs(1, 2)", ErrMissingRParen, 5},
		{"empty group", "()", ErrUnexpectedToken, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root, err := Parse(tc.input)
			assert.Nil(t, root)
			require.ErrorIs(t, err, tc.err)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tc.pos, syntaxErr.Pos)
			assert.NotEmpty(t, err.Error())
		})
	}

	t.Run("tokenize error passes through", func(t *testing.T) {
		_, err := Parse("a # b")

		var tokErr *TokenizeError
		require.ErrorAs(t, err, &tokErr)
		assert.Equal(t, "invalid character at position 2: #", err.Error())
	})

	t.Run("messages are distinct", func(t *testing.T) {
		inputs := []string{"", "a +", "sqrt 4", "sqrt(4", "foo(1)", "a b", "*a"}
		seen := make(map[string]string)

		for _, input := range inputs {
			_, err := Parse(input)
			require.Error(t, err)

			prev, dup := seen[err.Error()]
			assert.False(t, dup, "%q and %q share message %q", input, prev, err.Error())
			seen[err.Error()] = input
		}
	})
}

func TestNewParserAppendsEnd(t *testing.T) {
	p := NewParser([]Token{{Type: TokenNumber, Literal: "1", Value: 1}})

	root, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, &NumberLiteral{Value: 1}, root)
}
