// Package mathexpr parses and evaluates arithmetic expressions over named
// variables.
//
// The language supports:
//   - Operators: + - * / and ^ (right-associative power)
//   - Unary minus
//   - Functions: abs, sqrt, log (natural), exp, sin, cos, tan
//   - Constants: pi, e
//   - Parentheses for grouping
//
// Example:
//
//	expr, err := mathexpr.Compile("sqrt(a^2 + b^2)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	value, err := expr.Evaluate(map[string]float64{"a": 3, "b": 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(value) // 5
package mathexpr

import (
	"fmt"
	"strings"
)

// Expression is a successfully parsed, immutable expression.
type Expression struct {
	source    string
	root      Node
	variables []string
}

// Compile parses an expression string into an executable Expression.
func Compile(input string) (*Expression, error) {
	root, err := Parse(input)
	if err != nil {
		return nil, err
	}

	return &Expression{
		source:    strings.TrimSpace(input),
		root:      root,
		variables: Variables(root),
	}, nil
}

// Source returns the trimmed input the expression was compiled from.
func (e *Expression) Source() string {
	return e.source
}

// Root returns the root node of the expression tree.
func (e *Expression) Root() Node {
	return e.root
}

// Variables returns the free variable names in first-encounter order.
func (e *Expression) Variables() []string {
	out := make([]string, len(e.variables))
	copy(out, e.variables)
	return out
}

// Evaluate computes the expression with the given variable values.
func (e *Expression) Evaluate(vars map[string]float64) (float64, error) {
	return Evaluate(e.root, vars)
}

func (e *Expression) String() string {
	return Format(e.root)
}

// Engine holds the result of the most recent Parse call: either a loaded
// expression or the error that prevented loading one.
// It is not safe for concurrent Parse calls.
type Engine struct {
	expr *Expression
	err  error
}

// NewEngine returns an engine with no expression loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// Parse replaces the engine state with the result of parsing input.
func (e *Engine) Parse(input string) error {
	e.expr, e.err = Compile(input)
	return e.err
}

// Err returns the error of the last Parse call, or nil.
func (e *Engine) Err() error {
	return e.err
}

// Loaded reports whether the last Parse call succeeded.
func (e *Engine) Loaded() bool {
	return e.expr != nil
}

// Expression returns the loaded expression, or nil.
func (e *Engine) Expression() *Expression {
	return e.expr
}

// Variables returns the free variables of the loaded expression.
// It returns nil when nothing is loaded.
func (e *Engine) Variables() []string {
	if e.expr == nil {
		return nil
	}
	return e.expr.Variables()
}

// Evaluate computes the loaded expression.
func (e *Engine) Evaluate(vars map[string]float64) (float64, error) {
	if e.expr == nil {
		return 0, ErrNoExpression
	}
	return e.expr.Evaluate(vars)
}

// CheckBindings returns an error naming the first variable for which bound
// reports false.
func CheckBindings(variables []string, bound func(name string) bool) error {
	for _, name := range variables {
		if !bound(name) {
			return fmt.Errorf("%w: '%s'", ErrUnboundVariable, name)
		}
	}
	return nil
}
