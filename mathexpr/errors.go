package mathexpr

import (
	"errors"
	"fmt"
)

// Syntax errors. Each is wrapped in a *SyntaxError carrying the position.
var (
	ErrEmptyExpression = errors.New("empty expression")
	ErrUnexpectedEnd   = errors.New("unexpected end of expression")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrMissingLParen   = errors.New("expected '(' after function name")
	ErrMissingRParen   = errors.New("expected ')'")
	ErrUnknownFunction = errors.New("unknown function")
	ErrTrailingToken   = errors.New("unexpected trailing token")
)

// Evaluation errors. They are per-point failures and all wrap ErrEvaluation.
var (
	ErrEvaluation        = errors.New("evaluation failed")
	ErrUndefinedVariable = fmt.Errorf("%w: undefined variable", ErrEvaluation)
	ErrDivisionByZero    = fmt.Errorf("%w: division by zero", ErrEvaluation)
	ErrNegativeSqrt      = fmt.Errorf("%w: square root of negative number", ErrEvaluation)
	ErrNonPositiveLog    = fmt.Errorf("%w: logarithm of non-positive number", ErrEvaluation)
	ErrNoExpression      = fmt.Errorf("%w: no expression loaded", ErrEvaluation)
)

// ErrUnboundVariable is returned by CheckBindings.
var ErrUnboundVariable = errors.New("variable not bound")

// SyntaxError describes a parse failure at a byte offset of the trimmed input.
type SyntaxError struct {
	Pos   int
	Token Token
	Err   error
}

func (e *SyntaxError) Error() string {
	switch {
	case errors.Is(e.Err, ErrEmptyExpression), errors.Is(e.Err, ErrUnexpectedEnd):
		return e.Err.Error()
	case errors.Is(e.Err, ErrUnknownFunction):
		return fmt.Sprintf("%s at position %d: %s", e.Err, e.Pos, e.Token.Literal)
	case errors.Is(e.Err, ErrMissingLParen), errors.Is(e.Err, ErrMissingRParen):
		return fmt.Sprintf("%s at position %d, got %s", e.Err, e.Pos, e.Token)
	}
	return fmt.Sprintf("%s at position %d: %s", e.Err, e.Pos, e.Token)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func newSyntaxError(err error, tok Token) *SyntaxError {
	return &SyntaxError{Pos: tok.Pos, Token: tok, Err: err}
}
