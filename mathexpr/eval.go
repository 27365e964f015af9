package mathexpr

import (
	"fmt"
	"math"
)

// Evaluate walks the tree with the supplied variable values.
// A failure anywhere in the tree aborts the whole evaluation.
// IEEE-754 results such as NaN from pow are returned as values.
func Evaluate(node Node, vars map[string]float64) (float64, error) {
	switch n := node.(type) {
	case *NumberLiteral:
		return n.Value, nil
	case *VariableRef:
		value, ok := vars[n.Name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Name)
		}
		return value, nil
	case *BinaryExpr:
		return evaluateBinary(n, vars)
	case *NegateExpr:
		value, err := Evaluate(n.Operand, vars)
		if err != nil {
			return 0, err
		}
		return -value, nil
	case *FunctionCall:
		return evaluateFunction(n, vars)
	}

	return 0, ErrNoExpression
}

func evaluateBinary(n *BinaryExpr, vars map[string]float64) (float64, error) {
	left, err := Evaluate(n.Left, vars)
	if err != nil {
		return 0, err
	}

	right, err := Evaluate(n.Right, vars)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	case OpPow:
		return math.Pow(left, right), nil
	}

	return 0, fmt.Errorf("%w: unknown operator %d", ErrEvaluation, n.Op)
}

func evaluateFunction(n *FunctionCall, vars map[string]float64) (float64, error) {
	arg, err := Evaluate(n.Argument, vars)
	if err != nil {
		return 0, err
	}

	switch n.Func {
	case FuncAbs:
		return math.Abs(arg), nil
	case FuncSqrt:
		if arg < 0 {
			return 0, ErrNegativeSqrt
		}
		return math.Sqrt(arg), nil
	case FuncLog:
		if arg <= 0 {
			return 0, ErrNonPositiveLog
		}
		return math.Log(arg), nil
	case FuncExp:
		return math.Exp(arg), nil
	case FuncSin:
		return math.Sin(arg), nil
	case FuncCos:
		return math.Cos(arg), nil
	case FuncTan:
		return math.Tan(arg), nil
	}

	return 0, fmt.Errorf("%w: unknown function %d", ErrEvaluation, n.Func)
}
