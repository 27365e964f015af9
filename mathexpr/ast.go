package mathexpr

import (
	"strconv"
	"strings"
)

// Node is the base interface for all AST nodes.
// A node exclusively owns its children; trees are never shared.
type Node interface {
	node()
}

// BinaryOp identifies the operator of a BinaryExpr.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpPow: "^",
}

func (op BinaryOp) String() string {
	if symbol, ok := binaryOpSymbols[op]; ok {
		return symbol
	}
	return "?"
}

// Function identifies a built-in single-argument function.
type Function uint8

const (
	FuncAbs Function = iota
	FuncSqrt
	FuncLog
	FuncExp
	FuncSin
	FuncCos
	FuncTan
)

var functionNames = map[Function]string{
	FuncAbs:  "abs",
	FuncSqrt: "sqrt",
	FuncLog:  "log",
	FuncExp:  "exp",
	FuncSin:  "sin",
	FuncCos:  "cos",
	FuncTan:  "tan",
}

var functionsByName = func() map[string]Function {
	out := make(map[string]Function, len(functionNames))
	for fn, name := range functionNames {
		out[name] = fn
	}
	return out
}()

func (f Function) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return "unknown"
}

func lookupFunction(name string) (Function, bool) {
	fn, ok := functionsByName[name]
	return fn, ok
}

// NumberLiteral represents a numeric literal or a named constant.
type NumberLiteral struct {
	Value float64
}

func (n *NumberLiteral) node() {}

// VariableRef represents a reference to a free variable (e.g., rpm1).
type VariableRef struct {
	Name string
}

func (v *VariableRef) node() {}

// BinaryExpr represents a binary arithmetic expression (e.g., a * b).
type BinaryExpr struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (b *BinaryExpr) node() {}

// NegateExpr represents unary minus.
type NegateExpr struct {
	Operand Node
}

func (n *NegateExpr) node() {}

// FunctionCall represents a call of a built-in function with exactly one argument.
type FunctionCall struct {
	Func     Function
	Argument Node
}

func (f *FunctionCall) node() {}

// Format renders the tree fully parenthesised, e.g. "(2 ^ (3 ^ 2))".
func Format(node Node) string {
	var sb strings.Builder
	writeNode(&sb, node)
	return sb.String()
}

func writeNode(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *NumberLiteral:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *VariableRef:
		sb.WriteString(n.Name)
	case *BinaryExpr:
		sb.WriteByte('(')
		writeNode(sb, n.Left)
		sb.WriteString(" " + n.Op.String() + " ")
		writeNode(sb, n.Right)
		sb.WriteByte(')')
	case *NegateExpr:
		sb.WriteString("(-")
		writeNode(sb, n.Operand)
		sb.WriteByte(')')
	case *FunctionCall:
		sb.WriteString(n.Func.String())
		sb.WriteByte('(')
		writeNode(sb, n.Argument)
		sb.WriteByte(')')
	}
}

// Variables returns the distinct variable names referenced by the tree in
// first-encounter order (left to right).
func Variables(node Node) []string {
	seen := make(map[string]struct{})
	var out []string
	collectVariables(node, seen, &out)
	return out
}

func collectVariables(node Node, seen map[string]struct{}, out *[]string) {
	switch n := node.(type) {
	case *VariableRef:
		if _, ok := seen[n.Name]; !ok {
			seen[n.Name] = struct{}{}
			*out = append(*out, n.Name)
		}
	case *BinaryExpr:
		collectVariables(n.Left, seen, out)
		collectVariables(n.Right, seen, out)
	case *NegateExpr:
		collectVariables(n.Operand, seen, out)
	case *FunctionCall:
		collectVariables(n.Argument, seen, out)
	}
}
