package mathexpr

import "fmt"

// TokenType represents the type of a token in an arithmetic expression.
type TokenType uint8

const (
	TokenEnd TokenType = iota
	TokenNumber
	TokenVariable
	TokenOperator // + - * / ^
	TokenFunction
	TokenLParen
	TokenRParen
	TokenComma // reserved for multi-argument functions
)

var tokenNames = map[TokenType]string{
	TokenEnd:      "END",
	TokenNumber:   "NUMBER",
	TokenVariable: "VARIABLE",
	TokenOperator: "OPERATOR",
	TokenFunction: "FUNCTION",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenComma:    ",",
}

// String returns the string representation of a token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token of an arithmetic expression.
// Value is only meaningful for TokenNumber.
type Token struct {
	Type    TokenType
	Literal string
	Value   float64
	Pos     int
}

func (t Token) String() string {
	if t.Type == TokenEnd {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.Literal)
}

func (t Token) isOperator(op string) bool {
	return t.Type == TokenOperator && t.Literal == op
}
