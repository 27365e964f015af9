package mathexpr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// constants maps identifier names to the number tokens they produce.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// TokenizeError is returned when the input contains a character that does
// not start any token, or that breaks a numeric literal. Pos is a byte offset.
type TokenizeError struct {
	Pos  int
	Char rune
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("invalid character at position %d: %c", e.Pos, e.Char)
}

// Lexer splits an expression string into tokens.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input string.
// Surrounding whitespace is trimmed before scanning.
func NewLexer(input string) *Lexer {
	return &Lexer{input: strings.TrimSpace(input)}
}

// Tokenize scans the whole input and returns its tokens followed by a
// TokenEnd marker.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokens()
}

// Tokens scans the remaining input. On failure no tokens are returned.
func (l *Lexer) Tokens() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Type == TokenEnd {
			return tokens, nil
		}
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEnd, Pos: l.pos}, nil
	}

	ch := l.input[l.pos]

	switch {
	case isDigit(ch) || ch == '.':
		return l.readNumber()
	case isLetter(ch):
		return l.readIdentifier(), nil
	}

	start := l.pos
	l.pos++

	switch ch {
	case '+', '-', '*', '/', '^':
		return Token{Type: TokenOperator, Literal: string(ch), Pos: start}, nil
	case '(':
		return Token{Type: TokenLParen, Literal: "(", Pos: start}, nil
	case ')':
		return Token{Type: TokenRParen, Literal: ")", Pos: start}, nil
	case ',':
		return Token{Type: TokenComma, Literal: ",", Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[start:])
	return Token{}, &TokenizeError{Pos: start, Char: r}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			l.pos++
		default:
			return
		}
	}
}

// readNumber consumes a run of digits and dots. A second dot is reported
// at its own offset; a lone "." is reported at the start of the run.
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}

	literal := l.input[start:l.pos]

	if first := strings.IndexByte(literal, '.'); first >= 0 {
		if second := strings.IndexByte(literal[first+1:], '.'); second >= 0 {
			return Token{}, &TokenizeError{Pos: start + first + 1 + second, Char: '.'}
		}
	}

	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return Token{}, &TokenizeError{Pos: start, Char: rune(l.input[start])}
	}

	return Token{Type: TokenNumber, Literal: literal, Value: value, Pos: start}, nil
}

func (l *Lexer) readIdentifier() Token {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}

	literal := l.input[start:l.pos]

	if _, ok := lookupFunction(literal); ok {
		return Token{Type: TokenFunction, Literal: literal, Pos: start}
	}

	if value, ok := constants[literal]; ok {
		return Token{Type: TokenNumber, Literal: literal, Value: value, Pos: start}
	}

	return Token{Type: TokenVariable, Literal: literal, Pos: start}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
