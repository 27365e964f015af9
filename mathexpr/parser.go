package mathexpr

// Parser builds an expression tree from a token list using recursive descent.
//
// Grammar, lowest precedence first:
//
//	expression := term (('+'|'-') term)*
//	term       := power (('*'|'/') power)*
//	power      := unary ('^' power)?
//	unary      := '-' unary | primary
//	primary    := number | variable | function '(' expression ')' | '(' expression ')'
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over tokens produced by Tokenize.
// A missing TokenEnd marker is appended.
func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEnd {
		end := Token{Type: TokenEnd}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			end.Pos = last.Pos + len(last.Literal)
		}
		tokens = append(tokens, end)
	}

	return &Parser{tokens: tokens}
}

// Parse parses the input string into a tree.
func Parse(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	return NewParser(tokens).Parse()
}

// Parse consumes every token and returns the root node.
// No partial tree is returned on failure.
func (p *Parser) Parse() (Node, error) {
	if p.cur().Type == TokenEnd {
		return nil, newSyntaxError(ErrEmptyExpression, p.cur())
	}

	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := p.cur(); tok.Type != TokenEnd {
		return nil, newSyntaxError(ErrTrailingToken, tok)
	}

	return root, nil
}

func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.cur().isOperator("+") || p.cur().isOperator("-") {
		op := OpAdd
		if p.cur().Literal == "-" {
			op = OpSub
		}
		p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	for p.cur().isOperator("*") || p.cur().isOperator("/") {
		op := OpMul
		if p.cur().Literal == "/" {
			op = OpDiv
		}
		p.advance()

		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parsePower recurses into itself for the exponent, so 2^3^2 is 2^(3^2).
func (p *Parser) parsePower() (Node, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	if !p.cur().isOperator("^") {
		return base, nil
	}
	p.advance()

	exponent, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	return &BinaryExpr{Op: OpPow, Left: base, Right: exponent}, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if !p.cur().isOperator("-") {
		return p.parsePrimary()
	}
	p.advance()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &NegateExpr{Operand: operand}, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.cur()

	switch tok.Type {
	case TokenEnd:
		return nil, newSyntaxError(ErrUnexpectedEnd, tok)

	case TokenNumber:
		p.advance()
		return &NumberLiteral{Value: tok.Value}, nil

	case TokenVariable:
		if p.peek().Type == TokenLParen {
			return nil, newSyntaxError(ErrUnknownFunction, tok)
		}
		p.advance()
		return &VariableRef{Name: tok.Literal}, nil

	case TokenFunction:
		return p.parseFunctionCall()

	case TokenLParen:
		p.advance()

		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if err := p.expectRParen(); err != nil {
			return nil, err
		}

		return inner, nil
	}

	return nil, newSyntaxError(ErrUnexpectedToken, tok)
}

func (p *Parser) parseFunctionCall() (Node, error) {
	name := p.cur()

	fn, ok := lookupFunction(name.Literal)
	if !ok {
		return nil, newSyntaxError(ErrUnknownFunction, name)
	}
	p.advance()

	if p.cur().Type != TokenLParen {
		return nil, newSyntaxError(ErrMissingLParen, p.cur())
	}
	p.advance()

	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expectRParen(); err != nil {
		return nil, err
	}

	return &FunctionCall{Func: fn, Argument: arg}, nil
}

func (p *Parser) expectRParen() error {
	if p.cur().Type != TokenRParen {
		return newSyntaxError(ErrMissingRParen, p.cur())
	}
	p.advance()
	return nil
}
