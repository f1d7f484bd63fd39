package condition

import (
	"fmt"
	"strconv"
)

// Precedence levels for the arithmetic operators
const (
	precNone = iota
	precAdditive
	precMulti
)

// SyntaxError reports a malformed condition.
type SyntaxError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid condition %q at offset %d: %s", e.Source, e.Pos, e.Msg)
}

type parser struct {
	tokens []Token
	pos    int
	source string
	err    *SyntaxError
}

func parse(source string) (Node, error) {
	p := &parser{tokens: newLexer(source).tokenize(), source: source}
	expr := p.parseExpression()
	if p.err == nil && !p.check(EOF) {
		p.errorf("unexpected %s after expression", p.current().Type)
	}
	if p.err != nil {
		return nil, p.err
	}
	return expr, nil
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) check(tt TokenType) bool {
	return p.current().Type == tt
}

func (p *parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(tt TokenType) Token {
	if p.check(tt) {
		return p.advance()
	}
	p.errorf("expected %s, got %s", tt, p.current().Type)
	return p.current()
}

// errorf records the first syntax error and moves to EOF so parsing
// unwinds quickly.
func (p *parser) errorf(format string, args ...any) {
	if p.err == nil {
		p.err = &SyntaxError{Source: p.source, Pos: p.current().Pos, Msg: fmt.Sprintf(format, args...)}
	}
	p.pos = len(p.tokens)
}

// parseExpression parses a conditional expression: a if c else b.
func (p *parser) parseExpression() Node {
	then := p.parseOr()
	if p.check(IF) {
		p.advance()
		test := p.parseOr()
		p.expect(ELSE)
		els := p.parseExpression()
		return &CondExpr{Then: then, Test: test, Else: els}
	}
	return then
}

func (p *parser) parseOr() Node {
	left := p.parseAnd()
	for p.check(OR) {
		p.advance()
		left = &BoolExpr{Op: OR, X: left, Y: p.parseAnd()}
	}
	return left
}

func (p *parser) parseAnd() Node {
	left := p.parseNot()
	for p.check(AND) {
		p.advance()
		left = &BoolExpr{Op: AND, X: left, Y: p.parseNot()}
	}
	return left
}

func (p *parser) parseNot() Node {
	if p.check(NOT) {
		p.advance()
		return &UnaryExpr{Op: NOT, X: p.parseNot()}
	}
	return p.parseComparison()
}

// compareOp returns the comparison operator at the current position,
// consuming it, or ILLEGAL when there is none.
func (p *parser) compareOp() TokenType {
	switch tt := p.current().Type; tt {
	case EQ, NEQ, LT, LEQ, GT, GEQ, IN:
		p.advance()
		return tt
	case NOT:
		if p.peek().Type == IN {
			p.advance()
			p.advance()
			return NOT_IN
		}
	case IS:
		p.advance()
		if p.match(NOT) {
			return IS_NOT
		}
		return IS
	}
	return ILLEGAL
}

func (p *parser) parseComparison() Node {
	first := p.parsePrecedence(precAdditive)
	var ops []TokenType
	var operands []Node
	for {
		op := p.compareOp()
		if op == ILLEGAL {
			break
		}
		ops = append(ops, op)
		operands = append(operands, p.parsePrecedence(precAdditive))
	}
	if len(ops) == 0 {
		return first
	}
	return &CompareExpr{First: first, Ops: ops, Operands: operands}
}

func tokenPrecedence(tt TokenType) int {
	switch tt {
	case PLUS, MINUS:
		return precAdditive
	case STAR, SLASH, DSLASH, PERCENT:
		return precMulti
	default:
		return precNone
	}
}

func (p *parser) parsePrecedence(minPrec int) Node {
	left := p.parseUnary()
	for {
		prec := tokenPrecedence(p.current().Type)
		if prec == precNone || prec < minPrec {
			break
		}
		op := p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &BinaryExpr{Op: op.Type, X: left, Y: right}
	}
	return left
}

func (p *parser) parseUnary() Node {
	if p.check(MINUS) || p.check(PLUS) {
		op := p.advance()
		return &UnaryExpr{Op: op.Type, X: p.parseUnary()}
	}
	return p.parsePower()
}

// parsePower binds ** tighter than a unary minus on its left and
// looser on its right, so -2**2 is -4 and 2**-1 is 0.5.
func (p *parser) parsePower() Node {
	base := p.parsePostfix()
	if p.check(DSTAR) {
		p.advance()
		return &BinaryExpr{Op: DSTAR, X: base, Y: p.parseUnary()}
	}
	return base
}

func (p *parser) parsePostfix() Node {
	expr := p.parsePrimary()
	for {
		switch {
		case p.check(LBRACKET):
			p.advance()
			index := p.parseExpression()
			p.expect(RBRACKET)
			expr = &IndexExpr{X: expr, Index: index}
		case p.check(DOT):
			p.advance()
			name := p.expect(IDENT)
			expr = &AttrExpr{X: expr, Name: name.Literal}
		case p.check(LPAREN):
			p.advance()
			args := p.parseArgList()
			p.expect(RPAREN)
			expr = &CallExpr{Fn: expr, Args: args}
		default:
			return expr
		}
	}
}

func (p *parser) parsePrimary() Node {
	tok := p.current()
	switch tok.Type {
	case INT_LIT:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(tok.Literal, 64)
			if ferr != nil {
				p.errorf("invalid number %q", tok.Literal)
			}
			return &Literal{Value: f}
		}
		return &Literal{Value: n}
	case FLOAT_LIT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("invalid number %q", tok.Literal)
		}
		return &Literal{Value: f}
	case STRING_LIT:
		p.advance()
		s := tok.Literal
		for p.check(STRING_LIT) {
			s += p.advance().Literal
		}
		return &Literal{Value: s}
	case TRUE:
		p.advance()
		return &Literal{Value: true}
	case FALSE:
		p.advance()
		return &Literal{Value: false}
	case NONE:
		p.advance()
		return &Literal{Value: nil}
	case IDENT:
		p.advance()
		return &Ident{Name: tok.Literal, Pos: tok.Pos}
	case LPAREN:
		return p.parseParen()
	case LBRACKET:
		return p.parseList()
	case ILLEGAL:
		p.errorf("illegal token %q", tok.Literal)
	default:
		p.errorf("unexpected %s in expression", tok.Type)
	}
	return &Literal{}
}

// parseParen parses a parenthesized expression, a tuple or a
// generator expression.
func (p *parser) parseParen() Node {
	p.expect(LPAREN)
	if p.match(RPAREN) {
		return &TupleLit{}
	}
	first := p.parseExpression()
	if p.check(FOR) {
		comp := p.parseComprehension(first)
		p.expect(RPAREN)
		return comp
	}
	if !p.check(COMMA) {
		p.expect(RPAREN)
		return first
	}
	elems := []Node{first}
	for p.match(COMMA) {
		if p.check(RPAREN) {
			break
		}
		elems = append(elems, p.parseExpression())
	}
	p.expect(RPAREN)
	return &TupleLit{Elems: elems}
}

func (p *parser) parseList() Node {
	p.expect(LBRACKET)
	if p.match(RBRACKET) {
		return &ListLit{}
	}
	first := p.parseExpression()
	if p.check(FOR) {
		comp := p.parseComprehension(first)
		p.expect(RBRACKET)
		return comp
	}
	elems := []Node{first}
	for p.match(COMMA) {
		if p.check(RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpression())
	}
	p.expect(RBRACKET)
	return &ListLit{Elems: elems}
}

func (p *parser) parseComprehension(elem Node) *Comprehension {
	p.expect(FOR)
	comp := &Comprehension{Elem: elem}
	comp.Targets = append(comp.Targets, p.expect(IDENT).Literal)
	for p.match(COMMA) {
		comp.Targets = append(comp.Targets, p.expect(IDENT).Literal)
	}
	p.expect(IN)
	comp.Iter = p.parseOr()
	for p.match(IF) {
		comp.Conds = append(comp.Conds, p.parseOr())
	}
	return comp
}

func (p *parser) parseArgList() []Node {
	var args []Node
	if p.check(RPAREN) {
		return args
	}
	first := p.parseExpression()
	if p.check(FOR) {
		return []Node{p.parseComprehension(first)}
	}
	args = append(args, first)
	for p.match(COMMA) {
		if p.check(RPAREN) {
			break
		}
		args = append(args, p.parseExpression())
	}
	return args
}
