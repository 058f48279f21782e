package exprlang

import (
	"fmt"

	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

// Parser is a recursive-descent parser over a pre-lexed Token stream,
// implementing the precedence ladder from spec section 4.1: or, and,
// equality, comparison, additive, multiplicative, unary, call/primary.
type Parser struct {
	tokens []Token
	pos    int
}

// ParseExpression lexes and parses src, requiring the token stream to be
// fully consumed afterwards.
func ParseExpression(src string) (*Expr, error) {
	tokens, err := NewLexer(src).Lex()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEOF); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseExpr() (*Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (*Expr, error) {
	expr, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchKind(TokOrOr) {
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		expr = &Expr{Kind: ExprBinary, BinaryOp: OpOr, Left: expr, Right: rhs}
	}
	return expr, nil
}

func (p *Parser) parseAnd() (*Expr, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.matchKind(TokAndAnd) {
		rhs, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &Expr{Kind: ExprBinary, BinaryOp: OpAnd, Left: expr, Right: rhs}
	}
	return expr, nil
}

func (p *Parser) parseEquality() (*Expr, error) {
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.matchKind(TokEqEq):
			op = OpEq
		case p.matchKind(TokNotEq):
			op = OpNotEq
		default:
			return expr, nil
		}
		rhs, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		expr = &Expr{Kind: ExprBinary, BinaryOp: op, Left: expr, Right: rhs}
	}
}

func (p *Parser) parseComparison() (*Expr, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.matchKind(TokLt):
			op = OpLt
		case p.matchKind(TokLte):
			op = OpLte
		case p.matchKind(TokGt):
			op = OpGt
		case p.matchKind(TokGte):
			op = OpGte
		default:
			return expr, nil
		}
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &Expr{Kind: ExprBinary, BinaryOp: op, Left: expr, Right: rhs}
	}
}

func (p *Parser) parseTerm() (*Expr, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.matchKind(TokPlus):
			op = OpAdd
		case p.matchKind(TokMinus):
			op = OpSub
		default:
			return expr, nil
		}
		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = &Expr{Kind: ExprBinary, BinaryOp: op, Left: expr, Right: rhs}
	}
}

func (p *Parser) parseFactor() (*Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.matchKind(TokStar):
			op = OpMul
		case p.matchKind(TokSlash):
			op = OpDiv
		default:
			return expr, nil
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &Expr{Kind: ExprBinary, BinaryOp: op, Left: expr, Right: rhs}
	}
}

func (p *Parser) parseUnary() (*Expr, error) {
	if p.matchKind(TokBang) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprUnary, UnaryOp: OpNot, Operand: inner}, nil
	}
	if p.matchKind(TokMinus) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprUnary, UnaryOp: OpNegate, Operand: inner}, nil
	}
	return p.parseCall()
}

func (p *Parser) parseCall() (*Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.matchKind(TokLParen) {
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		if expr.Kind != ExprVar || len(expr.Path) != 1 {
			return nil, newUnexpectedToken("call expression must start with a single identifier")
		}
		expr = &Expr{Kind: ExprCall, Callee: expr.Path[0], Args: args}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (*Expr, error) {
	if p.matchKind(TokLParen) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	}

	tok := p.peek()
	switch tok.Kind {
	case TokNumber:
		p.advance()
		return &Expr{Kind: ExprLiteral, Literal: jsonvalue.NewNumber(tok.Number)}, nil
	case TokString:
		p.advance()
		return &Expr{Kind: ExprLiteral, Literal: jsonvalue.NewString(tok.Lexeme)}, nil
	case TokTrue:
		p.advance()
		return &Expr{Kind: ExprLiteral, Literal: jsonvalue.NewBoolean(true)}, nil
	case TokFalse:
		p.advance()
		return &Expr{Kind: ExprLiteral, Literal: jsonvalue.NewBoolean(false)}, nil
	case TokNull:
		p.advance()
		return &Expr{Kind: ExprLiteral, Literal: jsonvalue.NewNull()}, nil
	case TokIdentifier:
		return p.parseVariable()
	case TokEOF:
		return nil, newUnexpectedEOF()
	default:
		return nil, newUnexpectedToken(fmt.Sprintf("%v", tok.Lexeme))
	}
}

func (p *Parser) parseVariable() (*Expr, error) {
	ident := p.advance()
	path := []string{ident.Lexeme}
	for p.matchKind(TokDot) {
		next, err := p.expect(TokIdentifier)
		if err != nil {
			return nil, err
		}
		path = append(path, next.Lexeme)
	}
	return &Expr{Kind: ExprVar, Path: path}, nil
}

func (p *Parser) parseArguments() ([]*Expr, error) {
	var args []*Expr
	if p.matchKind(TokRParen) {
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.matchKind(TokComma) {
			continue
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	tok := p.advance()
	if tok.Kind != kind {
		return Token{}, newUnexpectedToken(tok.Lexeme)
	}
	return tok, nil
}

func (p *Parser) matchKind(kind TokenKind) bool {
	if p.peek().Kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *Parser) peek() Token { return p.tokens[p.pos] }
