package parser

import (
	"strconv"
	"strings"

	"github.com/statforge/wilk/pkg/token"
)

// parseInteractionChain parses a primary term optionally chained with
// '*' and ':' operators. All operands fold into one Interaction node so
// the enclosing '+'-separated scan never re-consumes a chain token.
func (p *Parser) parseInteractionChain() (Term, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	operands := []Term{first}
	var ops []InteractionOp

	for p.check(token.STAR) || p.check(token.COLON) {
		op := OpCross
		if p.check(token.COLON) {
			op = OpInteract
		}
		p.nextToken()

		next, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
		ops = append(ops, op)
	}

	if len(ops) == 0 {
		return first, nil
	}
	return &Interaction{Operands: operands, Ops: ops}, nil
}

// parsePrimary parses a column name or function call. A keyword token
// not followed by '(' is an ordinary column name: someone may well have
// a column called "log" or "id".
func (p *Parser) parsePrimary() (Term, error) {
	if p.isFunctionStart() {
		return p.parseFunctionCall()
	}
	if p.check(token.IDENT) || isNameLike(p.token.Type) {
		col := &ColumnName{Name: p.token.Literal, Pos: p.token.Pos}
		p.nextToken()
		return col, nil
	}
	return nil, p.unexpected(token.IDENT, token.ONE, token.ZERO, token.LPAREN)
}

// isFunctionStart reports whether the current token opens a function
// call: a recognized function keyword directly followed by '('.
func (p *Parser) isFunctionStart() bool {
	if !p.checkPeek(token.LPAREN) {
		return false
	}
	t := p.token.Type
	return token.IsTransformation(t) || t == token.GR || t == token.MM || t == token.MVBIND
}

// isNameLike reports whether a keyword token may serve as a bare column
// name when it is not opening a function call.
func isNameLike(t token.TokenType) bool {
	return token.IsTransformation(t) ||
		t == token.GR || t == token.MM || t == token.MVBIND ||
		t == token.COR || t == token.ID || t == token.BY || t == token.COV || t == token.DIST ||
		token.IsFamilyName(t)
}

func (p *Parser) parseFunctionCall() (*FunctionCall, error) {
	call := &FunctionCall{
		Name: strings.ToLower(p.token.Literal),
		Pos:  p.token.Pos,
	}
	p.nextToken()
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	if !p.check(token.RPAREN) {
		for {
			arg, err := p.parseArg()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

// parseArg parses one function argument: positional, or key = value.
func (p *Parser) parseArg() (Arg, error) {
	if p.isKeywordArg() {
		key := strings.ToLower(p.token.Literal)
		p.nextToken()
		p.nextToken() // consume '='
		value, err := p.parseArgValue()
		if err != nil {
			return Arg{}, err
		}
		return Arg{Key: key, Value: value}, nil
	}

	value, err := p.parseArgValue()
	if err != nil {
		return Arg{}, err
	}
	return Arg{Value: value}, nil
}

// isKeywordArg reports whether the current token starts a key = value
// pair.
func (p *Parser) isKeywordArg() bool {
	if !p.checkPeek(token.EQ) {
		return false
	}
	return p.check(token.IDENT) || isNameLike(p.token.Type)
}

func (p *Parser) parseArgValue() (ArgValue, error) {
	switch {
	case p.check(token.NUMBER), p.check(token.ONE), p.check(token.ZERO):
		raw := p.token.Literal
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, p.fail("invalid number literal " + strconv.Quote(raw))
		}
		p.nextToken()
		return &NumberArg{Raw: raw, Value: val}, nil

	case p.check(token.STRING):
		v := p.token.Literal
		p.nextToken()
		return &StringArg{Value: v}, nil

	case p.check(token.TRUE), p.check(token.FALSE):
		v := p.check(token.TRUE)
		p.nextToken()
		return &BoolArg{Value: v}, nil

	case p.check(token.NULL):
		p.nextToken()
		return &NullArg{}, nil

	case p.isFunctionStart():
		call, err := p.parseFunctionCall()
		if err != nil {
			return nil, err
		}
		return &CallArg{Call: call}, nil

	case p.check(token.IDENT) || isNameLike(p.token.Type):
		name := p.token.Literal
		p.nextToken()
		return &IdentArg{Name: name}, nil

	default:
		return nil, p.unexpected(token.IDENT, token.NUMBER, token.STRING, token.TRUE, token.FALSE, token.NULL)
	}
}
