// Package parser provides lexing and recursive-descent parsing of
// Wilkinson-notation model formulas.
//
// # Usage
//
//	prog, err := parser.Parse("y ~ x + (1 | group)")
//	if err != nil {
//	    // handle error
//	}
//
// # Grammar Overview
//
//	program       → formula (',' entry)* EOF
//	entry         → 'family' '=' family-name
//	              | IDENT '~' rhs
//	              | IDENT '=' value
//	formula       → response '~' rhs
//	response      → IDENT | 'mvbind' '(' IDENT (',' IDENT)* ')'
//	rhs           → element (('+' element) | ('-' '1'))*
//	element       → '1' | '0' | random-effect | interaction
//	interaction   → primary (('*' | ':') primary)*
//	primary       → IDENT | function '(' args ')'
//	random-effect → '(' re-terms ('|' | '||' | '|' ID '|') group ')'
//
// Intercept contradictions (a formula that both includes and suppresses
// the intercept, e.g. "y ~ 1 - 1" or "y ~ 0 + 1") are rejected during
// parsing, not deferred to the semantic pass.
package parser

import (
	"slices"
	"strings"

	"github.com/statforge/wilk/pkg/token"
)

// Parser parses a formula into a Program.
type Parser struct {
	lexer *Lexer
	input string

	token token.Token // current token
	peek  token.Token // lookahead token
	peek2 token.Token // second lookahead token

	consumed []string // lexemes consumed so far, for error context
}

// NewParser creates a new parser for the given formula input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		input: input,
	}
	// Prime current, peek, and peek2 without touching the consumed list
	p.token = p.lexer.NextToken()
	p.peek = p.lexer.NextToken()
	p.peek2 = p.lexer.NextToken()
	return p
}

// Parse parses the formula and returns the Program.
func Parse(input string) (*Program, error) {
	p := NewParser(input)
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token, recording the consumed lexeme.
func (p *Parser) nextToken() {
	if p.token.Type != token.EOF {
		p.consumed = append(p.consumed, p.token.Literal)
	}
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t token.TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise returns a
// ParseError naming the expected kind.
func (p *Parser) expect(t token.TokenType) error {
	if p.check(t) {
		p.nextToken()
		return nil
	}
	return p.unexpected(t)
}

// unexpected builds a ParseError for the current token.
func (p *Parser) unexpected(expected ...token.TokenType) *ParseError {
	return &ParseError{
		Pos:      p.token.Pos,
		Expected: expected,
		Found:    p.token,
		Consumed: slices.Clone(p.consumed),
		Input:    p.input,
	}
}

// fail builds a ParseError with an explicit message at the current token.
func (p *Parser) fail(msg string) *ParseError {
	return &ParseError{
		Pos:      p.token.Pos,
		Found:    p.token,
		Consumed: slices.Clone(p.consumed),
		Input:    p.input,
		Message:  msg,
	}
}

// ---------- Program ----------

func (p *Parser) parseProgram() (*Program, error) {
	formula, err := p.parseFormula()
	if err != nil {
		return nil, err
	}

	prog := &Program{Formula: formula}

	for p.match(token.COMMA) {
		if err := p.parseEntry(prog); err != nil {
			return nil, err
		}
	}

	if err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	return prog, nil
}

// parseEntry parses one comma-separated trailing entry: a family
// assignment or an auxiliary parameter sub-formula like sigma ~ x.
func (p *Parser) parseEntry(prog *Program) error {
	switch {
	case p.check(token.FAMILY):
		p.nextToken()
		if err := p.expect(token.EQ); err != nil {
			return err
		}
		if !token.IsFamilyName(p.token.Type) && !p.check(token.IDENT) {
			return p.unexpected(token.GAUSSIAN, token.BINOMIAL, token.POISSON, token.IDENT)
		}
		if prog.Family != "" {
			return p.fail(ErrDuplicateFamily)
		}
		prog.Family = strings.ToLower(p.token.Literal)
		p.nextToken()
		return nil

	case p.check(token.IDENT) && p.checkPeek(token.TILDE):
		name := p.token.Literal
		p.nextToken()
		p.nextToken() // consume '~'
		terms, hasIntercept, err := p.parseRHS()
		if err != nil {
			return err
		}
		prog.Aux = append(prog.Aux, &AuxFormula{
			Name:         name,
			Terms:        terms,
			HasIntercept: hasIntercept,
		})
		return nil

	case p.check(token.IDENT) && p.checkPeek(token.EQ):
		name := strings.ToLower(p.token.Literal)
		p.nextToken()
		p.nextToken() // consume '='
		value, err := p.parseArgValue()
		if err != nil {
			return err
		}
		if prog.Options == nil {
			prog.Options = make(map[string]string)
		}
		prog.Options[name] = argLiteral(value)
		return nil

	default:
		return p.unexpected(token.FAMILY, token.IDENT)
	}
}

// argLiteral renders an argument value back to its source literal.
func argLiteral(v ArgValue) string {
	switch a := v.(type) {
	case *IdentArg:
		return a.Name
	case *NumberArg:
		return a.Raw
	case *StringArg:
		return a.Value
	case *BoolArg:
		if a.Value {
			return "true"
		}
		return "false"
	case *NullArg:
		return "null"
	case *CallArg:
		return a.Call.Name
	default:
		return ""
	}
}

// ---------- Formula ----------

func (p *Parser) parseFormula() (*Formula, error) {
	resp, err := p.parseResponse()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.TILDE); err != nil {
		return nil, err
	}
	terms, hasIntercept, err := p.parseRHS()
	if err != nil {
		return nil, err
	}
	return &Formula{
		Response:     resp,
		Terms:        terms,
		HasIntercept: hasIntercept,
	}, nil
}

func (p *Parser) parseResponse() (*Response, error) {
	pos := p.token.Pos

	if p.check(token.MVBIND) {
		p.nextToken()
		if err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		var names []string
		for {
			if !p.check(token.IDENT) {
				return nil, p.unexpected(token.IDENT)
			}
			names = append(names, p.token.Literal)
			p.nextToken()
			if !p.match(token.COMMA) {
				break
			}
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &Response{Names: names, Pos: pos}, nil
	}

	if !p.check(token.IDENT) {
		return nil, p.unexpected(token.IDENT, token.MVBIND)
	}
	name := p.token.Literal
	p.nextToken()
	return &Response{Names: []string{name}, Pos: pos}, nil
}

// parseRHS parses a '+'-separated term list with intercept tracking.
// Each iteration owns exactly the tokens of one element; interaction
// chains consume their full operand run before control returns here, so
// no token is bound twice.
func (p *Parser) parseRHS() ([]Term, bool, error) {
	var (
		terms      []Term
		explicit   bool // bare 1 seen
		suppressed bool // 0 or -1 seen
	)

	parseElement := func() error {
		switch {
		case p.check(token.MINUS):
			// Leading '-1' suppresses the intercept
			p.nextToken()
			if !p.check(token.ONE) {
				return p.unexpected(token.ONE)
			}
			if explicit {
				return p.fail(ErrContradictoryIntercept)
			}
			suppressed = true
			p.nextToken()
		case p.check(token.ONE):
			if suppressed {
				return p.fail(ErrContradictoryIntercept)
			}
			explicit = true
			p.nextToken()
		case p.check(token.ZERO):
			if explicit {
				return p.fail(ErrContradictoryIntercept)
			}
			suppressed = true
			p.nextToken()
		case p.check(token.LPAREN):
			re, err := p.parseRandomEffect()
			if err != nil {
				return err
			}
			terms = append(terms, re)
		default:
			term, err := p.parseInteractionChain()
			if err != nil {
				return err
			}
			terms = append(terms, term)
		}
		return nil
	}

	if err := parseElement(); err != nil {
		return nil, false, err
	}

	for {
		if p.match(token.MINUS) {
			// Only '- 1' is meaningful: intercept removal
			if !p.check(token.ONE) {
				return nil, false, p.unexpected(token.ONE)
			}
			if explicit {
				return nil, false, p.fail(ErrContradictoryIntercept)
			}
			suppressed = true
			p.nextToken()
			continue
		}
		if p.match(token.PLUS) {
			if err := parseElement(); err != nil {
				return nil, false, err
			}
			continue
		}
		break
	}

	return terms, !suppressed, nil
}
