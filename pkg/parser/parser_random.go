package parser

import "github.com/statforge/wilk/pkg/token"

// parseRandomEffect parses a parenthesized random-effect term:
//
//	'(' re-terms ('|' | '||' | '|' ID '|') group-expr ')'
//
// The current token is the opening '('.
func (p *Parser) parseRandomEffect() (*RandomEffect, error) {
	pos := p.token.Pos
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if p.check(token.PIPE) || p.check(token.DPIPE) {
		return nil, p.fail(ErrEmptyRandomEffect)
	}

	terms, hasIntercept, err := p.parseRandomEffectTerms()
	if err != nil {
		return nil, err
	}

	corr, corrID, err := p.parseCorrelation()
	if err != nil {
		return nil, err
	}

	group, err := p.parseGroupExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return &RandomEffect{
		Terms:        terms,
		HasIntercept: hasIntercept,
		Corr:         corr,
		CorrID:       corrID,
		Group:        group,
		Pos:          pos,
	}, nil
}

// parseRandomEffectTerms parses the effect terms left of the bar, with
// the same intercept tracking as the outer right-hand side.
func (p *Parser) parseRandomEffectTerms() ([]Term, bool, error) {
	var (
		terms      []Term
		explicit   bool
		suppressed bool
	)

	parseElement := func() error {
		switch {
		case p.check(token.MINUS):
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

// parseCorrelation parses the bar separator: '|' for correlated, '||'
// for uncorrelated, or '|' ID '|' for cross-parameter correlation.
func (p *Parser) parseCorrelation() (CorrelationKind, string, error) {
	if p.match(token.DPIPE) {
		return Uncorrelated, "", nil
	}
	if !p.check(token.PIPE) {
		return Correlated, "", p.unexpected(token.PIPE, token.DPIPE)
	}

	// '|' ID '|' needs both lookahead tokens: the id and the closing bar
	if isCorrID(p.peek.Type) && p.checkPeek2(token.PIPE) {
		p.nextToken() // consume first '|'
		id := p.token.Literal
		p.nextToken() // consume id
		p.nextToken() // consume second '|'
		return CrossParameter, id, nil
	}

	p.nextToken()
	return Correlated, "", nil
}

// isCorrID reports whether a token can serve as the identifier of a
// cross-parameter correlation group.
func isCorrID(t token.TokenType) bool {
	return t == token.NUMBER || t == token.ONE || t == token.ZERO || t == token.IDENT
}

// parseGroupExpr parses the grouping side right of the bar.
func (p *Parser) parseGroupExpr() (GroupExpr, error) {
	switch {
	case p.check(token.GR) && p.checkPeek(token.LPAREN):
		return p.parseGrGroup()
	case p.check(token.MM) && p.checkPeek(token.LPAREN):
		return p.parseMmGroup()
	case p.check(token.IDENT) || isNameLike(p.token.Type):
		name := p.token.Literal
		p.nextToken()
		if p.match(token.COLON) {
			if !p.check(token.IDENT) && !isNameLike(p.token.Type) {
				return nil, p.unexpected(token.IDENT)
			}
			right := p.token.Literal
			p.nextToken()
			return &InteractionGroup{Left: name, Right: right}, nil
		}
		if p.match(token.SLASH) {
			if !p.check(token.IDENT) && !isNameLike(p.token.Type) {
				return nil, p.unexpected(token.IDENT)
			}
			inner := p.token.Literal
			p.nextToken()
			return &NestedGroup{Outer: name, Inner: inner}, nil
		}
		return &SimpleGroup{Name: name}, nil
	default:
		return nil, p.unexpected(token.IDENT, token.GR, token.MM)
	}
}

func (p *Parser) parseGrGroup() (*GrGroup, error) {
	p.nextToken() // consume 'gr'
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if !p.check(token.IDENT) {
		return nil, p.unexpected(token.IDENT)
	}
	g := &GrGroup{Name: p.token.Literal}
	p.nextToken()

	for p.match(token.COMMA) {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		g.Options = append(g.Options, arg)
	}

	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Parser) parseMmGroup() (*MmGroup, error) {
	p.nextToken() // consume 'mm'
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	g := &MmGroup{}
	for {
		if !p.check(token.IDENT) && !isNameLike(p.token.Type) {
			return nil, p.unexpected(token.IDENT)
		}
		g.Groups = append(g.Groups, p.token.Literal)
		p.nextToken()
		if !p.match(token.COMMA) {
			break
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return g, nil
}
