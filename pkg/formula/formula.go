// Package formula turns model formulas written in extended Wilkinson
// notation into column-level metadata: which variables a formula
// references, what role each plays, which materialized columns every
// term generates, and how random-effect terms group.
package formula

import (
	"github.com/statforge/wilk/pkg/parser"
	"github.com/statforge/wilk/pkg/token"
)

// Parse lexes, parses, and analyzes a formula in one call. The error is
// a *parser.ParseError for syntax problems and a *BuildError for
// semantic ones.
func Parse(input string) (*MetaData, error) {
	prog, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}
	return Build(input, prog)
}

// LexedToken is one token of a formula in wire form.
type LexedToken struct {
	Token  string `json:"token"`
	Lexeme string `json:"lexeme"`
}

// Lex tokenizes a formula without parsing it. Unrecognized bytes come
// back as UNKNOWN tokens rather than errors.
func Lex(input string) []LexedToken {
	var out []LexedToken
	for _, tok := range parser.Tokenize(input) {
		if tok.Type == token.EOF {
			break
		}
		out = append(out, LexedToken{
			Token:  tok.Type.String(),
			Lexeme: tok.Literal,
		})
	}
	return out
}
