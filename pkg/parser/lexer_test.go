package parser_test

import (
	"strings"
	"testing"

	"github.com/statforge/wilk/pkg/parser"
	"github.com/statforge/wilk/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(toks []token.Token) []token.TokenType {
	types := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeSimpleFormula(t *testing.T) {
	toks := parser.Tokenize("y ~ x + z")
	assert.Equal(t, []token.TokenType{
		token.IDENT, token.TILDE, token.IDENT, token.PLUS, token.IDENT, token.EOF,
	}, tokenTypes(toks))
	assert.Equal(t, "y", toks[0].Literal)
	assert.Equal(t, "z", toks[4].Literal)
}

func TestTokenizeInterceptLiterals(t *testing.T) {
	toks := parser.Tokenize("y ~ 0 + x - 1")
	assert.Equal(t, []token.TokenType{
		token.IDENT, token.TILDE, token.ZERO, token.PLUS, token.IDENT,
		token.MINUS, token.ONE, token.EOF,
	}, tokenTypes(toks))
}

func TestTokenizeMultiDigitNumberIsNotIntercept(t *testing.T) {
	toks := parser.Tokenize("poly(disp, 10)")
	require.Len(t, toks, 7)
	assert.Equal(t, token.POLY, toks[0].Type)
	assert.Equal(t, token.NUMBER, toks[4].Type)
	assert.Equal(t, "10", toks[4].Literal)
}

func TestTokenizeDoublePipeLongestMatch(t *testing.T) {
	toks := parser.Tokenize("(x || g)")
	assert.Equal(t, []token.TokenType{
		token.LPAREN, token.IDENT, token.DPIPE, token.IDENT, token.RPAREN, token.EOF,
	}, tokenTypes(toks))

	toks = parser.Tokenize("(x | g)")
	assert.Equal(t, token.PIPE, toks[2].Type)
}

func TestTokenizeKeywords(t *testing.T) {
	toks := parser.Tokenize("gr(patient, cor = FALSE)")
	assert.Equal(t, []token.TokenType{
		token.GR, token.LPAREN, token.IDENT, token.COMMA,
		token.COR, token.EQ, token.FALSE, token.RPAREN, token.EOF,
	}, tokenTypes(toks))
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks := parser.Tokenize(`c(trt, ref = "control")`)
	require.Equal(t, token.STRING, toks[6].Type)
	assert.Equal(t, "control", toks[6].Literal)
}

func TestTokenizeUnknownDoesNotAbort(t *testing.T) {
	toks := parser.Tokenize("y ~ x @ z")
	assert.Equal(t, []token.TokenType{
		token.IDENT, token.TILDE, token.IDENT, token.UNKNOWN, token.IDENT, token.EOF,
	}, tokenTypes(toks))
	assert.Equal(t, "@", toks[3].Literal)
}

func TestTokenizePositions(t *testing.T) {
	toks := parser.Tokenize("y ~ x")
	assert.Equal(t, 0, toks[0].Pos.Offset)
	assert.Equal(t, 2, toks[1].Pos.Offset)
	assert.Equal(t, 4, toks[2].Pos.Offset)
	assert.Equal(t, 1, toks[0].Pos.Line)
}

// Re-lexing the joined lexemes of a clean stream reproduces the same
// token sequence.
func TestTokenizeRoundTrip(t *testing.T) {
	inputs := []string{
		"y ~ x + z",
		"y ~ wt * hp + (1 | cyl)",
		"y ~ poly(disp, 4) + log(hp)",
		"mvbind(y1, y2) ~ x, family = poisson",
	}
	for _, input := range inputs {
		first := parser.Tokenize(input)

		var lexemes []string
		for _, tok := range first {
			if tok.Type != token.EOF {
				lexemes = append(lexemes, tok.Literal)
			}
		}
		second := parser.Tokenize(strings.Join(lexemes, " "))

		require.Equal(t, len(first), len(second), "input %q", input)
		for i := range first {
			assert.Equal(t, first[i].Type, second[i].Type, "input %q token %d", input, i)
		}
	}
}
