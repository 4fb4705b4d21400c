package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexCommandJSON(t *testing.T) {
	t.Setenv("WILK_OUTPUT", "json")

	out, _, err := execCommand(t, "lex", "y ~ x + (1 || g)")
	require.NoError(t, err)

	var tokens []struct {
		Token  string `json:"token"`
		Lexeme string `json:"lexeme"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tokens))

	lexemes := make([]string, len(tokens))
	for i, tok := range tokens {
		lexemes[i] = tok.Lexeme
	}
	assert.Equal(t, []string{"y", "~", "x", "+", "(", "1", "||", "g", ")"}, lexemes)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Column)
}

func TestLexCommandTable(t *testing.T) {
	t.Setenv("WILK_OUTPUT", "text")

	out, _, err := execCommand(t, "lex", "y ~ x")
	require.NoError(t, err)

	assert.Contains(t, out, "IDENT")
	assert.Contains(t, out, "(3 tokens)")
}

func TestLexCommandUnknownByte(t *testing.T) {
	t.Setenv("WILK_OUTPUT", "json")

	out, _, err := execCommand(t, "lex", "y ~ @")
	require.NoError(t, err)

	assert.Contains(t, out, "UNKNOWN")
}
