package parser

import (
	"fmt"
	"strings"

	"github.com/statforge/wilk/pkg/token"
)

// ParseError represents a parsing error with enough context for a caller
// to render a detailed diagnostic: the expected token kinds, the
// offending token, and the lexemes consumed before the failure.
type ParseError struct {
	Pos      token.Position
	Expected []token.TokenType
	Found    token.Token
	Consumed []string // lexemes successfully consumed before the failure
	Input    string   // the original formula text
	Message  string   // non-empty for violations not tied to a token kind
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: unexpected token %s, expected %s",
		e.Pos.Line, e.Pos.Column, e.Found.Type, e.expectedList())
}

// expectedList renders the expected token kinds as a readable list.
func (e *ParseError) expectedList() string {
	if len(e.Expected) == 0 {
		return "nothing"
	}
	names := make([]string, len(e.Expected))
	for i, t := range e.Expected {
		names[i] = t.String()
	}
	if len(names) == 1 {
		return names[0]
	}
	return "one of " + strings.Join(names, ", ")
}

// Common error messages
const (
	ErrContradictoryIntercept = "contradictory intercept specification: formula both includes and suppresses the intercept"
	ErrDuplicateFamily        = "family specified more than once"
	ErrEmptyRandomEffect      = "random effect term has no effect terms"
)
