// Package token defines the token types for Wilkinson formula parsing.
//
// The token set is closed: structural operators, literals, and a fixed
// inventory of function and keyword names recognized by the lexer so the
// parser never needs to backtrack.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	UNKNOWN

	// Literals
	IDENT  // column name
	NUMBER // 2, 4.5, 1e3
	STRING // "control"
	ONE    // bare 1, intercept inclusion
	ZERO   // bare 0, intercept suppression

	// Operators
	TILDE  // ~
	PLUS   // +
	MINUS  // -
	STAR   // *
	COLON  // :
	SLASH  // /
	PIPE   // |
	DPIPE  // ||
	CARET  // ^
	EQ     // =
	COMMA  // ,
	LPAREN // (
	RPAREN // )

	// Transformation functions
	POLY
	LOG
	MO
	SCALE
	CENTER
	STANDARDIZE
	OFFSET
	FACTOR
	CATEGORY
	BS
	GP
	ME
	MI
	CS
	MMC
	FORWARDFILL
	BACKWARDFILL
	DIFF
	LAG
	LEAD
	TRUNC
	WEIGHTS
	TRIALS
	CENS

	// Grouping functions
	GR
	MM

	// Multivariate response
	MVBIND

	// Family
	FAMILY
	GAUSSIAN
	BINOMIAL
	POISSON

	// Grouping-argument keywords
	COR
	ID
	BY
	COV
	DIST

	// Literals used in function arguments
	TRUE
	FALSE
	NULL
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	UNKNOWN: "UNKNOWN",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	ONE:    "ONE",
	ZERO:   "ZERO",

	TILDE:  "~",
	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	COLON:  ":",
	SLASH:  "/",
	PIPE:   "|",
	DPIPE:  "||",
	CARET:  "^",
	EQ:     "=",
	COMMA:  ",",
	LPAREN: "(",
	RPAREN: ")",

	POLY:         "POLY",
	LOG:          "LOG",
	MO:           "MO",
	SCALE:        "SCALE",
	CENTER:       "CENTER",
	STANDARDIZE:  "STANDARDIZE",
	OFFSET:       "OFFSET",
	FACTOR:       "FACTOR",
	CATEGORY:     "C",
	BS:           "BS",
	GP:           "GP",
	ME:           "ME",
	MI:           "MI",
	CS:           "CS",
	MMC:          "MMC",
	FORWARDFILL:  "FORWARD_FILL",
	BACKWARDFILL: "BACKWARD_FILL",
	DIFF:         "DIFF",
	LAG:          "LAG",
	LEAD:         "LEAD",
	TRUNC:        "TRUNC",
	WEIGHTS:      "WEIGHTS",
	TRIALS:       "TRIALS",
	CENS:         "CENS",

	GR: "GR",
	MM: "MM",

	MVBIND: "MVBIND",

	FAMILY:   "FAMILY",
	GAUSSIAN: "GAUSSIAN",
	BINOMIAL: "BINOMIAL",
	POISSON:  "POISSON",

	COR:  "COR",
	ID:   "ID",
	BY:   "BY",
	COV:  "COV",
	DIST: "DIST",

	TRUE:  "TRUE",
	FALSE: "FALSE",
	NULL:  "NULL",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"poly":          POLY,
	"log":           LOG,
	"mo":            MO,
	"scale":         SCALE,
	"center":        CENTER,
	"standardize":   STANDARDIZE,
	"offset":        OFFSET,
	"factor":        FACTOR,
	"c":             CATEGORY,
	"bs":            BS,
	"gp":            GP,
	"me":            ME,
	"mi":            MI,
	"cs":            CS,
	"mmc":           MMC,
	"forward_fill":  FORWARDFILL,
	"backward_fill": BACKWARDFILL,
	"diff":          DIFF,
	"lag":           LAG,
	"lead":          LEAD,
	"trunc":         TRUNC,
	"weights":       WEIGHTS,
	"trials":        TRIALS,
	"cens":          CENS,

	"gr": GR,
	"mm": MM,

	"mvbind": MVBIND,
	"bind":   MVBIND,

	"family":   FAMILY,
	"gaussian": GAUSSIAN,
	"binomial": BINOMIAL,
	"poisson":  POISSON,

	"cor":  COR,
	"id":   ID,
	"by":   BY,
	"cov":  COV,
	"dist": DIST,

	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a recognized keyword, the keyword token type is
// returned. Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsTransformation returns true if the token type names a transformation
// function that can wrap a variable on the right-hand side.
func IsTransformation(t TokenType) bool {
	return t >= POLY && t <= CENS
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= TILDE && t <= RPAREN
}

// IsFamilyName returns true if the token type names a known model family.
func IsFamilyName(t TokenType) bool {
	return t == GAUSSIAN || t == BINOMIAL || t == POISSON
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
