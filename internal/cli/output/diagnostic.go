package output

import (
	"fmt"
	"strings"

	"github.com/statforge/wilk/pkg/parser"
	"github.com/statforge/wilk/pkg/token"
)

// ParseDiagnostic renders a parse error with source context: the input
// line, a caret under the offending position, and the expected token
// set. In text mode the consumed prefix is dimmed and the offending
// lexeme highlighted.
func (r *Renderer) ParseDiagnostic(perr *parser.ParseError) {
	if r.EffectiveMode() == ModeJSON {
		_ = r.JSON(parseErrorDoc(perr))
		return
	}

	r.Error(perr.Error())
	if perr.Input == "" {
		return
	}

	line := sourceLine(perr.Input, perr.Pos.Line)
	col := perr.Pos.Column
	if col < 1 || col > len(line)+1 {
		col = len(line) + 1
	}

	if r.EffectiveMode() == ModeText {
		prefix := line[:col-1]
		rest := line[col-1:]
		offending := rest
		if n := len(perr.Found.Literal); n > 0 && n <= len(rest) {
			offending = rest[:n]
			rest = rest[n:]
		} else {
			rest = ""
		}
		_, _ = fmt.Fprintln(r.errOut, "  "+r.styles.Success.Render(prefix)+
			r.styles.Error.Render(offending)+rest)
	} else {
		_, _ = fmt.Fprintln(r.errOut, "  "+line)
	}
	_, _ = fmt.Fprintln(r.errOut, "  "+strings.Repeat(" ", col-1)+"^")

	if len(perr.Expected) > 0 {
		names := make([]string, len(perr.Expected))
		for i, t := range perr.Expected {
			names[i] = t.String()
		}
		_, _ = fmt.Fprintln(r.errOut, "  expected: "+strings.Join(names, ", "))
	}
}

// sourceLine extracts the 1-based nth line of the input.
func sourceLine(input string, n int) string {
	lines := strings.Split(input, "\n")
	if n < 1 || n > len(lines) {
		return input
	}
	return lines[n-1]
}

type parseErrorJSON struct {
	Error    string   `json:"error"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Found    string   `json:"found,omitempty"`
	Expected []string `json:"expected,omitempty"`
	Consumed []string `json:"consumed,omitempty"`
}

func parseErrorDoc(perr *parser.ParseError) parseErrorJSON {
	doc := parseErrorJSON{
		Error:    perr.Error(),
		Line:     perr.Pos.Line,
		Column:   perr.Pos.Column,
		Consumed: perr.Consumed,
	}
	if perr.Found.Type != token.EOF {
		doc.Found = perr.Found.Literal
	}
	for _, t := range perr.Expected {
		doc.Expected = append(doc.Expected, t.String())
	}
	return doc
}
