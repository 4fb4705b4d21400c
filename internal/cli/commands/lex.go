package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/statforge/wilk/internal/cli/output"
	"github.com/statforge/wilk/pkg/parser"
	"github.com/statforge/wilk/pkg/token"
)

// NewLexCommand creates the lex command.
func NewLexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lex [formula]",
		Short: "Tokenize a formula without parsing it",
		Long: `Tokenize a model formula and print the token stream. Useful for
debugging grammar issues: unrecognized bytes show up as UNKNOWN tokens
instead of aborting.`,
		Example: `  # Show the token stream for a formula
  wilk lex "y ~ x + (1 || g)"

  # Emit tokens as JSON
  wilk lex "y ~ poly(x, 2)" --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := formulaInput(cmd, args)
			if err != nil {
				return err
			}
			return runLex(cmd, input)
		},
	}
	return cmd
}

type lexedToken struct {
	Token  string `json:"token"`
	Lexeme string `json:"lexeme"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func runLex(cmd *cobra.Command, input string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	var tokens []lexedToken
	for _, tok := range parser.Tokenize(input) {
		if tok.Type == token.EOF {
			break
		}
		tokens = append(tokens, lexedToken{
			Token:  tok.Type.String(),
			Lexeme: tok.Literal,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(tokens)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Token", "Lexeme", "Line", "Col"})
	for _, tok := range tokens {
		t.AppendRow(table.Row{tok.Token, tok.Lexeme, tok.Line, tok.Column})
	}
	t.Render()
	r.Printf("(%d tokens)\n", len(tokens))
	return nil
}
