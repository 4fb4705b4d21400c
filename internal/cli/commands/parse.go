package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/statforge/wilk/internal/cli/output"
	"github.com/statforge/wilk/pkg/formula"
	"github.com/statforge/wilk/pkg/parser"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [formula]",
		Short: "Parse a model formula and show its metadata",
		Long: `Parse a model formula written in Wilkinson notation and report the
variables it references, the role each one plays, and the columns every
term generates.

The formula is read from the argument, or from stdin when omitted.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format

Use --output to override: auto, text, markdown, json`,
		Example: `  # Parse a formula with a random intercept
  wilk parse "y ~ x + (1 | subject)"

  # Emit the full metadata document as JSON
  wilk parse "y ~ wt*hp + poly(disp, 2)" --output json

  # Read the formula from stdin
  echo "y ~ x + z" | wilk parse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := formulaInput(cmd, args)
			if err != nil {
				return err
			}
			return runParse(cmd, input)
		},
	}
	return cmd
}

// formulaInput returns the formula from args, falling back to stdin.
func formulaInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read formula from stdin: %w", err)
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", errors.New("no formula given: pass one as an argument or on stdin")
	}
	return input, nil
}

func runParse(cmd *cobra.Command, input string) error {
	cmdCtx := NewCommandContext(cmd)
	return parseAndRender(cmdCtx, input)
}

// parseAndRender parses a formula and renders the result in the
// renderer's effective mode. Shared with the REPL loop.
func parseAndRender(cmdCtx *CommandContext, input string) error {
	r := cmdCtx.Renderer

	prog, err := parser.Parse(input)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			r.ParseDiagnostic(perr)
		}
		return err
	}

	// A family from config applies only when the formula names none.
	if prog.Family == "" && cmdCtx.Cfg.Family != "" {
		prog.Family = strings.ToLower(cmdCtx.Cfg.Family)
	}

	md, err := formula.Build(input, prog)
	if err != nil {
		var berr *formula.BuildError
		if errors.As(err, &berr) {
			r.Error(berr.Error())
		}
		return err
	}

	cmdCtx.Logger.Debug("parsed formula",
		"formula", input,
		"variables", len(md.Variables),
		"family", md.Family)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(md)
	case output.ModeMarkdown:
		renderMetadataMarkdown(r, md)
		return nil
	default:
		renderMetadataText(r, md)
		return nil
	}
}

func renderMetadataText(r *output.Renderer, md *formula.MetaData) {
	styles := r.Styles()

	r.Header(1, "Formula: "+md.Formula)
	r.Printf("family: %s   intercept: %s   random effects: %s\n",
		styles.Accent.Render(md.Family),
		yesNo(md.HasIntercept),
		yesNo(md.RandomEffectsModel))
	r.Println()

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Variable", "Role", "Columns", "Details"})
	for _, v := range md.Variables {
		t.AppendRow(table.Row{
			v.ID,
			v.Name,
			string(v.Role),
			strings.Join(v.GeneratedColumns, ", "),
			variableDetails(v),
		})
	}
	t.Render()

	r.Println()
	r.Printf("columns (model order):   %s\n", strings.Join(md.AllGenerated, ", "))
	r.Printf("columns (formula order): %s\n", strings.Join(orderedColumns(md), ", "))
}

func renderMetadataMarkdown(r *output.Renderer, md *formula.MetaData) {
	r.Println(output.FormatHeader(1, "Formula: "+md.Formula))
	r.Println("")
	r.Println(output.FormatKeyValue("Family", md.Family))
	r.Println(output.FormatKeyValue("Intercept", yesNo(md.HasIntercept)))
	r.Println(output.FormatKeyValue("Random effects", yesNo(md.RandomEffectsModel)))
	r.Println("")

	for _, v := range md.Variables {
		r.Println(output.FormatHeader(2, v.Name))
		r.Println(output.FormatKeyValue("Role", string(v.Role)))
		r.Println(output.FormatKeyValue("Columns", strings.Join(v.GeneratedColumns, ", ")))
		if details := variableDetails(v); details != "" {
			r.Println(output.FormatKeyValue("Details", details))
		}
		r.Println("")
	}

	r.Println(output.FormatKeyValue("All columns", strings.Join(md.AllGenerated, ", ")))
}

// variableDetails summarizes transformations, interactions, and
// random-effect membership in one cell.
func variableDetails(v *formula.Variable) string {
	var parts []string
	for _, tr := range v.Transformations {
		parts = append(parts, tr.Function+"()")
	}
	if len(v.Interactions) > 0 {
		parts = append(parts, "interacts: "+strings.Join(v.Interactions, ", "))
	}
	for _, re := range v.RandomEffects {
		switch re.Kind {
		case "grouping":
			parts = append(parts, "groups: "+strings.Join(re.Variables, ", "))
		default:
			parts = append(parts, "varies by "+re.Group)
		}
	}
	return strings.Join(parts, "; ")
}

// orderedColumns flattens the formula-order map back into a slice.
func orderedColumns(md *formula.MetaData) []string {
	cols := make([]string, len(md.FormulaOrder))
	for i := range cols {
		cols[i] = md.FormulaOrder[fmt.Sprintf("%d", i+1)]
	}
	return cols
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
