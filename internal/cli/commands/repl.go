package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/statforge/wilk/internal/cli/output"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse formulas",
		Long: `Start an interactive session. Each line is parsed as a formula and
the resulting metadata is rendered immediately. History is kept across
sessions in the configured history file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
	return cmd
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "wilk> ",
		HistoryFile:     cmdCtx.Cfg.HistoryFile,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "wilk formula REPL")
	_, _ = fmt.Fprintln(out, "Type a formula, or .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, cmdCtx, line); quit {
				break
			}
			continue
		}

		// Render errors inline and keep the loop alive
		if err := parseAndRender(cmdCtx, line); err != nil {
			_, _ = fmt.Fprintln(out)
			continue
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

// handleDotCommand executes a dot-command and reports whether the REPL
// should exit.
func handleDotCommand(cmd *cobra.Command, cmdCtx *CommandContext, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".lex":
		if rest == "" {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .lex <formula>")
			return false
		}
		if err := runLex(cmd, rest); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".json", ".text", ".markdown":
		mode := strings.TrimPrefix(command, ".")
		cmdCtx.Cfg.OutputFormat = mode
		cmdCtx.Renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(mode))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "output mode: %s\n", mode)

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .lex <formula>   Show the token stream for a formula
  .json            Switch to JSON output
  .text            Switch to styled text output
  .markdown        Switch to markdown output
  .clear           Clear the screen
  .quit / .exit    Exit the REPL

Tips:
  - Any other line is parsed as a formula
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func replCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".lex"),
		readline.PcItem(".json"),
		readline.PcItem(".text"),
		readline.PcItem(".markdown"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
