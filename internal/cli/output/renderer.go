// Package output provides mode-aware rendering for CLI commands.
//
// Output adapts to the environment: styled text on a terminal, plain
// markdown when piped, JSON when requested. Commands render through a
// Renderer instead of writing to stdout directly so every command
// honors the --output flag the same way.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// StyleSet holds the lipgloss styles used for text-mode rendering.
type StyleSet struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
}

func newStyleSet(renderer *lipgloss.Renderer) StyleSet {
	return StyleSet{
		Header:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: renderer.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: renderer.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   renderer.NewStyle().Foreground(lipgloss.Color("9")),
		Muted:   renderer.NewStyle().Foreground(lipgloss.Color("8")),
		Accent:  renderer.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles StyleSet
}

// NewRenderer creates a renderer for the given writers and mode.
// ModeAuto resolves to text on a terminal and markdown otherwise.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}

	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	lr := lipgloss.NewRenderer(out)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyleSet(lr),
	}
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the underlying output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the underlying error writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Styles returns the style set for callers that render inline.
func (r *Renderer) Styles() StyleSet {
	return r.styles
}

// Header renders a section header at the given level.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.out, r.styles.Header.Render(text))
		return
	}
	_, _ = fmt.Fprintln(r.out, FormatHeader(level, text))
}

// Println writes a plain line.
func (r *Renderer) Println(args ...any) {
	_, _ = fmt.Fprintln(r.out, args...)
}

// Printf writes a formatted line.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Success renders a success line.
func (r *Renderer) Success(text string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("✓ "+text))
		return
	}
	_, _ = fmt.Fprintln(r.out, text)
}

// Warning renders a warning line to the error writer.
func (r *Renderer) Warning(text string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+text))
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "Warning: "+text)
}

// Error renders an error line to the error writer.
func (r *Renderer) Error(text string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+text))
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "Error: "+text)
}

// JSON writes v as indented JSON to the output writer.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader renders a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown key-value line.
func FormatKeyValue(key, value string) string {
	return "- **" + key + "**: " + value
}
