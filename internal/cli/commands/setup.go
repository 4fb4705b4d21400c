package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/statforge/wilk/internal/cli/config"
	"github.com/statforge/wilk/internal/cli/output"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's
// configuration and context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back
// to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Verbose:      os.Getenv("WILK_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("WILK_OUTPUT", config.DefaultOutput),
		Family:       os.Getenv("WILK_FAMILY"),
		HistoryFile:  getEnvOrDefault("WILK_HISTORY_FILE", config.DefaultHistoryFile),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
