package commands

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/statforge/wilk/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the formula parser over HTTP",
		Long: `Start an HTTP server exposing the parser as a JSON API.

Endpoints:
  POST /api/v1/parse   Parse a formula and return its metadata
  POST /api/v1/lex     Tokenize a formula
  GET  /healthz        Health check`,
		Example: `  # Start on the configured address
  wilk serve

  # Start on a specific port
  wilk serve --addr :9090

  # Parse a formula over HTTP
  curl -s localhost:8385/api/v1/parse -d '{"formula": "y ~ x + (1 | g)"}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	srvCfg := cmdCtx.Cfg.GetServerConfig()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		srvCfg.Addr = addr
	}

	srv := server.New(server.Config{
		Addr:            srvCfg.Addr,
		DefaultFamily:   cmdCtx.Cfg.Family,
		ReadTimeout:     time.Duration(srvCfg.ReadTimeout) * time.Second,
		ShutdownTimeout: time.Duration(srvCfg.ShutdownTimeout) * time.Second,
		Logger:          cmdCtx.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
