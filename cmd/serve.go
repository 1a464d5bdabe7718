package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/chative-coordinator/agent/transport/mcpserver"
	"github.com/tanpawarit/chative-coordinator/agent/transport/wsserver"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve queries over websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := wireApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.server
			if addr != "" {
				cfg.Addr = addr
			}
			srv, err := wsserver.New(a.coordinator, cfg)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: SERVER_ADDR or :8080)")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the coordinator as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := mcpserver.New(a.coordinator, a.store, Version)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return mcpserver.ServeStdio(s)
		},
	}
}
