package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toastd/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the toast server",
		Long: `Start the HTTP server.

Every page request renders the configured template, shows the toasts
named by ?msg= and ?error=, and opens a live session that removes them
in the browser when their lifetime elapses.

Examples:
  toastd serve
  toastd serve --port=9000
  TOASTD_TOAST_LIFETIME=5s toastd serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg, os.Stderr)
			srv, err := server.New(cfg, server.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			success(out, "Listening on http://%s", cfg.Address())
			info(out, "Toast lifetime %s", cfg.ToastLifetime())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from toastd.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from toastd.json)")

	return cmd
}
