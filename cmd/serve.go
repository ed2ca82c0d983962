package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitor with the health endpoints",
	Long:  "Runs the monitor loop in the background and serves the health endpoints the hosting platform polls to keep the process alive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loop := newLoop(cfg)

		go func() {
			if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zap.L().Error("monitor stopped", zap.Error(err))
				stop()
			}
		}()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		return server.New(port, cfg.Sheet.ID, loop.Health()).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
