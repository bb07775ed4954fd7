package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dufangshi/issues/internal/config"
	"github.com/dufangshi/issues/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

The issue API is served under /api/issues; /health reports liveness.

Examples:
  # Serve the project database on the default address
  issued serve

  # Serve a specific database on another port
  issued serve --db /data/issues.db --listen :9090`,
	Run: func(cmd *cobra.Command, args []string) {
		listen, _ := cmd.Flags().GetString("listen")
		if !cmd.Flags().Changed("listen") {
			if l := config.GetString("listen"); l != "" {
				listen = l
			}
		}
		logFile, _ := cmd.Flags().GetString("log-file")
		if !cmd.Flags().Changed("log-file") {
			logFile = config.GetString("log-file")
		}

		if err := ensureStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}

		logger := server.NewLogger(config.GetString("env"), logFile)
		router := server.NewRouter(store, logger)
		srv := server.NewHTTPServer(listen, router, logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil {
				fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
				os.Exit(1)
			}
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "address to listen on")
	serveCmd.Flags().String("log-file", "", "rotated log file (default stdout)")
}
