package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olehkavur/fira/internal/api"
)

// newServeCmd creates the serve command for the API server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the fira API server.

The server exposes REST endpoints for projects, tasks, WIP limits and
CFD data, plus a WebSocket stream of board events.

Example:
  fira serve                          # Listen per config (default 127.0.0.1:8080)
  fira serve --port 3000              # Custom port
  fira serve --base-dir /srv/boards   # Custom project tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Flags win over config and environment.
			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host, _ = cmd.Flags().GetString("host")
			}
			if cmd.Flags().Changed("base-dir") {
				cfg.BaseDir, _ = cmd.Flags().GetString("base-dir")
			}

			logger := newLogger(cfg)
			server := api.New(cfg, logger)

			fmt.Printf("Starting API server on %s (projects in %s)\n", cfg.Server.Addr(), cfg.BaseDir)
			fmt.Println("Press Ctrl+C to stop")

			// Handle graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigCh
				fmt.Println("\nShutting down...")
				cancel()
			}()

			return server.StartContext(ctx)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "port to listen on")
	cmd.Flags().String("host", "127.0.0.1", "host to bind")
	cmd.Flags().String("base-dir", "", "directory holding project trees")

	return cmd
}
