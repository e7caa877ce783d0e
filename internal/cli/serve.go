// internal/cli/serve.go
package vigil

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jsandlin/vigil/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the dashboard HTTP server until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the results dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		auth, err := server.NewCookieAuthorizer(cfg.SessionSecret, server.DefaultSessionAge)
		if err != nil {
			return fmt.Errorf("session setup: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.New(cfg, auth).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
