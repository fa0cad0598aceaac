package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/chatotp/internal/logger"
)

const healthTimeout = 10 * time.Second

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the chat server is up",
		Long:  `Query the server's /api/health route and report whether it is healthy.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			a.initLogging(cfg, true)
			defer logger.Close()

			client, err := a.deps.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			defer client.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, healthTimeout)
			defer cancel()

			start := time.Now()
			if err := client.Health(ctx); err != nil {
				fmt.Fprintln(a.deps.Stderr, formatErrorMessage(err, "Health check failed"))
				return fmt.Errorf("health check failed: %w", err)
			}

			fmt.Fprintln(a.deps.Stdout, successStyle().Render(fmt.Sprintf(
				"✓ %s is healthy (%s)", client.Endpoint(), time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}
}
