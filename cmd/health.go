package cmd

import (
	"fmt"
	"time"

	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the AI service is reachable",
	Long: `Check that the AI service is reachable by requesting its health endpoint.

Exits with an error when the service cannot be reached or answers with a non-2xx status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log := newLogger(cfg)
		defer log.Sync()

		adapter, err := newAdapter(cfg, log)
		if err != nil {
			return fmt.Errorf("creating adapter: %w", err)
		}

		ctx, stop := interruptContext(cmd.Context())
		defer stop()

		started := time.Now()
		body, err := adapter.Health(ctx)
		if err != nil {
			return fmt.Errorf("service %s is unavailable: %w", adapter.BaseURL(), err)
		}

		fmt.Printf("Service: %s\n", adapter.BaseURL())
		fmt.Printf("Status: ok (%s)\n", time.Since(started).Round(time.Millisecond))
		if body != "" && verbose {
			fmt.Printf("Response: %s\n", body)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
