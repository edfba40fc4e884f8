package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process new pod meetings once",
		Long: `Discover relevant meetings from the last few days, find their transcripts
and summarize, archive and email each one that has not been processed yet.

Examples:
  # Process new meetings
  podbrief run

  # Show what would happen without writing documents or sending email
  podbrief run --dry-run --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runOnce(ctx, cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not modify documents, send email or mark meetings processed")

	return cmd
}

func runOnce(ctx context.Context, cmd *cobra.Command, dryRun bool) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("run %s failed: %w", result.RunID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d discovered, %d succeeded, %d failed in %s\n",
		result.RunID, result.Discovered, result.Succeeded, result.Failed, result.Duration.Round(time.Millisecond))
	if result.Failed > 0 {
		return fmt.Errorf("%d meeting(s) failed, they will be retried on the next run", result.Failed)
	}
	return nil
}
