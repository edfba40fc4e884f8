package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewProcessedCmd lists the processed meeting IDs
func NewProcessedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "processed",
		Short: "List meetings already processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProcessed(cmd.Context(), cmd)
		},
	}
}

// NewResetCmd clears the processed meeting set
func NewResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget processed meetings so they are summarized again",
		Long: `Delete the processed meeting set. The next run treats every meeting in
the lookback window as new and summarizes it again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes the processed meeting set; rerun with --yes to confirm")
			}
			return resetProcessed(cmd.Context(), cmd)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	return cmd
}

func listProcessed(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags, processed, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer flags.Close()

	ids, err := processed.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d processed meeting(s) under %s (%s store)\n", len(ids), processed.Key(), cfg.Store.Driver)
	for _, id := range ids {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}

func resetProcessed(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags, processed, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer flags.Close()

	if err := processed.Reset(ctx); err != nil {
		return fmt.Errorf("failed to clear processed meetings: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared processed meetings list (%s)\n", processed.Key())
	return nil
}
