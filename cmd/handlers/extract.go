package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewExtractCmd runs every content extraction strategy on one document
func NewExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <document-id>",
		Short: "Report which content extraction strategies work for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runExtract(ctx context.Context, out io.Writer, docID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ws, err := newWorkspace(ctx, cfg, nil)
	if err != nil {
		return err
	}

	r := &report{out: out}
	r.section("Extraction strategies for " + docID)

	succeeded := 0
	for _, attempt := range ws.resolver.Diagnose(ctx, docID) {
		if attempt.OK() {
			succeeded++
			r.ok("%s: %d bytes", attempt.Strategy, attempt.Length)
			continue
		}
		r.warn("%s: %v", attempt.Strategy, attempt.Err)
	}

	if succeeded == 0 {
		return fmt.Errorf("no strategy could read document %s", docID)
	}
	return nil
}
