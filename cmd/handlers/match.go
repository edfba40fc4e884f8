package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"podbrief/internal/core"

	"github.com/spf13/cobra"
)

const previewChars = 500

var startLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// NewMatchCmd runs the transcript matcher for an ad hoc meeting
func NewMatchCmd() *cobra.Command {
	var (
		title       string
		start       string
		duration    time.Duration
		description string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the transcript for a meeting without processing it",
		Long: `Run the transcript search for a meeting given by title and start time and
print every candidate considered, the selected document and a preview.

Start accepts RFC 3339 or "2006-01-02 15:04" in pod.timezone.

Examples:
  podbrief match --title "RHEL Cloud Pod Program Call" --start "2025-09-23 17:00"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || start == "" {
				return errors.New("--title and --start are required")
			}
			return runMatch(cmd.Context(), cmd.OutOrStdout(), title, start, duration, description)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "meeting title")
	cmd.Flags().StringVar(&start, "start", "", "meeting start time")
	cmd.Flags().DurationVar(&duration, "duration", time.Hour, "meeting length")
	cmd.Flags().StringVar(&description, "description", "", "event description, used by the fallback search")

	return cmd
}

func parseStart(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse start time %q", value)
}

func runMatch(ctx context.Context, out io.Writer, title, start string, duration time.Duration, description string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	startTime, err := parseStart(start, cfg.Location())
	if err != nil {
		return err
	}
	meeting := core.Meeting{
		ID:          "adhoc",
		Title:       title,
		StartTime:   startTime,
		EndTime:     startTime.Add(duration),
		Description: description,
	}

	ws, err := newWorkspace(ctx, cfg, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Meeting: %s\nStart:   %s\n\n", meeting.Title, meeting.StartTime.Format("Jan 02, 2006 03:04 PM MST"))

	result, err := ws.matcher.Scan(ctx, meeting)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Fprintf(out, "Scope: %s, %d document(s) inspected", orDefault(result.Scope, "all of Drive"), result.Scanned)
	switch {
	case result.EarlyExit:
		fmt.Fprint(out, ", stopped early on a close match")
	case result.CapReached:
		fmt.Fprint(out, ", stopped at the document cap")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Title matches: %d\n", len(result.TitleMatches))
	for i, c := range result.Candidates {
		fmt.Fprintf(out, "  %d. %s (%s) modified %s, %s from start\n",
			i+1, c.Document.Name, c.Document.ID, c.Document.LastModified.In(cfg.Location()).Format(time.RFC3339), c.TimeDelta.Round(time.Minute))
	}

	text, ok := ws.matcher.FindTranscript(ctx, meeting)
	if !ok {
		fmt.Fprintln(out, "\nNo transcript found")
		return nil
	}

	preview := []rune(text)
	if len(preview) > previewChars {
		preview = preview[:previewChars]
	}
	fmt.Fprintf(out, "\nTranscript found (%d characters):\n%s\n", len([]rune(text)), string(preview))
	return nil
}
