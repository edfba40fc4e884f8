// Package discovery finds recent calendar meetings that still need a summary.
package discovery

import (
	"context"
	"fmt"
	"podbrief/internal/core"
	"podbrief/internal/logger"
	"strings"
	"time"
)

const (
	// DefaultLookbackDays is how far back the calendar is searched.
	DefaultLookbackDays = 3

	lookahead = 24 * time.Hour
)

// DefaultKeywords apply when neither meeting titles nor patterns are configured.
var DefaultKeywords = []string{"RHEL", "Cloud Pod", "Strategy", "Journey"}

// Meeting outcomes reported to the observer.
const (
	OutcomeDiscovered          = "discovered"
	OutcomeSkippedProcessed    = "skipped_processed"
	OutcomeSkippedIrrelevant   = "skipped_irrelevant"
	OutcomeSkippedNoTranscript = "skipped_no_transcript"
)

// EventLister returns calendar events overlapping [start, end].
type EventLister interface {
	ListEvents(ctx context.Context, start, end time.Time) ([]core.Meeting, error)
}

// TranscriptFinder locates the transcript of a meeting.
type TranscriptFinder interface {
	FindTranscript(ctx context.Context, meeting core.Meeting) (string, bool)
}

// ProcessedSource reports meetings that were already handled.
type ProcessedSource interface {
	Snapshot(ctx context.Context) (map[string]bool, error)
}

// MeetingObserver receives one outcome per inspected event.
type MeetingObserver interface {
	ObserveMeeting(outcome string)
}

// Options configures a Discoverer
type Options struct {
	LookbackDays  int
	MeetingTitles []string // Case-insensitive substrings of relevant titles
	Keywords      []string // Used only when MeetingTitles is empty
}

// Discoverer lists relevant, unprocessed meetings that have a transcript.
type Discoverer struct {
	events    EventLister
	finder    TranscriptFinder
	processed ProcessedSource
	opts      Options
	now       func() time.Time
	observer  MeetingObserver
}

// NewDiscoverer creates a discoverer using the wall clock.
func NewDiscoverer(events EventLister, finder TranscriptFinder, processed ProcessedSource, opts Options) *Discoverer {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	return &Discoverer{
		events:    events,
		finder:    finder,
		processed: processed,
		opts:      opts,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (d *Discoverer) WithClock(now func() time.Time) *Discoverer {
	d.now = now
	return d
}

// WithObserver attaches a meeting observer.
func (d *Discoverer) WithObserver(o MeetingObserver) *Discoverer {
	d.observer = o
	return d
}

// Window returns the calendar range searched at the current time.
func (d *Discoverer) Window() (time.Time, time.Time) {
	now := d.now()
	return now.Add(-time.Duration(d.opts.LookbackDays) * 24 * time.Hour), now.Add(lookahead)
}

// Discover returns meeting records in calendar order. Events without a
// transcript are skipped and picked up again on a later run.
func (d *Discoverer) Discover(ctx context.Context) ([]core.MeetingRecord, error) {
	start, end := d.Window()
	logger.Info("Looking for meetings", "from", start, "to", end)

	processed, err := d.processed.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load processed meetings: %w", err)
	}

	events, err := d.events.ListEvents(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	var records []core.MeetingRecord
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		if processed[event.ID] {
			d.observe(OutcomeSkippedProcessed)
			continue
		}

		if !IsRelevant(event.Title, d.opts.MeetingTitles, d.opts.Keywords) {
			logger.Debug("Skipping irrelevant meeting", "meeting", event.Title)
			d.observe(OutcomeSkippedIrrelevant)
			continue
		}

		transcript, ok := d.finder.FindTranscript(ctx, event)
		if !ok {
			logger.Info("Skipping meeting, no transcript found",
				"meeting", event.Title,
				"start_time", event.StartTime.Format("Jan 02, 2006 03:04 PM"),
			)
			d.observe(OutcomeSkippedNoTranscript)
			continue
		}

		records = append(records, core.MeetingRecord{Meeting: event, Transcript: transcript})
		d.observe(OutcomeDiscovered)
	}

	return records, nil
}

func (d *Discoverer) observe(outcome string) {
	if d.observer != nil {
		d.observer.ObserveMeeting(outcome)
	}
}

// IsRelevant matches title against the configured meeting titles, falling
// back to keywords (or DefaultKeywords) when no titles are set.
func IsRelevant(title string, titles, keywords []string) bool {
	candidates := titles
	if len(candidates) == 0 {
		candidates = keywords
	}
	if len(candidates) == 0 {
		candidates = DefaultKeywords
	}

	lower := strings.ToLower(title)
	for _, c := range candidates {
		if c != "" && strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}
