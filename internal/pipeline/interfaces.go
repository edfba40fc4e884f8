package pipeline

import (
	"context"
	"podbrief/internal/core"
)

// MeetingDiscoverer finds meetings that need processing
type MeetingDiscoverer interface {
	// Discover returns relevant, unprocessed meetings with their transcripts
	Discover(ctx context.Context) ([]core.MeetingRecord, error)
}

// MeetingProcessor summarizes and distributes one meeting
type MeetingProcessor interface {
	Process(ctx context.Context, record core.MeetingRecord) (core.Summaries, error)
}

// ProcessedMarker records completed meetings
type ProcessedMarker interface {
	MarkProcessed(ctx context.Context, meetingID string) error
}

// RunObserver receives run and per-meeting outcomes
type RunObserver interface {
	ObserveMeeting(outcome string)
	ObserveRun(result core.RunResult, err error)
}
