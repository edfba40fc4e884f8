package core

import "time"

// Meeting is a calendar event as seen by the discovery pass.
// It is never mutated after the calendar adapter builds it.
type Meeting struct {
	ID             string    `json:"id"`              // Stable calendar event ID
	Title          string    `json:"title"`           // Event summary
	StartTime      time.Time `json:"start_time"`      // Event start
	EndTime        time.Time `json:"end_time"`        // Event end
	Description    string    `json:"description"`     // Free-form event description
	AttendeeEmails []string  `json:"attendee_emails"` // Guest list emails
}

// MeetingRecord is a relevant, unprocessed meeting with its resolved transcript attached.
type MeetingRecord struct {
	Meeting
	Transcript string `json:"transcript"`
}

// DocumentSummary is the lightweight listing metadata of a document.
// It carries no content; content is fetched only for the winning candidate.
type DocumentSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type"`
	LastModified time.Time `json:"last_modified"`
}

// MatchCandidate is a document that passed the name filters and the time window.
type MatchCandidate struct {
	Document  DocumentSummary `json:"document"`
	TimeDelta time.Duration   `json:"time_delta"` // |Document.LastModified - Meeting.StartTime|
	Position  int             `json:"position"`   // Zero-based index in listing order
}

// NewMatchCandidate builds a candidate for doc relative to the meeting start.
func NewMatchCandidate(doc DocumentSummary, meetingStart time.Time, position int) MatchCandidate {
	delta := doc.LastModified.Sub(meetingStart)
	if delta < 0 {
		delta = -delta
	}
	return MatchCandidate{Document: doc, TimeDelta: delta, Position: position}
}

// Summaries holds the two generated summaries for one meeting.
type Summaries struct {
	Detailed string `json:"detailed"` // HTML summary used for the email
	Concise  string `json:"concise"`  // Bulleted summary used for the weekly document
}

// RunResult reports the outcome of one orchestration run.
type RunResult struct {
	RunID      string        `json:"run_id"`
	Discovered int           `json:"discovered"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}
