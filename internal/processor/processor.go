// Package processor turns one discovered meeting into its summaries,
// document updates and email.
package processor

import (
	"context"
	"fmt"
	"podbrief/internal/content"
	"podbrief/internal/core"
	"podbrief/internal/docs"
	"podbrief/internal/email"
	"podbrief/internal/logger"
	"podbrief/internal/summarize"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultMaxInputChars bounds the transcript sent to the model.
	DefaultMaxInputChars = 100000

	truncationMarker  = "\n\n[TRANSCRIPT TRUNCATED]"
	contextDateLayout = "Monday, January 02, 2006 03:04 PM"
	separatorWidth    = 80
)

// Summarizer generates text from a prompt.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Options configures where a processed meeting is written and mailed.
type Options struct {
	ContextDocID         string
	WeeklyDocID          string
	ArchiveDocID         string
	Section              string
	MaxInputChars        int
	LeaderEmail          string
	EmailAllParticipants bool
	SubjectPrefix        string
	Location             *time.Location
	EmailTemplate        *email.EmailTemplate
}

// Processor runs the per-meeting steps in order. Any failing step fails
// the meeting; earlier side effects are not rolled back.
type Processor struct {
	summarizer Summarizer
	reader     content.DocumentReader
	writer     docs.Writer
	sender     email.Sender
	opts       Options
}

// NewProcessor wires the collaborators of a processor.
func NewProcessor(summarizer Summarizer, reader content.DocumentReader, writer docs.Writer, sender email.Sender, opts Options) *Processor {
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	if opts.Section == "" {
		opts.Section = docs.DefaultSection
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Processor{
		summarizer: summarizer,
		reader:     reader,
		writer:     writer,
		sender:     sender,
		opts:       opts,
	}
}

// Process summarizes record, updates the weekly and archive documents and
// sends the summary email.
func (p *Processor) Process(ctx context.Context, record core.MeetingRecord) (core.Summaries, error) {
	log := logger.With("meeting", record.Title, "meeting_id", record.ID)

	okrContext := p.loadContext(ctx)
	transcript := PrepareTranscript(record, p.opts.MaxInputChars, p.opts.Location)

	detailedRaw, err := p.summarizer.Summarize(ctx, summarize.DetailedPrompt(transcript, okrContext))
	if err != nil {
		return core.Summaries{}, fmt.Errorf("failed to generate detailed summary: %w", err)
	}
	detailed, err := summarize.CleanHTML(detailedRaw)
	if err != nil {
		return core.Summaries{}, err
	}

	concise, err := p.summarizer.Summarize(ctx, summarize.ConcisePrompt(transcript))
	if err != nil {
		return core.Summaries{}, fmt.Errorf("failed to generate concise summary: %w", err)
	}
	if err := summarize.CheckConcise(concise); err != nil {
		return core.Summaries{}, err
	}
	summaries := core.Summaries{Detailed: detailed, Concise: concise}
	log.Info().Int("detailed_chars", len(detailed)).Int("concise_chars", len(concise)).Msg("Generated summaries")

	weekly := docs.WeeklySummaryBlocks(record.Meeting, concise, p.opts.Location)
	if err := docs.InsertIntoSection(ctx, p.writer, p.opts.WeeklyDocID, p.opts.Section, weekly); err != nil {
		return summaries, fmt.Errorf("failed to update weekly summary: %w", err)
	}
	log.Info().Str("document_id", p.opts.WeeklyDocID).Msg("Updated weekly summary")

	if err := p.writer.AppendBlocks(ctx, p.opts.ArchiveDocID, docs.ArchiveBlocks(record, p.opts.Location)); err != nil {
		return summaries, fmt.Errorf("failed to update transcript archive: %w", err)
	}
	log.Info().Str("document_id", p.opts.ArchiveDocID).Msg("Appended transcript to archive")

	if err := p.sendSummary(ctx, record.Meeting, detailed); err != nil {
		return summaries, err
	}

	return summaries, nil
}

func (p *Processor) loadContext(ctx context.Context) string {
	if p.opts.ContextDocID == "" || p.reader == nil {
		return summarize.ContextUnavailable
	}
	text, err := p.reader.GetDocumentText(ctx, p.opts.ContextDocID)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Warn("Could not load OKR context", "document_id", p.opts.ContextDocID, "error", errString(err))
		return summarize.ContextUnavailable
	}
	logger.Info("Loaded OKR context", "characters", utf8.RuneCountInString(text))
	return text
}

func (p *Processor) sendSummary(ctx context.Context, meeting core.Meeting, detailed string) error {
	recipients := email.Recipients(meeting.AttendeeEmails, p.opts.LeaderEmail, p.opts.EmailAllParticipants)
	if len(recipients) == 0 {
		logger.Warn("No recipients configured for email", "meeting", meeting.Title)
		return nil
	}

	data := email.NewSummaryData(meeting, detailed, summarize.PlainText(detailed), p.opts.LeaderEmail, p.opts.Location)
	msg, err := email.SummaryMessage(recipients, p.opts.SubjectPrefix, data, p.opts.EmailTemplate)
	if err != nil {
		return fmt.Errorf("failed to build summary email: %w", err)
	}
	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send summary email: %w", err)
	}

	logger.Info("Email sent", "to", strings.Join(recipients, ", "), "subject", msg.Subject)
	return nil
}

// PrepareTranscript prefixes the meeting identity and truncates the
// transcript to maxChars characters.
func PrepareTranscript(record core.MeetingRecord, maxChars int, loc *time.Location) string {
	start := record.StartTime
	if loc != nil {
		start = start.In(loc)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Meeting: %s\nDate: %s\n\n", record.Title, start.Format(contextDateLayout))
	sb.WriteString(strings.Repeat("=", separatorWidth))
	sb.WriteString("\n\n")

	transcript := record.Transcript
	if maxChars > 0 && utf8.RuneCountInString(transcript) > maxChars {
		logger.Warn("Transcript too long, truncating", "characters", utf8.RuneCountInString(transcript), "max_chars", maxChars)
		transcript = string([]rune(transcript)[:maxChars]) + truncationMarker
	}
	sb.WriteString(transcript)
	return sb.String()
}

func errString(err error) string {
	if err == nil {
		return "empty document"
	}
	return err.Error()
}
