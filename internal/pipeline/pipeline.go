package pipeline

import (
	"context"
	"errors"
	"podbrief/internal/core"
	"podbrief/internal/email"
	"podbrief/internal/logger"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned by TryRun while another run is active.
var ErrRunInProgress = errors.New("a run is already in progress")

const (
	outcomeProcessed = "processed"
	outcomeFailed    = "failed"
)

// Orchestrator runs discovery and then processes each meeting in order.
// Runs never overlap.
type Orchestrator struct {
	discoverer MeetingDiscoverer
	processor  MeetingProcessor
	marker     ProcessedMarker
	notifier   email.Sender
	leader     string
	observer   RunObserver
	now        func() time.Time

	runMu sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

// Status describes the most recent run.
type Status struct {
	Running  bool
	LastRun  *core.RunResult
	LastErr  string
	Finished time.Time
}

// NewOrchestrator wires a pipeline. notifier receives the failure report
// addressed to leader when discovery fails.
func NewOrchestrator(discoverer MeetingDiscoverer, processor MeetingProcessor, marker ProcessedMarker, notifier email.Sender, leader string) *Orchestrator {
	return &Orchestrator{
		discoverer: discoverer,
		processor:  processor,
		marker:     marker,
		notifier:   notifier,
		leader:     leader,
		now:        time.Now,
	}
}

// WithObserver attaches a run observer.
func (o *Orchestrator) WithObserver(obs RunObserver) *Orchestrator {
	o.observer = obs
	return o
}

// WithClock replaces the time source.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Status returns a snapshot of the last run.
func (o *Orchestrator) Status() Status {
	o.statusMu.RLock()
	defer o.statusMu.RUnlock()
	return o.status
}

// TryRun starts a run unless one is already active.
func (o *Orchestrator) TryRun(ctx context.Context) (core.RunResult, error) {
	if !o.runMu.TryLock() {
		return core.RunResult{}, ErrRunInProgress
	}
	defer o.runMu.Unlock()
	return o.run(ctx)
}

// Run waits for any active run to finish and then runs once.
func (o *Orchestrator) Run(ctx context.Context) (core.RunResult, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	return o.run(ctx)
}

func (o *Orchestrator) run(ctx context.Context) (core.RunResult, error) {
	result := core.RunResult{RunID: uuid.NewString(), StartedAt: o.now()}
	log := logger.With("run_id", result.RunID)
	log.Info().Msg("Starting pod summary run")
	o.setRunning()

	records, err := o.discoverer.Discover(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Automation failed")
		if !errors.Is(err, context.Canceled) {
			o.notify(ctx, err)
		}
		return o.finish(result, err), err
	}

	result.Discovered = len(records)
	if len(records) == 0 {
		log.Info().Msg("No new meetings found to process")
		return o.finish(result, nil), nil
	}
	log.Info().Int("meetings", len(records)).Msg("Found new meetings to process")

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("Run cancelled, remaining meetings left for the next run")
			return o.finish(result, err), err
		}

		meetingLog := log.With().Str("meeting", record.Title).Str("meeting_id", record.ID).Time("start_time", record.StartTime).Logger()
		meetingLog.Info().Msg("Processing meeting")

		if err := o.processOne(ctx, record); err != nil {
			meetingLog.Error().Err(err).Msg("Error processing meeting")
			result.Failed++
			o.observeMeeting(outcomeFailed)
			continue
		}

		result.Succeeded++
		o.observeMeeting(outcomeProcessed)
		meetingLog.Info().Msg("Successfully processed meeting")
	}

	log.Info().Int("succeeded", result.Succeeded).Int("failed", result.Failed).Msg("Automation complete")
	return o.finish(result, nil), nil
}

// processOne marks the meeting only after every step succeeded.
func (o *Orchestrator) processOne(ctx context.Context, record core.MeetingRecord) error {
	if _, err := o.processor.Process(ctx, record); err != nil {
		return err
	}
	return o.marker.MarkProcessed(ctx, record.ID)
}

func (o *Orchestrator) notify(ctx context.Context, cause error) {
	if o.notifier == nil || o.leader == "" {
		logger.Warn("No pod leader configured, skipping error notification")
		return
	}
	msg := email.ErrorNotification(o.leader, email.ErrorSubject, cause.Error(), o.now())
	if err := o.notifier.Send(ctx, msg); err != nil {
		logger.Error("Could not send error notification", err)
	}
}

func (o *Orchestrator) setRunning() {
	o.statusMu.Lock()
	o.status.Running = true
	o.statusMu.Unlock()
}

func (o *Orchestrator) finish(result core.RunResult, err error) core.RunResult {
	finished := o.now()
	result.Duration = finished.Sub(result.StartedAt)

	o.statusMu.Lock()
	o.status = Status{LastRun: &result, Finished: finished}
	if err != nil {
		o.status.LastErr = err.Error()
	}
	o.statusMu.Unlock()

	if o.observer != nil {
		o.observer.ObserveRun(result, err)
	}
	return result
}

func (o *Orchestrator) observeMeeting(outcome string) {
	if o.observer != nil {
		o.observer.ObserveMeeting(outcome)
	}
}
