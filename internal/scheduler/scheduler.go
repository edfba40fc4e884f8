// Package scheduler fires a pipeline run once a day at a fixed local hour.
package scheduler

import (
	"context"
	"errors"
	"podbrief/internal/core"
	"podbrief/internal/logger"
	"podbrief/internal/pipeline"
	"time"
)

// Trigger starts a run unless one is already active.
type Trigger interface {
	TryRun(ctx context.Context) (core.RunResult, error)
}

// Daily runs the trigger every day at hour:00 in loc.
type Daily struct {
	trigger Trigger
	hour    int
	loc     *time.Location
	now     func() time.Time
	after   func(time.Duration) <-chan time.Time
}

// NewDaily creates a daily schedule. A nil loc means UTC.
func NewDaily(trigger Trigger, hour int, loc *time.Location) *Daily {
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{
		trigger: trigger,
		hour:    hour,
		loc:     loc,
		now:     time.Now,
		after:   time.After,
	}
}

// Next returns the first fire time strictly after from.
func (d *Daily) Next(from time.Time) time.Time {
	local := from.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, 0, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, 0, 0, 0, d.loc)
	}
	return next
}

// Start blocks, firing the trigger each day, until ctx is cancelled.
func (d *Daily) Start(ctx context.Context) error {
	for {
		now := d.now()
		next := d.Next(now)
		logger.Info("Next scheduled run", "at", next.Format(time.RFC3339), "in", next.Sub(now).Round(time.Second).String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.after(next.Sub(now)):
		}

		d.fire(ctx)
	}
}

func (d *Daily) fire(ctx context.Context) {
	result, err := d.trigger.TryRun(ctx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		logger.Warn("Skipping scheduled run, a run is already in progress")
	case err != nil:
		logger.Error("Scheduled run failed", err, "run_id", result.RunID)
	default:
		logger.Info("Scheduled run finished", "run_id", result.RunID, "succeeded", result.Succeeded, "failed", result.Failed)
	}
}
