// Package observability exposes Prometheus metrics for podbrief runs.
package observability

import (
	"podbrief/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Meeting outcomes recorded by ObserveMeeting.
const (
	OutcomeDiscovered          = "discovered"
	OutcomeProcessed           = "processed"
	OutcomeFailed              = "failed"
	OutcomeSkippedProcessed    = "skipped_processed"
	OutcomeSkippedIrrelevant   = "skipped_irrelevant"
	OutcomeSkippedNoTranscript = "skipped_no_transcript"
)

// Metrics holds all Prometheus metrics for the summary pipeline.
type Metrics struct {
	// Run metrics
	RunsTotal       *prometheus.CounterVec
	RunSeconds      prometheus.Histogram
	LastRunUnixTime prometheus.Gauge

	// Meeting metrics
	MeetingsTotal *prometheus.CounterVec

	// Transcript matching metrics
	DocumentsScannedTotal prometheus.Counter
	ScanCandidates        prometheus.Histogram
	ScanStopsTotal        *prometheus.CounterVec
	ResolverAttemptsTotal *prometheus.CounterVec
}

// NewMetrics creates a new set of metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podbrief_runs_total",
				Help: "Total pipeline runs by status",
			},
			[]string{"status"},
		),
		RunSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "podbrief_run_seconds",
				Help:    "Wall time of a complete pipeline run",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
			},
		),
		LastRunUnixTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "podbrief_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
		),

		MeetingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podbrief_meetings_total",
				Help: "Meetings seen by outcome",
			},
			[]string{"outcome"},
		),

		DocumentsScannedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "podbrief_documents_scanned_total",
				Help: "Documents inspected while matching transcripts",
			},
		),
		ScanCandidates: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "podbrief_scan_candidates",
				Help:    "Candidate transcripts found per scan",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
			},
		),
		ScanStopsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podbrief_scan_stops_total",
				Help: "How transcript scans ended",
			},
			[]string{"reason"},
		),
		ResolverAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podbrief_resolver_attempts_total",
				Help: "Content extraction attempts by strategy and result",
			},
			[]string{"strategy", "result"},
		),
	}
}

// ObserveStrategy records one content extraction attempt.
func (m *Metrics) ObserveStrategy(strategy string, ok bool) {
	result := "invalid"
	if ok {
		result = "ok"
	}
	m.ResolverAttemptsTotal.WithLabelValues(strategy, result).Inc()
}

// ObserveScan records the counters of one transcript scan.
func (m *Metrics) ObserveScan(scanned, candidates int, earlyExit, capReached bool) {
	m.DocumentsScannedTotal.Add(float64(scanned))
	m.ScanCandidates.Observe(float64(candidates))

	reason := "exhausted"
	switch {
	case earlyExit:
		reason = "early_exit"
	case capReached:
		reason = "cap_reached"
	}
	m.ScanStopsTotal.WithLabelValues(reason).Inc()
}

// ObserveMeeting counts a meeting outcome.
func (m *Metrics) ObserveMeeting(outcome string) {
	m.MeetingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRun records a finished run. err is the top-level failure, if any.
func (m *Metrics) ObserveRun(result core.RunResult, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case result.Failed > 0:
		status = "partial"
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunSeconds.Observe(result.Duration.Seconds())
	m.LastRunUnixTime.Set(float64(result.StartedAt.Add(result.Duration).Unix()))
}
