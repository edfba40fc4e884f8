package handlers

import (
	"context"
	"fmt"
	"net/http"

	"podbrief/internal/config"
	"podbrief/internal/content"
	"podbrief/internal/discovery"
	"podbrief/internal/docs"
	"podbrief/internal/email"
	"podbrief/internal/google"
	"podbrief/internal/llm"
	"podbrief/internal/logger"
	"podbrief/internal/observability"
	"podbrief/internal/pipeline"
	"podbrief/internal/processor"
	"podbrief/internal/store"
	"podbrief/internal/transcript"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// workspace holds the Google adapters and the transcript lookup built on them
type workspace struct {
	clients  *google.Clients
	resolver *content.Resolver
	matcher  *transcript.Matcher
}

// app is a fully wired pipeline
type app struct {
	cfg          config.Config
	flags        store.FlagStore
	processed    *store.ProcessedSet
	workspace    *workspace
	registry     *prometheus.Registry
	metrics      *observability.Metrics
	orchestrator *pipeline.Orchestrator
}

// Close releases the flag store connection.
func (a *app) Close() error {
	return a.flags.Close()
}

// MetricsHandler exposes the app registry for /metrics.
func (a *app) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry})
}

func newRegistry() (*prometheus.Registry, *observability.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, observability.NewMetrics(reg)
}

func openStore(ctx context.Context, cfg config.Config) (store.FlagStore, *store.ProcessedSet, error) {
	flags, err := store.Open(ctx, store.Options{
		Driver:        cfg.Store.Driver,
		SQLitePath:    cfg.Store.SQLitePath,
		PostgresDSN:   cfg.Store.PostgresDSN,
		RedisAddr:     cfg.Store.Redis.Addr,
		RedisPassword: cfg.Store.Redis.Password,
		RedisDB:       cfg.Store.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	return flags, store.NewProcessedSet(flags, cfg.Pod.ProcessedKey), nil
}

func newWorkspace(ctx context.Context, cfg config.Config, metrics *observability.Metrics) (*workspace, error) {
	httpClient, err := google.HTTPClient(ctx, google.AuthOptions{
		CredentialsFile: cfg.Google.CredentialsFile,
		Subject:         cfg.Google.Subject,
	})
	if err != nil {
		return nil, err
	}

	clients, err := google.NewClients(ctx, httpClient, cfg.Google.CalendarID, cfg.Email.From)
	if err != nil {
		return nil, err
	}
	clients.Export = google.NewExportClient(httpClient, cfg.Google.ExportBaseURL)

	resolver := content.NewResolver(clients.Docs, clients.Export, clients.Drive.Exporter())
	matcher := transcript.NewMatcher(clients.Drive, resolver, transcript.Options{
		SearchDays:   cfg.Pod.SearchDays,
		FolderID:     cfg.Pod.FolderID,
		Mode:         transcript.MatchMode(cfg.Pod.MatchMode),
		Patterns:     cfg.Pod.CustomPatterns,
		MaxDocuments: cfg.Pod.MaxDocuments,
	})
	if metrics != nil {
		resolver.WithObserver(metrics)
		matcher.WithObserver(metrics)
	}

	return &workspace{clients: clients, resolver: resolver, matcher: matcher}, nil
}

func newSender(cfg config.Config, clients *google.Clients) (email.Sender, error) {
	switch cfg.Email.Provider {
	case config.ProviderSMTP:
		from := cfg.Email.From
		if from == "" {
			from = cfg.Email.SMTP.Username
		}
		return email.NewSMTPSender(cfg.Email.SMTP.Host, cfg.Email.SMTP.Port, cfg.Email.SMTP.Username, cfg.Email.SMTP.Password, from)
	default:
		return clients.Gmail, nil
	}
}

// newApp wires the pipeline. In dry-run mode document writes go to memory,
// email is logged instead of sent and meetings are not marked processed.
func newApp(ctx context.Context, cfg config.Config, dryRun bool) (*app, error) {
	registry, metrics := newRegistry()

	ws, err := newWorkspace(ctx, cfg, metrics)
	if err != nil {
		return nil, err
	}

	summarizer, err := llm.NewClient(ctx, llm.Options{
		APIKey:          cfg.AI.Gemini.APIKey,
		Model:           cfg.AI.Gemini.Model,
		MaxOutputTokens: cfg.AI.Gemini.MaxOutputTokens,
		Temperature:     cfg.AI.Gemini.Temperature,
		Timeout:         cfg.GeminiTimeout(),
	})
	if err != nil {
		return nil, err
	}

	flags, processed, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var (
		writer docs.Writer = ws.clients.Docs
		marker pipeline.ProcessedMarker = processed
		sender email.Sender
	)
	if dryRun {
		logger.Warn("Dry run: documents are not modified, email is not sent and meetings are not marked processed")
		writer = docs.NewMemory()
		sender = &email.LogSender{}
		marker = dryRunMarker{}
	} else {
		sender, err = newSender(cfg, ws.clients)
		if err != nil {
			flags.Close()
			return nil, err
		}
	}

	discoverer := discovery.NewDiscoverer(ws.clients.Calendar, ws.matcher, processed, discovery.Options{
		LookbackDays:  cfg.Pod.LookbackDays,
		MeetingTitles: cfg.Pod.MeetingTitles,
		Keywords:      cfg.Pod.Keywords,
	}).WithObserver(metrics)

	proc := processor.NewProcessor(summarizer, ws.clients.Docs, writer, sender, processor.Options{
		ContextDocID:         cfg.Pod.ContextDocID,
		WeeklyDocID:          cfg.Pod.WeeklyDocID,
		ArchiveDocID:         cfg.Pod.ArchiveDocID,
		Section:              cfg.Pod.Section,
		MaxInputChars:        cfg.AI.Gemini.MaxInputChars,
		LeaderEmail:          cfg.Pod.LeaderEmail,
		EmailAllParticipants: cfg.Pod.EmailAllParticipants,
		SubjectPrefix:        cfg.Pod.SubjectPrefix,
		Location:             cfg.Location(),
	})

	orchestrator := pipeline.NewOrchestrator(discoverer, proc, marker, sender, cfg.Pod.LeaderEmail).WithObserver(metrics)

	return &app{
		cfg:          cfg,
		flags:        flags,
		processed:    processed,
		workspace:    ws,
		registry:     registry,
		metrics:      metrics,
		orchestrator: orchestrator,
	}, nil
}

type dryRunMarker struct{}

func (dryRunMarker) MarkProcessed(ctx context.Context, meetingID string) error {
	logger.Info("Meeting not marked processed (dry run)", "meeting_id", meetingID)
	return nil
}
