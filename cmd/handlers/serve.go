package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"podbrief/internal/logger"
	"podbrief/internal/scheduler"
	"podbrief/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for the scheduler and trigger server
func NewServeCmd() *cobra.Command {
	var (
		port       int
		host       string
		noSchedule bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daily schedule and the HTTP trigger",
		Long: `Start the podbrief service.

The service provides:
  • a daily run at schedule.daily_hour in pod.timezone
  • POST /api/run to trigger a run (bearer token from server.trigger_token)
  • GET /api/status with the last run result
  • GET /health and GET /metrics

Runs never overlap; a trigger during an active run is rejected.

Examples:
  # Start on the configured port
  podbrief serve

  # Only the HTTP trigger, on port 3000
  podbrief serve --port 3000 --no-schedule`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, noSchedule)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "disable the daily schedule")

	return cmd
}

func runServe(ctx context.Context, port int, host string, noSchedule bool) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.orchestrator, a.MetricsHandler(), serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		serverErrors <- srv.Start()
	}()

	if cfg.Schedule.Enabled && !noSchedule {
		daily := scheduler.NewDaily(a.orchestrator, cfg.Schedule.DailyHour, cfg.Location())
		go func() {
			if err := daily.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Scheduler stopped", err)
			}
		}()
	} else {
		logger.Info("Daily schedule disabled")
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Server shutdown initiated", "signal", sig.String())
		cancel()

		shutdownCtx, stop := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer stop()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", err)
			return err
		}
		logger.Info("Server stopped successfully")
	}

	return nil
}
