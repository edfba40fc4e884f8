package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"podbrief/internal/core"
	"podbrief/internal/pipeline"
	"time"
)

// HealthResponse is returned by /health
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// RunResponse describes a run started or finished through the API
type RunResponse struct {
	Status     string `json:"status"`
	RunID      string `json:"run_id,omitempty"`
	Discovered int    `json:"discovered"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Duration   string `json:"duration,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StatusResponse is returned by /api/status
type StatusResponse struct {
	Running  bool         `json:"running"`
	LastRun  *RunResponse `json:"last_run,omitempty"`
	Finished *time.Time   `json:"finished_at,omitempty"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(serverStartTime).Round(time.Second).String(),
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.runner.Status()

	resp := StatusResponse{Running: status.Running}
	if status.LastRun != nil {
		last := toRunResponse("finished", *status.LastRun, status.LastErr)
		resp.LastRun = &last
		finished := status.Finished
		resp.Finished = &finished
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// handleRun handles POST /api/run. By default the run continues in the
// background and the handler answers 202; ?wait=true blocks until the run
// finishes and returns its result.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") == "true" {
		result, err := s.runner.TryRun(r.Context())
		if errors.Is(err, pipeline.ErrRunInProgress) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			s.respondJSON(w, http.StatusInternalServerError, toRunResponse("failed", result, err.Error()))
			return
		}
		s.respondJSON(w, http.StatusOK, toRunResponse("finished", result, ""))
		return
	}

	if s.runner.Status().Running {
		s.respondError(w, http.StatusConflict, pipeline.ErrRunInProgress.Error())
		return
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		s.runInBackground(s.baseCtx)
	}()

	s.respondJSON(w, http.StatusAccepted, RunResponse{Status: "started"})
}

func (s *Server) runInBackground(ctx context.Context) {
	result, err := s.runner.TryRun(ctx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.log.Warn().Msg("Triggered run skipped, a run is already in progress")
	case err != nil:
		s.log.Error().Err(err).Str("run_id", result.RunID).Msg("Triggered run failed")
	default:
		s.log.Info().Str("run_id", result.RunID).Int("succeeded", result.Succeeded).Int("failed", result.Failed).Msg("Triggered run finished")
	}
}

func toRunResponse(status string, result core.RunResult, errMsg string) RunResponse {
	return RunResponse{
		Status:     status,
		RunID:      result.RunID,
		Discovered: result.Discovered,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Duration:   result.Duration.Round(time.Millisecond).String(),
		Error:      errMsg,
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"status":  status,
			"message": message,
		},
	})
}
