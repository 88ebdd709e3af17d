package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"tldrd/internal/job"
	"tldrd/internal/redact"
	"tldrd/internal/service"
	"tldrd/internal/task"
)

// pollResponse is the body of a job status poll.
type pollResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// submitResponse is the body of an asynchronous submission.
type submitResponse struct {
	JobID string `json:"job_id"`
}

// handleModels returns the backend's model names as a bare JSON array. A
// backend failure degrades to an empty array, never an error response.
func (rt *Router) handleModels(w io.Writer, logger *slog.Logger) {
	models := rt.service.ListModels(context.Background())
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, models, logger)
}

// handlePoll looks a job id up in the registry and serializes its current
// state. Accepts the id under either the "id" or "job_id" parameter.
func (rt *Router) handlePoll(w io.Writer, req *Request, logger *slog.Logger) {
	id := req.Query.Get("id")
	if id == "" {
		id = req.Query.Get("job_id")
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter", logger)
		return
	}

	state, ok := rt.registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, pollResponse{
			Status: string(job.StatusError),
			Error:  "not_found",
		}, logger)
		return
	}

	resp := pollResponse{Status: string(state.Status)}
	switch state.Status {
	case job.StatusDone:
		resp.Result = state.Result
	case job.StatusError:
		resp.Error = state.Err
	}
	writeJSON(w, http.StatusOK, resp, logger)
}

// handleSummarize is the synchronous path: the connection blocks for the
// full duration of transcript retrieval plus generation.
func (rt *Router) handleSummarize(w io.Writer, req *Request, logger *slog.Logger) {
	sr, ok := decodeSummarizeRequest(w, req, logger)
	if !ok {
		return
	}

	result, err := rt.service.Summarize(context.Background(), sr)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrMissingURL) {
			status = http.StatusBadRequest
		}
		logger.Warn("summarization failed", "error", redact.Error(err))
		writeError(w, status, err.Error(), logger)
		return
	}

	writeJSON(w, http.StatusOK, result, logger)
}

// handleSubmit is the asynchronous path: the job id is returned immediately
// and the work runs on the job pool. The Pending entry exists before the id
// is written back, so an immediate poll never reports not-found; if
// admission fails, the provisional entry is rolled back.
func (rt *Router) handleSubmit(w io.Writer, req *Request, transcriptOnly bool, logger *slog.Logger) {
	sr, ok := decodeSummarizeRequest(w, req, logger)
	if !ok {
		return
	}
	if transcriptOnly {
		sr.TranscriptOnly = true
	}

	id := rt.ids.NewID()
	if err := rt.registry.Create(id); err != nil {
		logger.Error("failed to register job", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register job", logger)
		return
	}

	t := task.NewSummarizeTask(id, sr, rt.service, rt.registry, rt.logger)
	if err := rt.jobs.Submit(t); err != nil {
		rt.registry.Delete(id)

		if errors.Is(err, task.ErrQueueFull) {
			logger.Warn("rejecting job, queue is full", "job_id", id)
			writeError(w, http.StatusServiceUnavailable, "server busy, retry later", logger)
			return
		}
		logger.Error("failed to submit job", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit job", logger)
		return
	}

	logger.Info("job submitted", "job_id", id, "transcript_only", sr.TranscriptOnly)
	writeJSON(w, http.StatusOK, submitResponse{JobID: id}, logger)
}

// decodeSummarizeRequest deserializes the request body, writing the 400
// itself on failure.
func decodeSummarizeRequest(w io.Writer, req *Request, logger *slog.Logger) (service.SummarizeRequest, bool) {
	var sr service.SummarizeRequest
	if err := json.Unmarshal(req.Body, &sr); err != nil {
		logger.Debug("rejecting malformed request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body", logger)
		return service.SummarizeRequest{}, false
	}
	return sr, true
}
