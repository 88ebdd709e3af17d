package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"tldrd/internal/job"
	"tldrd/internal/service"
	"tldrd/internal/task"
)

// SummaryAPI is what the routes need from the summary service.
type SummaryAPI interface {
	Summarize(ctx context.Context, req service.SummarizeRequest) (*service.SummarizeResult, error)
	ListModels(ctx context.Context) []string
}

// JobSubmitter admits tasks to the background job pool.
type JobSubmitter interface {
	Submit(t task.Task) error
}

// Router dispatches a framed request to the synchronous, asynchronous-submit,
// poll, or static code path.
type Router struct {
	service  SummaryAPI
	registry job.Registry
	ids      job.IDGenerator
	jobs     JobSubmitter
	assets   *assetSet
	logger   *slog.Logger
}

// NewRouter wires the route handlers to their collaborators.
func NewRouter(
	svc SummaryAPI,
	registry job.Registry,
	ids job.IDGenerator,
	jobs JobSubmitter,
	logger *slog.Logger,
) *Router {
	return &Router{
		service:  svc,
		registry: registry,
		ids:      ids,
		jobs:     jobs,
		assets:   newAssetSet(),
		logger:   logger,
	}
}

// Serve routes one request and writes exactly one response.
func (rt *Router) Serve(w io.Writer, req *Request, logger *slog.Logger) {
	switch req.Method {
	case "GET":
		if asset, ok := rt.assets.lookup(req.Path); ok {
			rt.serveAsset(w, req, asset, logger)
			return
		}
		switch req.Path {
		case "/api/models":
			rt.handleModels(w, logger)
			return
		case "/api/job":
			rt.handlePoll(w, req, logger)
			return
		}
	case "POST":
		switch req.Path {
		case "/api/summarize":
			rt.handleSummarize(w, req, logger)
			return
		case "/api/submit":
			rt.handleSubmit(w, req, false, logger)
			return
		case "/api/submit_script":
			rt.handleSubmit(w, req, true, logger)
			return
		}
	}

	writeError(w, http.StatusNotFound, "not found", logger)
}
