package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tldrd/internal/config"
	"tldrd/internal/generation"
	"tldrd/internal/job"
	"tldrd/internal/metrics"
	"tldrd/internal/platform/gemini"
	"tldrd/internal/platform/logger"
	"tldrd/internal/platform/ollama"
	"tldrd/internal/platform/youtube"
	"tldrd/internal/server"
	"tldrd/internal/service"
	"tldrd/internal/task"
)

const (
	shutdownTimeout = 15 * time.Second
	reapInterval    = 5 * time.Minute
)

// application holds every long-lived component, wired once at startup.
type application struct {
	cfg    *config.Config
	logger *slog.Logger

	registry      *job.InMemoryRegistry
	runner        *task.Runner
	server        *server.Server
	metricsServer *metrics.Server
}

// newApplication loads configuration and builds the full dependency graph:
// config → logger → metrics → backend → summarizer → service → job pool →
// router → listener.
func newApplication(configPath string) (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("configuration loaded",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"backend", cfg.Backend.Provider,
		"model", cfg.Backend.DefaultModel)

	var (
		collector     *metrics.Collector
		metricsServer *metrics.Server
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		collector = metrics.NewCollector(registry)
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, registry, log)
	}

	backend, err := newBackend(cfg.Backend, log)
	if err != nil {
		return nil, err
	}
	if collector != nil {
		backend = &instrumentedBackend{ChatClient: backend, collector: collector}
	}

	summarizer := generation.NewSummarizer(backend, generation.Options{
		ContextWindow:    cfg.Backend.ContextWindow,
		MaxTokensPerTurn: cfg.Backend.MaxTokensPerTurn,
		Temperature:      cfg.Backend.Temperature,
		RepeatPenalty:    cfg.Backend.RepeatPenalty,
	}, cfg.Backend.MaxContinuations, log)

	svc, err := service.NewSummaryService(
		youtube.NewClient(log),
		backend,
		summarizer,
		cfg.Backend.DefaultModel,
		cfg.Backend.TranscriptLanguage,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary service: %w", err)
	}

	jobRegistry := job.NewInMemoryRegistry(log)
	runner := task.NewRunner(jobRegistry, task.RunnerConfig{
		WorkerCount: cfg.Jobs.Workers,
		QueueSize:   cfg.Jobs.QueueSize,
	}, collector, log)

	router := server.NewRouter(svc, jobRegistry, job.NewSequenceIDGenerator(), runner, log)
	srv := server.New(cfg.Server, router, collector, log)

	return &application{
		cfg:           cfg,
		logger:        log,
		registry:      jobRegistry,
		runner:        runner,
		server:        srv,
		metricsServer: metricsServer,
	}, nil
}

// newBackend selects the completion backend implementation.
func newBackend(cfg config.BackendConfig, log *slog.Logger) (generation.ChatClient, error) {
	switch cfg.Provider {
	case "gemini":
		client, err := gemini.NewClient(context.Background(), cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to build gemini client: %w", err)
		}
		return client, nil
	default:
		client, err := ollama.NewClient(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to build ollama client: %w", err)
		}
		return client, nil
	}
}

// run starts every component and blocks until a shutdown signal arrives.
func (a *application) run() error {
	a.registry.StartReaper(a.cfg.Jobs.Retention, reapInterval)
	a.runner.Start()

	if err := a.server.Start(); err != nil {
		return err
	}
	if a.metricsServer != nil {
		a.metricsServer.Start()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	a.logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warn("listener shutdown incomplete", "error", err)
	}

	// In-flight jobs run to completion; there is no cancellation.
	a.runner.Stop()
	a.registry.StopReaper()

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics listener shutdown incomplete", "error", err)
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

// instrumentedBackend records per-call latency around the completion
// backend.
type instrumentedBackend struct {
	generation.ChatClient
	collector *metrics.Collector
}

func (b *instrumentedBackend) Chat(
	ctx context.Context,
	model string,
	messages []generation.Message,
	opts generation.Options,
) (string, bool, error) {
	start := time.Now()
	text, truncated, err := b.ChatClient.Chat(ctx, model, messages, opts)
	b.collector.ObserveBackendCall(time.Since(start).Seconds())
	return text, truncated, err
}
