package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tldrd/internal/config"
	"tldrd/internal/metrics"
	"tldrd/internal/redact"
)

// Server owns the TCP listener, the accept loop, and the connection worker
// pool. It serves exactly one request per connection and always closes the
// connection after the response.
type Server struct {
	cfg       config.ServerConfig
	router    *Router
	pool      *connPool
	logger    *slog.Logger
	collector *metrics.Collector

	listener net.Listener
}

// New creates a Server around the given router. collector may be nil.
func New(cfg config.ServerConfig, router *Router, collector *metrics.Collector, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		router:    router,
		logger:    logger,
		collector: collector,
	}
	s.pool = newConnPool(cfg.QueueCapacity, s.handleConn, collector, logger)
	return s
}

// Start binds the listener, launches the worker pool, and begins accepting
// connections in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.pool.start(s.cfg.Workers)

	go s.acceptLoop()

	s.logger.Info("server listening",
		"addr", listener.Addr().String(),
		"workers", s.cfg.Workers,
		"queue_capacity", s.cfg.QueueCapacity)
	return nil
}

// Addr returns the bound listener address. Valid only after Start.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight connections
// to finish, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener != nil {
		_ = s.listener.Close()
	}

	drained := make(chan struct{})
	go func() {
		s.pool.close()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acceptLoop accepts connections and performs admission control. Rejections
// are written here directly so a saturated pool never sees the connection.
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("failed to accept connection", "error", redact.Error(err))
			continue
		}

		s.collector.RecordAccepted()

		// Deadlines bound per-connection I/O only, never backend call
		// duration. A stalled peer is disconnected rather than holding
		// a worker forever.
		now := time.Now()
		_ = conn.SetReadDeadline(now.Add(s.cfg.ReadTimeout))
		_ = conn.SetWriteDeadline(now.Add(s.cfg.WriteTimeout))

		if err := s.pool.dispatch(conn); err != nil {
			s.reject(conn, err)
		}
	}
}

// reject writes the admission failure response and closes the connection.
func (s *Server) reject(conn net.Conn, err error) {
	defer func() { _ = conn.Close() }()

	switch {
	case errors.Is(err, ErrPoolSaturated):
		s.collector.RecordRejected()
		s.logger.Warn("rejecting connection, dispatch queue is full",
			"remote_addr", conn.RemoteAddr().String())
		writeError(conn, http.StatusServiceUnavailable, "server busy, retry later", s.logger)
	default:
		s.logger.Error("rejecting connection, dispatch queue unavailable",
			"error", err)
		writeError(conn, http.StatusInternalServerError, "internal server error", s.logger)
	}
}

// handleConn processes exactly one request on the connection. Every exit
// path writes at most one response; no error escapes without a best-effort
// response first.
func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	logger := s.logger.With("trace_id", uuid.NewString())

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic while handling connection", "panic", rec)
			writeError(conn, http.StatusInternalServerError, "internal server error", logger)
		}
	}()

	req, err := ReadRequest(conn, Limits{
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
		MaxBodyBytes:   s.cfg.MaxBodyBytes,
	})
	if err != nil {
		s.writeFramingError(conn, err, logger)
		return
	}

	logger.Debug("handling request",
		"method", req.Method,
		"path", req.Path,
		"remote_addr", conn.RemoteAddr().String())

	s.router.Serve(conn, req, logger)
}

// writeFramingError maps a framing failure to a best-effort error response.
func (s *Server) writeFramingError(conn net.Conn, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, ErrConnectionClosed):
		// The peer is gone; nothing can be written.
		logger.Debug("connection closed before request was framed")
	case errors.Is(err, ErrHeaderTooLarge):
		writeError(conn, http.StatusRequestHeaderFieldsTooLarge, err.Error(), logger)
	case errors.Is(err, ErrBodyTooLarge):
		writeError(conn, http.StatusRequestEntityTooLarge, err.Error(), logger)
	case errors.Is(err, ErrMissingLength):
		writeError(conn, http.StatusLengthRequired, err.Error(), logger)
	case errors.Is(err, ErrMalformedRequest):
		writeError(conn, http.StatusBadRequest, err.Error(), logger)
	default:
		logger.Warn("failed to read request", "error", redact.Error(err))
		writeError(conn, http.StatusBadRequest, "failed to read request", logger)
	}
}
