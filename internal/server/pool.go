package server

import (
	"errors"
	"log/slog"
	"net"
	"sync"

	"tldrd/internal/metrics"
)

// Admission errors, handled entirely in the accept path.
var (
	// ErrPoolSaturated means the dispatch queue is at capacity.
	ErrPoolSaturated = errors.New("dispatch queue is full")

	// ErrPoolClosed means the queue was closed. Outside shutdown this is
	// an invariant violation.
	ErrPoolClosed = errors.New("dispatch queue is closed")
)

// connPool is the bounded dispatch queue plus its fixed set of workers. Each
// worker owns exactly one connection at a time, processing it to completion
// (response written, connection closed) before pulling the next.
type connPool struct {
	conns     chan net.Conn
	handle    func(net.Conn)
	wg        sync.WaitGroup
	logger    *slog.Logger
	collector *metrics.Collector

	mu     sync.Mutex
	closed bool
}

func newConnPool(capacity int, handle func(net.Conn), collector *metrics.Collector, logger *slog.Logger) *connPool {
	return &connPool{
		conns:     make(chan net.Conn, capacity),
		handle:    handle,
		logger:    logger,
		collector: collector,
	}
}

// start launches n long-lived workers.
func (p *connPool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// dispatch hands a connection to the pool without blocking. The accept loop
// must never wait on a full queue: backend slowness would otherwise stall
// acceptance of new connections.
func (p *connPool) dispatch(conn net.Conn) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.conns <- conn:
		p.collector.SetQueueDepth(len(p.conns))
		return nil
	default:
		return ErrPoolSaturated
	}
}

// close stops admission and waits for every in-flight connection to finish.
func (p *connPool) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.conns)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// worker drains the queue until the channel closes, which is the pool's
// shutdown signal. One connection's failure never stops the worker.
func (p *connPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting connection worker", "worker_id", id)

	for conn := range p.conns {
		p.collector.SetQueueDepth(len(p.conns))
		p.handle(conn)
	}

	p.logger.Debug("dispatch queue closed, stopping connection worker", "worker_id", id)
}
