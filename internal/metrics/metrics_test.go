package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAccepted()
	c.RecordAccepted()
	c.RecordRejected()
	c.RecordJobSubmitted()
	c.RecordJobCompleted()
	c.RecordJobFailed()
	c.SetQueueDepth(7)
	c.ObserveBackendCall(1.5)

	assert.InDelta(t, 2, testutil.ToFloat64(c.connectionsAccepted), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.connectionsRejected), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.jobsSubmitted), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.jobsCompleted), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.jobsFailed), 1e-9)
	assert.InDelta(t, 7, testutil.ToFloat64(c.queueDepth), 1e-9)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordAccepted()
		c.RecordRejected()
		c.SetQueueDepth(1)
		c.RecordJobSubmitted()
		c.RecordJobCompleted()
		c.RecordJobFailed()
		c.ObserveBackendCall(0.1)
	})
}

func TestServer_Endpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAccepted()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer("127.0.0.1:0", reg, logger)

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tldrd_connections_accepted_total 1")
}
