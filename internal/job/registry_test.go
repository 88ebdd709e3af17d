package job

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *InMemoryRegistry {
	return NewInMemoryRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Create("j1"))

	state, ok := r.Get("j1")
	require.True(t, ok)
	assert.Equal(t, StatusPending, state.Status)

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestRegistry_DuplicateCreate(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Create("j1"))
	assert.Error(t, r.Create("j1"))
}

func TestRegistry_CompleteIsTerminal(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Create("j1"))

	result := json.RawMessage(`{"summary":"s"}`)
	require.NoError(t, r.Complete("j1", result))

	state, ok := r.Get("j1")
	require.True(t, ok)
	assert.Equal(t, StatusDone, state.Status)
	assert.JSONEq(t, `{"summary":"s"}`, string(state.Result))
	assert.False(t, state.FinishedAt.IsZero())

	// No further writes are allowed, in either direction.
	assert.ErrorIs(t, r.Complete("j1", result), ErrTerminal)
	assert.ErrorIs(t, r.Fail("j1", "late failure"), ErrTerminal)

	// Repeated reads are stable.
	again, _ := r.Get("j1")
	assert.Equal(t, state, again)
}

func TestRegistry_FailIsTerminal(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Create("j1"))
	require.NoError(t, r.Fail("j1", "backend unreachable"))

	state, ok := r.Get("j1")
	require.True(t, ok)
	assert.Equal(t, StatusError, state.Status)
	assert.Equal(t, "backend unreachable", state.Err)

	assert.ErrorIs(t, r.Complete("j1", nil), ErrTerminal)
}

func TestRegistry_TransitionUnknownID(t *testing.T) {
	r := newTestRegistry()
	assert.ErrorIs(t, r.Complete("missing", nil), ErrNotFound)
	assert.ErrorIs(t, r.Fail("missing", "x"), ErrNotFound)
}

func TestRegistry_Delete(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Create("j1"))
	r.Delete("j1")

	_, ok := r.Get("j1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ConcurrentWriters(t *testing.T) {
	r := newTestRegistry()
	const n = 64

	ids := make([]string, n)
	gen := NewSequenceIDGenerator()
	for i := range ids {
		ids[i] = gen.NewID()
		require.NoError(t, r.Create(ids[i]))
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if i%2 == 0 {
				_ = r.Complete(id, json.RawMessage(`{}`))
			} else {
				_ = r.Fail(id, "err")
			}
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		state, ok := r.Get(id)
		require.True(t, ok)
		if i%2 == 0 {
			assert.Equal(t, StatusDone, state.Status)
		} else {
			assert.Equal(t, StatusError, state.Status)
		}
	}
}

func TestRegistry_ReaperRemovesOnlyExpiredTerminals(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Create("old-done"))
	require.NoError(t, r.Create("pending"))
	require.NoError(t, r.Complete("old-done", nil))

	// Backdate the terminal entry past the cutoff.
	r.mu.Lock()
	state := r.jobs["old-done"]
	state.FinishedAt = time.Now().Add(-2 * time.Hour)
	r.jobs["old-done"] = state
	r.mu.Unlock()

	r.reap(time.Hour)

	_, ok := r.Get("old-done")
	assert.False(t, ok, "expired terminal entry should be reaped")
	_, ok = r.Get("pending")
	assert.True(t, ok, "pending entries are never reaped")
}

func TestSequenceIDGenerator_Unique(t *testing.T) {
	gen := NewSequenceIDGenerator()

	const n = 200
	seen := make(map[string]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.NewID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "ids must never collide")
}
