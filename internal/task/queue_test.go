package task

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id       string
	taskType string
	execFn   func(ctx context.Context) error
}

func (m *mockTask) ID() string   { return m.id }
func (m *mockTask) Type() string { return m.taskType }

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueue_EnqueueAndDrain(t *testing.T) {
	q := NewQueue(2, discardLogger())

	require.NoError(t, q.Enqueue(&mockTask{id: "a", taskType: "mock"}))
	require.NoError(t, q.Enqueue(&mockTask{id: "b", taskType: "mock"}))
	assert.Equal(t, 2, q.Len())

	got := <-q.GetChannel()
	assert.Equal(t, "a", got.ID(), "queue is FIFO")
}

func TestQueue_Full(t *testing.T) {
	q := NewQueue(1, discardLogger())

	require.NoError(t, q.Enqueue(&mockTask{id: "a", taskType: "mock"}))
	err := q.Enqueue(&mockTask{id: "b", taskType: "mock"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue(1, discardLogger())
	q.Close()

	err := q.Enqueue(&mockTask{id: "a", taskType: "mock"})
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing twice is safe.
	assert.NotPanics(t, q.Close)

	// Consumers see the closed channel.
	_, ok := <-q.GetChannel()
	assert.False(t, ok)
}
