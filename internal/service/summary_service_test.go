package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tldrd/internal/generation"
)

type fakeTranscripts struct {
	transcript string
	title      string
	err        error
	calls      int
}

func (f *fakeTranscripts) FetchTranscript(_ context.Context, _, _ string) (string, string, error) {
	f.calls++
	return f.transcript, f.title, f.err
}

type fakeBackend struct {
	text   string
	err    error
	models []string
	// model received on the last Chat call
	lastModel string
	calls     int
}

func (f *fakeBackend) Chat(_ context.Context, model string, _ []generation.Message, _ generation.Options) (string, bool, error) {
	f.calls++
	f.lastModel = model
	return f.text, false, f.err
}

func (f *fakeBackend) ListModels(context.Context) []string { return f.models }

func newService(t *testing.T, transcripts *fakeTranscripts, backend *fakeBackend) *SummaryService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	summarizer := generation.NewSummarizer(backend, generation.Options{}, 2, logger)
	svc, err := NewSummaryService(transcripts, backend, summarizer, "default:model", "en", logger)
	require.NoError(t, err)
	return svc
}

func TestSummarize_FullPath(t *testing.T) {
	transcripts := &fakeTranscripts{transcript: "the transcript", title: "A Talk"}
	backend := &fakeBackend{text: "the summary"}
	svc := newService(t, transcripts, backend)

	result, err := svc.Summarize(context.Background(), SummarizeRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, "the summary", result.Summary)
	assert.Equal(t, "the transcript", result.Subtitles)
	assert.Equal(t, "A Talk", result.VideoName)
	assert.Equal(t, "default:model", backend.lastModel)
}

func TestSummarize_ModelOverride(t *testing.T) {
	svcBackend := &fakeBackend{text: "s"}
	svc := newService(t, &fakeTranscripts{transcript: "t", title: "v"}, svcBackend)

	_, err := svc.Summarize(context.Background(), SummarizeRequest{
		URL:   "https://youtu.be/dQw4w9WgXcQ",
		Model: "llama3:8b",
	})
	require.NoError(t, err)
	assert.Equal(t, "llama3:8b", svcBackend.lastModel)
}

func TestSummarize_DryRun(t *testing.T) {
	transcripts := &fakeTranscripts{}
	backend := &fakeBackend{}
	svc := newService(t, transcripts, backend)

	result, err := svc.Summarize(context.Background(), SummarizeRequest{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, "Dry Run", result.VideoName)
	assert.NotEmpty(t, result.Summary)
	// Collaborators are never touched.
	assert.Zero(t, transcripts.calls)
	assert.Zero(t, backend.calls)
}

func TestSummarize_TranscriptOnly(t *testing.T) {
	transcripts := &fakeTranscripts{transcript: "raw text", title: "T"}
	backend := &fakeBackend{}
	svc := newService(t, transcripts, backend)

	result, err := svc.Summarize(context.Background(), SummarizeRequest{
		URL:            "https://youtu.be/dQw4w9WgXcQ",
		TranscriptOnly: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "raw text", result.Summary)
	assert.Equal(t, "raw text", result.Subtitles)
	assert.Zero(t, backend.calls, "generation must be skipped")
}

func TestSummarize_MissingURL(t *testing.T) {
	svc := newService(t, &fakeTranscripts{}, &fakeBackend{})
	_, err := svc.Summarize(context.Background(), SummarizeRequest{URL: "   "})
	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestSummarize_TranscriptError(t *testing.T) {
	transcripts := &fakeTranscripts{err: errors.New("no captions")}
	svc := newService(t, transcripts, &fakeBackend{})

	_, err := svc.Summarize(context.Background(), SummarizeRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcript error")
}

func TestSummarize_GenerationError(t *testing.T) {
	backend := &fakeBackend{err: generation.ErrBackendUnavailable}
	svc := newService(t, &fakeTranscripts{transcript: "t", title: "v"}, backend)

	_, err := svc.Summarize(context.Background(), SummarizeRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
	assert.ErrorIs(t, err, generation.ErrBackendUnavailable)
}

func TestListModels(t *testing.T) {
	backend := &fakeBackend{models: []string{"a", "b"}}
	svc := newService(t, &fakeTranscripts{}, backend)
	assert.Equal(t, []string{"a", "b"}, svc.ListModels(context.Background()))
}

func TestNewSummaryService_Validation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := &fakeBackend{}
	summarizer := generation.NewSummarizer(backend, generation.Options{}, 0, logger)

	_, err := NewSummaryService(nil, backend, summarizer, "m", "en", logger)
	assert.Error(t, err)

	_, err = NewSummaryService(&fakeTranscripts{}, backend, summarizer, "", "en", logger)
	assert.Error(t, err)
}
