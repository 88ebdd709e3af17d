package youtube

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"no id", "https://www.youtube.com/", "", false},
		{"truncated id", "https://youtu.be/short", "", false},
		{"unrelated url", "https://example.com/video", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractVideoID(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectBestTrack(t *testing.T) {
	manual := captionTrack{BaseURL: "https://yt/captions?lang=en", LanguageCode: "en"}
	punctuated := captionTrack{BaseURL: "https://yt/captions?kind=asr&variant=punctuated", LanguageCode: "en"}
	plain := captionTrack{BaseURL: "https://yt/captions?kind=asr", LanguageCode: "en"}
	french := captionTrack{BaseURL: "https://yt/captions?lang=fr", LanguageCode: "fr"}

	t.Run("manual wins", func(t *testing.T) {
		got, ok := selectBestTrack([]captionTrack{plain, punctuated, manual}, "en")
		require.True(t, ok)
		assert.Equal(t, manual, got)
	})

	t.Run("punctuated asr beats plain asr", func(t *testing.T) {
		got, ok := selectBestTrack([]captionTrack{plain, punctuated}, "en")
		require.True(t, ok)
		assert.Equal(t, punctuated, got)
	})

	t.Run("plain asr as last resort", func(t *testing.T) {
		got, ok := selectBestTrack([]captionTrack{plain, french}, "en")
		require.True(t, ok)
		assert.Equal(t, plain, got)
	})

	t.Run("wrong language only", func(t *testing.T) {
		_, ok := selectBestTrack([]captionTrack{french}, "en")
		assert.False(t, ok)
	})
}

func TestFormatCaptionsURL(t *testing.T) {
	in := `https://yt/captions?v=x\u0026lang=en`
	assert.Equal(t, "https://yt/captions?v=x&lang=en&fmt=json3", formatCaptionsURL(in))
}

func TestJoinCaptions(t *testing.T) {
	var events captionEvents
	require.NoError(t, json.Unmarshal([]byte(`{
		"events": [
			{"segs": [{"utf8": "hello "}, {"utf8": "world"}]},
			{"other": "metadata event without segs"},
			{"segs": [{"utf8": "  "}]},
			{"segs": [{"utf8": "again"}]}
		]
	}`), &events))

	assert.Equal(t, "hello world again", joinCaptions(events))
}

func TestFetchTranscript(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// player is set after the server URL is known, because the caption
	// track URL must point back at the test server.
	newServer := func(player *string, captions string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/youtubei/v1/player":
				_, _ = w.Write([]byte(*player))
			case "/captions":
				_, _ = w.Write([]byte(captions))
			default:
				http.NotFound(w, r)
			}
		}))
	}

	t.Run("success", func(t *testing.T) {
		var player string
		srv := newServer(&player, `{"events":[{"segs":[{"utf8":"first"}]},{"segs":[{"utf8":"second"}]}]}`)
		defer srv.Close()

		player = `{
			"videoDetails": {"title": "A Video"},
			"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
				{"baseUrl": "` + srv.URL + `/captions?lang=en", "languageCode": "en"}
			]}}
		}`
		client := &Client{baseURL: srv.URL, httpClient: srv.Client(), logger: logger}

		transcript, title, err := client.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
		require.NoError(t, err)
		assert.Equal(t, "A Video", title)
		assert.Equal(t, "first second", transcript)
	})

	t.Run("invalid url", func(t *testing.T) {
		client := &Client{baseURL: "http://127.0.0.1:1", httpClient: http.DefaultClient, logger: logger}
		_, _, err := client.FetchTranscript(context.Background(), "https://example.com/", "en")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("blocked", func(t *testing.T) {
		player := `{}`
		srv := newServer(&player, "")
		defer srv.Close()

		client := &Client{baseURL: srv.URL, httpClient: srv.Client(), logger: logger}
		_, _, err := client.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
		assert.ErrorIs(t, err, ErrBlocked)
	})

	t.Run("no captions", func(t *testing.T) {
		player := `{"videoDetails": {"title": "T"}}`
		srv := newServer(&player, "")
		defer srv.Close()

		client := &Client{baseURL: srv.URL, httpClient: srv.Client(), logger: logger}
		_, _, err := client.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
		assert.ErrorIs(t, err, ErrNoCaptions)
	})

	t.Run("no track for language", func(t *testing.T) {
		player := `{
			"videoDetails": {"title": "T"},
			"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
				{"baseUrl": "https://yt/captions", "languageCode": "fr"}
			]}}
		}`
		srv := newServer(&player, "")
		defer srv.Close()

		client := &Client{baseURL: srv.URL, httpClient: srv.Client(), logger: logger}
		_, _, err := client.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
		assert.ErrorIs(t, err, ErrNoCaptions)
	})
}
