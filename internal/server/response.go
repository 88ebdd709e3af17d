package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// errorBody is the standard error response payload.
type errorBody struct {
	Error string `json:"error"`
}

// writeResponse writes one complete response: status line, Content-Type,
// Content-Length, any extra header lines, Connection: close, and the body.
// The whole response is assembled first and written with a single Write so a
// mid-write failure never leaves a parseable partial response behind.
func writeResponse(w io.Writer, status int, contentType string, body []byte, extra ...string) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status))
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	for _, line := range extra {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString("Connection: close\r\n\r\n")
	b.Write(body)

	_, err := w.Write(b.Bytes())
	return err
}

// writeJSON serializes v and writes it as a JSON response. A serialization
// failure degrades to a 500; the client always gets a well-formed response.
func writeJSON(w io.Writer, status int, v any, logger *slog.Logger) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode response payload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode response", logger)
		return
	}
	if err := writeResponse(w, status, "application/json", payload); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w io.Writer, status int, message string, logger *slog.Logger) {
	payload, err := json.Marshal(errorBody{Error: message})
	if err != nil {
		// Unreachable for a plain string, but never send nothing.
		payload = []byte(`{"error":"internal server error"}`)
	}
	if err := writeResponse(w, status, "application/json", payload); err != nil {
		logger.Debug("failed to write error response", "error", err)
	}
}
