package server

import (
	"bytes"
	"errors"
	"io"
)

// Framing errors. All of them terminate the connection; the caller decides
// which ones still get a best-effort error response.
var (
	// ErrHeaderTooLarge means the header block exceeded the configured
	// limit before the terminator was seen.
	ErrHeaderTooLarge = errors.New("request header block too large")

	// ErrConnectionClosed means the peer closed the stream before a full
	// request was framed. No response can be written.
	ErrConnectionClosed = errors.New("connection closed before request was complete")

	// ErrMissingLength means a method that requires a body arrived without
	// a Content-Length header.
	ErrMissingLength = errors.New("missing Content-Length header")

	// ErrBodyTooLarge means the declared Content-Length exceeds the
	// configured limit. Detected before any body bytes beyond what the
	// header read already captured are consumed.
	ErrBodyTooLarge = errors.New("request body too large")
)

// Limits bounds how much of a request the framer is willing to buffer.
type Limits struct {
	MaxHeaderBytes int
	MaxBodyBytes   int
}

var headerTerminator = []byte("\r\n\r\n")

const readChunkSize = 1024

// ReadRequest frames exactly one request off the stream: it reads until the
// header terminator, parses the request line and headers, then reads the
// declared body. Bytes captured past the terminator during the header read
// are reused as the start of the body; only the remainder is read from the
// stream. This is deliberately a single-shot framer: no chunked
// transfer-encoding, no keep-alive, one request per connection.
func ReadRequest(r io.Reader, limits Limits) (*Request, error) {
	raw, bodyStart, err := readHeaderBlock(r, limits.MaxHeaderBytes)
	if err != nil {
		return nil, err
	}

	req, err := parseHead(raw[:bodyStart])
	if err != nil {
		return nil, err
	}

	length, declared, err := contentLength(req)
	if err != nil {
		return nil, err
	}
	if !declared {
		if req.Method == "POST" {
			return nil, ErrMissingLength
		}
		return req, nil
	}
	// Enforce the limit before reading anything further off the stream.
	if length > limits.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}

	captured := raw[bodyStart:]
	if len(captured) >= length {
		req.Body = captured[:length]
		return req, nil
	}

	body := make([]byte, length)
	copy(body, captured)
	if _, err := io.ReadFull(r, body[len(captured):]); err != nil {
		return nil, ErrConnectionClosed
	}
	req.Body = body
	return req, nil
}

// readHeaderBlock reads chunks into a growing buffer until the 4-byte header
// terminator appears, returning the buffer and the offset where the body
// begins. The buffer may contain body bytes past that offset.
func readHeaderBlock(r io.Reader, maxHeader int) ([]byte, int, error) {
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	for {
		if idx := bytes.Index(buf, headerTerminator); idx >= 0 {
			return buf, idx + len(headerTerminator), nil
		}
		if len(buf) > maxHeader {
			return nil, 0, ErrHeaderTooLarge
		}

		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, err
		}
		return nil, 0, ErrConnectionClosed
	}
}
