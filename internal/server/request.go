package server

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedRequest covers an unparseable request line or header.
var ErrMalformedRequest = errors.New("malformed request")

// headerField preserves the order headers arrived in, so lookups can honor
// the first-match rule.
type headerField struct {
	name  string
	value string
}

// Request is one framed request: the parsed head plus the complete body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Proto  string
	Body   []byte

	fields []headerField
}

// Header returns the value of the first header matching name,
// case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, f := range r.fields {
		if strings.EqualFold(f.name, name) {
			return f.value, true
		}
	}
	return "", false
}

// parseHead parses the request line and header fields from the header block
// (terminator included).
func parseHead(head []byte) (*Request, error) {
	lines := strings.Split(string(head), "\r\n")
	if len(lines) == 0 {
		return nil, ErrMalformedRequest
	}

	parts := strings.SplitN(lines[0], " ", 3)
	if len(parts) != 3 {
		return nil, ErrMalformedRequest
	}

	target := parts[1]
	path := target
	query := url.Values{}
	if rawPath, rawQuery, found := strings.Cut(target, "?"); found {
		path = rawPath
		// Best effort: an undecodable query string degrades to whatever
		// ParseQuery salvaged rather than failing the request.
		query, _ = url.ParseQuery(rawQuery)
	}

	req := &Request{
		Method: parts[0],
		Path:   path,
		Query:  query,
		Proto:  parts[2],
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, ErrMalformedRequest
		}
		req.fields = append(req.fields, headerField{
			name:  strings.TrimSpace(name),
			value: strings.TrimSpace(value),
		})
	}

	return req, nil
}

// contentLength extracts the declared body length. The bool reports whether
// the header was present at all.
func contentLength(req *Request) (int, bool, error) {
	raw, ok := req.Header("Content-Length")
	if !ok {
		return 0, false, nil
	}
	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		return 0, true, ErrMalformedRequest
	}
	return length, true, nil
}
