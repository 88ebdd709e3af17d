// Package server implements the TCP data listener: single-shot request
// framing, the bounded dispatch queue with its connection worker pool, and
// the request router. The listener deliberately speaks only the narrow
// HTTP/1.1 subset the clients need: no chunked transfer-encoding, no
// keep-alive, no pipelining, one request per connection.
package server
