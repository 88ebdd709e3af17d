// Package generation provides interfaces and implementations for interacting
// with external completion backends. It abstracts the details of backend API
// integration (Ollama, Gemini), allowing the application to summarize
// transcripts without coupling to a specific external service, and drives the
// multi-turn continuation loop when a backend truncates its output.
package generation
