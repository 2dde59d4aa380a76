package worker

import (
	"sync"
	"time"
)

// ProcessingError captures one document failure with enough context to
// reproduce and triage it.
type ProcessingError struct {
	DocumentID string    `json:"document_id"`
	Stage      string    `json:"stage"`
	Message    string    `json:"message"`
	Stack      string    `json:"stack,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorSink receives per-document processing errors.
type ErrorSink interface {
	Record(err ProcessingError)
}

// ErrorCollector is the default in-memory sink.
type ErrorCollector struct {
	mu     sync.Mutex
	errors []ProcessingError
}

// NewErrorCollector creates an empty collector.
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// Record appends an error (thread-safe).
func (c *ErrorCollector) Record(err ProcessingError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

// Errors returns a copy of everything recorded so far.
func (c *ErrorCollector) Errors() []ProcessingError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ProcessingError, len(c.errors))
	copy(out, c.errors)
	return out
}
