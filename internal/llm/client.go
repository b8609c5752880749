package llm

import (
	"context"
	"fmt"
)

// Message is the wire shape sent to the chat-completion endpoint.
// Roles are plain strings here; the app layer owns the typed enum.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one chat-completion call. When SystemPrompt is set it is
// prepended as a leading system message before Messages.
type Request struct {
	Messages     []Message
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Stream yields response fragments in production order. Recv returns io.EOF
// when the fragment sequence is exhausted; any other error ends the stream
// with whatever was consumed so far. A Stream serves exactly one request.
type Stream interface {
	Recv() (string, error)
}

// Client is the remote model service boundary.
type Client interface {
	// Complete performs a synchronous request and returns the full reply.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream performs a streaming request.
	Stream(ctx context.Context, req Request) (Stream, error)
	// ValidateConnection probes the endpoint with a minimal request.
	// It never returns an error; failures report false.
	ValidateConnection(ctx context.Context) bool
}

// ServiceError wraps any transport- or protocol-level failure from the
// remote model service.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("model service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func serviceErr(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Err: fmt.Errorf(format, args...)}
}
