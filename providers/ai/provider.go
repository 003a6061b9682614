package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned by providers when the backend answered
// without any text content.
var ErrEmptyResponse = errors.New("ai: empty response")

// Provider is the interface every LLM backend implements.
type Provider interface {
	// Name identifies the backend in logs and spans ("openai", "gemini").
	Name() string

	// SendMessage sends a chat request and returns the completed response.
	// It returns an error if the call fails, the context is cancelled, or
	// the response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}
