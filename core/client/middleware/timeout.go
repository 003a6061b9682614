package middleware

import (
	"context"
	"time"

	"github.com/leofalp/mirror/core/client"
	"github.com/leofalp/mirror/providers/ai"
)

// NewTimeoutMiddleware bounds each provider call with context.WithTimeout.
// A shorter deadline already on the caller's context wins.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
