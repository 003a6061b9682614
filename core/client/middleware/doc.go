// Package middleware provides the middlewares used around LLM calls. Each
// New* function returns a [client.Middleware] for [client.WithMiddleware].
//
//   - [NewTimeoutMiddleware] bounds each call with a deadline.
//   - [NewRetryMiddleware] retries transient transport failures (429, 5xx)
//     with exponential backoff and jitter.
//   - [NewLoggingMiddleware] writes slog entries around each call.
//
// Usage:
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(60*time.Second),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	        middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares run outermost-first, so a request travels
// Timeout -> Retry -> Logging -> Provider. The timeout therefore bounds all
// attempts together.
package middleware
