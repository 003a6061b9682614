package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed. It wraps the last provider error, so both errors.Is checks work:
//
//	if errors.Is(err, middleware.ErrRetryExhausted) {
//	    // all retries failed
//	}
var ErrRetryExhausted = errors.New("mirror: all retry attempts exhausted")
