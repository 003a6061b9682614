package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/mirror/internal/utils"
	"github.com/leofalp/mirror/providers/observability"
)

const requestIDHeader = "X-Request-ID"

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// trace assigns a request id and, with an observer, wraps the request in
// an http.request span.
func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		if s.observer == nil {
			next.ServeHTTP(w, r)
			return
		}

		timer := utils.NewTimer()
		ctx, span := s.observer.StartSpan(r.Context(), observability.SpanHTTPRequest,
			observability.String(observability.AttrHTTPMethod, r.Method),
			observability.String(observability.AttrHTTPURL, r.URL.Path),
			observability.String("http.request_id", requestID),
		)
		defer span.End()

		recorder := &statusRecorder{ResponseWriter: w}
		req := r.WithContext(observability.ContextWithSpan(ctx, span))
		next.ServeHTTP(recorder, req)
		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}

		span.SetAttributes(
			observability.String(observability.AttrHTTPRoute, req.Pattern),
			observability.HTTPStatus(recorder.status),
			observability.Int(observability.AttrHTTPResponseBodySize, recorder.bytes),
			observability.Duration("http.handler.duration", timer.Stop()),
		)
		if recorder.status >= http.StatusInternalServerError {
			observability.Fail(span, nil, http.StatusText(recorder.status))
		} else {
			observability.Succeed(span, "")
		}
	})
}
