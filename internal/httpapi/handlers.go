package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/leofalp/mirror/core/parse"
	"github.com/leofalp/mirror/internal/camera"
	"github.com/leofalp/mirror/internal/lookup"
	"github.com/leofalp/mirror/internal/mentor"
	"github.com/leofalp/mirror/internal/utils"
)

func (s *Server) handleLLMCamera(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		writeError(w, http.StatusServiceUnavailable, "camera lookup is not configured")
		return
	}
	var q camera.Query
	if !s.decodeJSON(w, r, &q) {
		return
	}

	result, err := s.lookup.Lookup(r.Context(), q)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	switch o := result.Outcome.(type) {
	case *parse.Failure:
		writeFailure(w, o)
	case *parse.PartialSuccess:
		writeRecord(w, result.Record, map[string]any{
			"_source":  result.Source,
			"_warning": o.Warning,
			"_raw":     o.Raw,
		})
	default:
		writeRecord(w, result.Record, map[string]any{"_source": result.Source})
	}
}

func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "camera store is not configured")
		return
	}
	params := r.URL.Query()
	q := camera.Query{
		ModelName:    params.Get("model_name"),
		Manufacturer: params.Get("manufacturer"),
		Alias:        params.Get("alias"),
	}.Normalize()
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		spec *camera.Spec
		err  error
	)
	if q.ByAlias() {
		spec, err = s.store.GetByAlias(r.Context(), q.Alias)
	} else {
		spec, err = s.store.Get(r.Context(), q.ModelName, q.Manufacturer)
	}
	switch {
	case errors.Is(err, camera.ErrNotFound):
		writeError(w, http.StatusNotFound, "camera not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeRecord(w, spec, nil)
	}
}

// handlePostCamera ingests model output produced elsewhere. The body goes
// through the same pipeline as a lookup before being stored.
func (s *Server) handlePostCamera(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "camera store is not configured")
		return
	}
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}

	outcome := parse.ExtractContext(r.Context(), raw, camera.Schema, s.parseOptions()...)
	spec, err := camera.FromOutcome(outcome)
	if err != nil {
		var failure *parse.Failure
		if errors.As(err, &failure) {
			writeFailureStatus(w, http.StatusBadRequest, failure)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.Upsert(r.Context(), spec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "needs_review": spec.NeedsReview})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, parse.ExtractContext(r.Context(), raw, camera.Schema, s.parseOptions()...))
}

func (s *Server) handlePhotography(w http.ResponseWriter, r *http.Request) {
	if s.mentor == nil {
		writeError(w, http.StatusServiceUnavailable, "mentor is not configured")
		return
	}
	var req mentor.Request
	if !s.decodeJSON(w, r, &req) {
		return
	}

	advice, err := s.mentor.Advise(r.Context(), req)
	switch {
	case errors.Is(err, mentor.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeBackendError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"advice": advice})
	}
}

func (s *Server) handleCritique(w http.ResponseWriter, r *http.Request) {
	if s.mentor == nil {
		writeError(w, http.StatusServiceUnavailable, "mentor is not configured")
		return
	}
	var req struct {
		ImageURL string `json:"image_url"`
		Notes    string `json:"notes"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	critique, err := s.mentor.Critique(r.Context(), req.ImageURL, req.Notes)
	switch {
	case errors.Is(err, mentor.ErrInvalidImageURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeBackendError(w, err)
	default:
		writeJSON(w, http.StatusOK, critique)
	}
}

func (s *Server) parseOptions() []parse.Option {
	if s.observer == nil {
		return nil
	}
	return []parse.Option{parse.WithObserver(s.observer)}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "could not read request body")
		}
		return "", false
	}
	if strings.TrimSpace(string(data)) == "" {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return "", false
	}
	return string(data), true
}

// writeRecord writes the record followed by the extra keys.
func writeRecord(w http.ResponseWriter, spec *camera.Spec, extra map[string]any) {
	record, err := spec.Record()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	record.Set("needs_review", spec.NeedsReview)
	for _, key := range []string{"_source", "_warning", "_raw"} {
		if value, ok := extra[key]; ok {
			record.Set(key, value)
		}
	}
	writeJSON(w, http.StatusOK, record)
}

func writeFailure(w http.ResponseWriter, failure *parse.Failure) {
	status := http.StatusBadRequest
	if failure.Kind == parse.KindMalformedInput {
		status = http.StatusUnprocessableEntity
	}
	writeFailureStatus(w, status, failure)
}

func writeFailureStatus(w http.ResponseWriter, status int, failure *parse.Failure) {
	body := map[string]any{
		"error": failure.Error(),
		"kind":  failure.Kind,
		"raw":   failure.Raw,
	}
	if failure.Declared != nil {
		body["error"] = failure.Declared
	}
	if len(failure.Fields) > 0 {
		body["fields"] = failure.Fields
	}
	writeJSON(w, status, body)
}

// writeBackendError maps service errors: invalid queries are 400, a
// deadline is 504 and anything else came from a dependency and is 502.
func writeBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, camera.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "model backend timed out")
	default:
		body := map[string]any{"error": err.Error()}
		if status := utils.StatusCode(err); status != 0 {
			body["upstream_status"] = status
		}
		writeJSON(w, http.StatusBadGateway, body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

var _ Lookuper = (*lookup.Service)(nil)
var _ Advisor = (*mentor.Mentor)(nil)
