package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/mirror/core/parse"
	"github.com/leofalp/mirror/internal/camera"
	"github.com/leofalp/mirror/internal/httpapi"
	"github.com/leofalp/mirror/internal/lookup"
	"github.com/leofalp/mirror/internal/mentor"
	"github.com/leofalp/mirror/providers/ai"
	"github.com/leofalp/mirror/providers/observability/slogobs"
)

const (
	cleanRecord     = `{"model_name": "EOS R6", "manufacturer": "Canon", "release_year": 2020}`
	truncatedRecord = `{"model_name": "EOS R6", "manufacturer": "Canon", "notable_reviews": [{"url": "https:`
	declaredError   = `{"error": {"message": "Camera model not found", "suggestions": ["Check the spelling"]}}`
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeExtractor struct {
	raw string
	err error
}

func (f *fakeExtractor) Extract(ctx context.Context, request ai.ChatRequest, schema parse.Schema) (parse.Outcome, *ai.ChatResponse, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return parse.ExtractContext(ctx, f.raw, schema), &ai.ChatResponse{Content: f.raw}, nil
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Get(ctx context.Context, modelName, manufacturer string) (*camera.Spec, error) {
	args := m.Called(ctx, modelName, manufacturer)
	spec, _ := args.Get(0).(*camera.Spec)
	return spec, args.Error(1)
}

func (m *mockStore) GetByAlias(ctx context.Context, alias string) (*camera.Spec, error) {
	args := m.Called(ctx, alias)
	spec, _ := args.Get(0).(*camera.Spec)
	return spec, args.Error(1)
}

func (m *mockStore) Upsert(ctx context.Context, spec *camera.Spec) error {
	return m.Called(ctx, spec).Error(0)
}

type fakeAdvisor struct {
	advice   string
	critique *mentor.Critique
	err      error
	got      mentor.Request
}

func (f *fakeAdvisor) Advise(ctx context.Context, req mentor.Request) (string, error) {
	f.got = req
	if f.err != nil {
		return "", f.err
	}
	if strings.TrimSpace(req.Query) == "" {
		return "", mentor.ErrEmptyQuery
	}
	return f.advice, nil
}

func (f *fakeAdvisor) Critique(ctx context.Context, imageURL, notes string) (*mentor.Critique, error) {
	if !strings.HasPrefix(imageURL, "https://") {
		return nil, mentor.ErrInvalidImageURL
	}
	return f.critique, f.err
}

func newLookup(t *testing.T, extractor lookup.Extractor, opts ...lookup.Option) *lookup.Service {
	t.Helper()
	service, err := lookup.New(extractor, opts...)
	require.NoError(t, err)
	return service
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

var errMissing = fmt.Errorf("test store: %w", camera.ErrNotFound)

// ---------------------------------------------------------------------------
// POST /api/llm-camera
// ---------------------------------------------------------------------------

func TestLLMCamera_Success(t *testing.T) {
	srv := httpapi.New(httpapi.WithLookup(newLookup(t, &fakeExtractor{raw: cleanRecord})))

	rec, body := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", `{"model_name": "EOS R6", "manufacturer": "Canon"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "EOS R6", body["model_name"])
	assert.Equal(t, float64(2020), body["release_year"])
	assert.Equal(t, false, body["needs_review"])
	assert.Equal(t, "llm", body["_source"])
	assert.NotContains(t, body, "_warning")

	// every schema field is present, nulls included
	for _, f := range camera.Schema.Fields {
		assert.Contains(t, body, f.Name)
	}
}

func TestLLMCamera_PartialSuccess(t *testing.T) {
	srv := httpapi.New(httpapi.WithLookup(newLookup(t, &fakeExtractor{raw: truncatedRecord})))

	rec, body := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", `{"model_name": "EOS R6", "manufacturer": "Canon"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["needs_review"])
	assert.NotEmpty(t, body["_warning"])
	assert.Equal(t, truncatedRecord, body["_raw"])
}

func TestLLMCamera_DeclaredError(t *testing.T) {
	srv := httpapi.New(httpapi.WithLookup(newLookup(t, &fakeExtractor{raw: declaredError})))

	rec, body := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", `{"model_name": "EOS R99", "manufacturer": "Canon"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "upstream_declared_error", body["kind"])
	declared, ok := body["error"].(map[string]any)
	require.True(t, ok, "declared error should be passed through as an object")
	assert.Equal(t, "Camera model not found", declared["message"])
	assert.Equal(t, declaredError, body["raw"])
}

func TestLLMCamera_MissingRequiredField(t *testing.T) {
	srv := httpapi.New(httpapi.WithLookup(newLookup(t, &fakeExtractor{raw: `{"model_name": "EOS R6"}`})))

	rec, body := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", `{"model_name": "EOS R6", "manufacturer": "Canon"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_required_field", body["kind"])
	assert.Equal(t, []any{"manufacturer"}, body["fields"])
}

func TestLLMCamera_Malformed(t *testing.T) {
	srv := httpapi.New(httpapi.WithLookup(newLookup(t, &fakeExtractor{raw: "I could not find that camera."})))

	rec, body := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", `{"model_name": "EOS R6", "manufacturer": "Canon"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "malformed_input", body["kind"])
}

func TestLLMCamera_BadRequests(t *testing.T) {
	srv := httpapi.New(httpapi.WithLookup(newLookup(t, &fakeExtractor{raw: cleanRecord})))

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "invalid json", body: `{"model_name": `, want: http.StatusBadRequest},
		{name: "incomplete query", body: `{"model_name": "EOS R6"}`, want: http.StatusBadRequest},
		{name: "empty query", body: `{}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestLLMCamera_BackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "deadline", err: fmt.Errorf("openai: %w", context.DeadlineExceeded), want: http.StatusGatewayTimeout},
		{name: "transport", err: errors.New("connection refused"), want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httpapi.New(httpapi.WithLookup(newLookup(t, &fakeExtractor{err: tt.err})))
			rec, _ := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", `{"model_name": "EOS R6", "manufacturer": "Canon"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLLMCamera_BodyTooLarge(t *testing.T) {
	srv := httpapi.New(
		httpapi.WithLookup(newLookup(t, &fakeExtractor{raw: cleanRecord})),
		httpapi.WithMaxBodyBytes(16),
	)
	rec, _ := do(t, srv.Handler(), http.MethodPost, "/api/llm-camera", `{"model_name": "EOS R6", "manufacturer": "Canon"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ---------------------------------------------------------------------------
// /api/camera
// ---------------------------------------------------------------------------

func TestGetCamera(t *testing.T) {
	year := 2020
	stored := &camera.Spec{ModelName: "EOS R6", Manufacturer: "Canon", Aliases: []string{"R6"}, ReleaseYear: &year}

	store := &mockStore{}
	store.On("Get", mock.Anything, "EOS R6", "Canon").Return(stored, nil)
	store.On("Get", mock.Anything, "EOS R99", "Canon").Return(nil, errMissing)
	store.On("GetByAlias", mock.Anything, "R6").Return(stored, nil)

	h := httpapi.New(httpapi.WithStore(store)).Handler()

	rec, body := do(t, h, http.MethodGet, "/api/camera?model_name=EOS+R6&manufacturer=Canon", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EOS R6", body["model_name"])
	assert.Equal(t, []any{"R6"}, body["aliases"])

	rec, _ = do(t, h, http.MethodGet, "/api/camera?alias=R6", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/camera?model_name=EOS+R99&manufacturer=Canon", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/camera?manufacturer=Canon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.AssertExpectations(t)
}

func TestPostCamera(t *testing.T) {
	store := &mockStore{}
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(spec *camera.Spec) bool {
		return spec.ModelName == "EOS R6" && spec.NeedsReview
	})).Return(nil).Once()

	h := httpapi.New(httpapi.WithStore(store)).Handler()

	rec, body := do(t, h, http.MethodPost, "/api/camera", "```json\n"+truncatedRecord)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["needs_review"])

	rec, body = do(t, h, http.MethodPost, "/api/camera", declaredError)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "upstream_declared_error", body["kind"])

	rec, _ = do(t, h, http.MethodPost, "/api/camera", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.AssertExpectations(t)
}

func TestCamera_NotConfigured(t *testing.T) {
	h := httpapi.New().Handler()

	for _, route := range []struct{ method, target string }{
		{http.MethodGet, "/api/camera?model_name=a&manufacturer=b"},
		{http.MethodPost, "/api/camera"},
		{http.MethodPost, "/api/llm-camera"},
		{http.MethodPost, "/api/photography"},
		{http.MethodPost, "/api/photography/critique"},
	} {
		rec, _ := do(t, h, route.method, route.target, "{}")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, route.target)
	}
}

// ---------------------------------------------------------------------------
// POST /api/extract
// ---------------------------------------------------------------------------

func TestExtract(t *testing.T) {
	h := httpapi.New().Handler()

	rec, body := do(t, h, http.MethodPost, "/api/extract", "Here you go:\n```json\n"+cleanRecord+"\n```")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	rec, body = do(t, h, http.MethodPost, "/api/extract", "no json at all")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "failure", body["status"])
	assert.Equal(t, "malformed_input", body["kind"])
}

// ---------------------------------------------------------------------------
// Mentor
// ---------------------------------------------------------------------------

func TestPhotography(t *testing.T) {
	advisor := &fakeAdvisor{advice: "Try a slower shutter speed."}
	h := httpapi.New(httpapi.WithMentor(advisor)).Handler()

	rec, body := do(t, h, http.MethodPost, "/api/photography", `{"query": "How do I blur water?", "user": {"nickname": "ada"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Try a slower shutter speed.", body["advice"])
	assert.Equal(t, "How do I blur water?", advisor.got.Query)

	rec, _ = do(t, h, http.MethodPost, "/api/photography", `{"query": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCritique(t *testing.T) {
	advisor := &fakeAdvisor{critique: &mentor.Critique{Summary: "Balanced frame"}}
	h := httpapi.New(httpapi.WithMentor(advisor)).Handler()

	rec, body := do(t, h, http.MethodPost, "/api/photography/critique", `{"image_url": "https://example.com/a.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Balanced frame", body["summary"])

	rec, _ = do(t, h, http.MethodPost, "/api/photography/critique", `{"image_url": "file:///etc/passwd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func TestCORSPreflight(t *testing.T) {
	h := httpapi.New().Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/llm-camera", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTrace_RequestIDAndSpan(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(
		slogobs.WithFormat(slogobs.FormatJSON),
		slogobs.WithLevel(slog.LevelDebug),
		slogobs.WithOutput(&buf),
	)
	h := httpapi.New(httpapi.WithObserver(observer)).Handler()

	rec, _ := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	logs := buf.String()
	assert.Contains(t, logs, `"span":"http.request"`)
	assert.Contains(t, logs, `"http.route":"GET /healthz"`)
}
