package httpapi

import (
	"context"
	"net/http"

	"github.com/leofalp/mirror/internal/camera"
	"github.com/leofalp/mirror/internal/lookup"
	"github.com/leofalp/mirror/internal/mentor"
	"github.com/leofalp/mirror/providers/observability"
)

// DefaultMaxBodyBytes bounds request bodies, model output included.
const DefaultMaxBodyBytes = 1 << 20

// Lookuper resolves camera queries. *lookup.Service implements it.
type Lookuper interface {
	Lookup(ctx context.Context, q camera.Query) (*lookup.Result, error)
}

// Advisor is the photography mentor. *mentor.Mentor implements it.
type Advisor interface {
	Advise(ctx context.Context, req mentor.Request) (string, error)
	Critique(ctx context.Context, imageURL, notes string) (*mentor.Critique, error)
}

// Server routes requests to the configured services. Routes whose service
// is not configured answer 503.
type Server struct {
	lookup       Lookuper
	store        lookup.Store
	mentor       Advisor
	observer     observability.Provider
	maxBodyBytes int64
}

type Option func(*Server)

func WithLookup(l Lookuper) Option {
	return func(s *Server) {
		s.lookup = l
	}
}

func WithStore(store lookup.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

func WithMentor(a Advisor) Option {
	return func(s *Server) {
		s.mentor = a
	}
}

func WithObserver(observer observability.Provider) Option {
	return func(s *Server) {
		s.observer = observer
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func New(opts ...Option) *Server {
	s := &Server{maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes wrapped with CORS and request tracing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/llm-camera", s.handleLLMCamera)
	mux.HandleFunc("GET /api/camera", s.handleGetCamera)
	mux.HandleFunc("POST /api/camera", s.handlePostCamera)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/photography", s.handlePhotography)
	mux.HandleFunc("POST /api/photography/critique", s.handleCritique)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	var h http.Handler = mux
	h = s.trace(h)
	return cors(h)
}
