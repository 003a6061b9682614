package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/leofalp/mirror/core/parse"
	"github.com/leofalp/mirror/internal/camera"
	"github.com/leofalp/mirror/providers/ai"
	"github.com/leofalp/mirror/providers/archive/s3archive"
	"github.com/leofalp/mirror/providers/observability"
)

const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 10 * time.Minute
)

// Source tells where a lookup was answered from.
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "store"
	SourceLLM   Source = "llm"
)

// Extractor asks a model for a record and runs the extraction pipeline on
// its answer. *client.Client implements it.
type Extractor interface {
	Extract(ctx context.Context, request ai.ChatRequest, schema parse.Schema) (parse.Outcome, *ai.ChatResponse, error)
}

// Store persists camera records. Misses are reported with an error
// matching camera.ErrNotFound.
type Store interface {
	Get(ctx context.Context, modelName, manufacturer string) (*camera.Spec, error)
	GetByAlias(ctx context.Context, alias string) (*camera.Spec, error)
	Upsert(ctx context.Context, spec *camera.Spec) error
}

// Archive keeps raw model output for review.
type Archive interface {
	Put(ctx context.Context, entry s3archive.Entry) (string, error)
}

// Result is the answer to one lookup.
type Result struct {
	// Outcome is the pipeline outcome when the model was asked, nil for
	// cache and store hits.
	Outcome parse.Outcome
	// Record is nil only when Outcome is a *parse.Failure.
	Record *camera.Spec
	Source Source
	// ArchiveKey is set when the raw model output was archived.
	ArchiveKey string
}

// Failure returns the pipeline failure, if any.
func (r *Result) Failure() *parse.Failure {
	if r == nil {
		return nil
	}
	failure, _ := r.Outcome.(*parse.Failure)
	return failure
}

type Service struct {
	extractor Extractor
	store     Store
	archive   Archive
	cache     *expirable.LRU[string, *camera.Spec]
	observer  observability.Provider
	model     string

	cacheSize int
	cacheTTL  time.Duration
}

type Option func(*Service)

// WithStore enables persistence. Without a store every cache miss asks
// the model.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithArchive enables archiving of partial and failed model output.
func WithArchive(archive Archive) Option {
	return func(s *Service) {
		s.archive = archive
	}
}

// WithCache sets the cache capacity and entry lifetime. A size of zero or
// less disables the cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		s.cacheSize = size
		s.cacheTTL = ttl
	}
}

func WithObserver(observer observability.Provider) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// WithModel overrides the client's default model for lookups.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

func New(extractor Extractor, opts ...Option) (*Service, error) {
	if extractor == nil {
		return nil, errors.New("lookup: extractor cannot be nil")
	}
	s := &Service{
		extractor: extractor,
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize > 0 {
		s.cache = expirable.NewLRU[string, *camera.Spec](s.cacheSize, nil, s.cacheTTL)
	}
	return s, nil
}

// Lookup resolves q. A nil error with a *parse.Failure outcome means the
// model answered but no record could be built; errors are reserved for
// invalid queries and store or transport failures.
func (s *Service) Lookup(ctx context.Context, q camera.Query) (*Result, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var span observability.Span
	if s.observer != nil {
		ctx, span = s.observer.StartSpan(ctx, observability.SpanCameraLookup,
			observability.CameraQuery(q.ModelName, q.Manufacturer, q.Alias)...)
		defer span.End()
	}

	result, err := s.lookup(ctx, q, span)
	if s.observer != nil {
		s.report(ctx, span, result, err)
	}
	return result, err
}

func (s *Service) lookup(ctx context.Context, q camera.Query, span observability.Span) (*Result, error) {
	key := q.Key()
	if s.cache != nil {
		if spec, ok := s.cache.Get(key); ok {
			if span != nil {
				span.AddEvent(observability.EventCacheHit)
			}
			return &Result{Record: spec, Source: SourceCache}, nil
		}
	}

	spec, err := s.fromStore(ctx, q)
	if err != nil {
		return nil, err
	}
	if spec != nil {
		s.remember(key, spec)
		return &Result{Record: spec, Source: SourceStore}, nil
	}

	return s.ask(ctx, q, key, span)
}

// fromStore returns nil without error on a miss.
func (s *Service) fromStore(ctx context.Context, q camera.Query) (*camera.Spec, error) {
	if s.store == nil {
		return nil, nil
	}
	if !q.ByAlias() {
		spec, err := s.store.Get(ctx, q.ModelName, q.Manufacturer)
		if err == nil {
			return spec, nil
		}
		if !errors.Is(err, camera.ErrNotFound) {
			return nil, fmt.Errorf("lookup: %w", err)
		}
	}
	if q.Alias == "" {
		return nil, nil
	}
	spec, err := s.store.GetByAlias(ctx, q.Alias)
	if err == nil {
		return spec, nil
	}
	if errors.Is(err, camera.ErrNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("lookup: %w", err)
}

func (s *Service) ask(ctx context.Context, q camera.Query, key string, span observability.Span) (*Result, error) {
	request := camera.Request(q)
	request.Model = s.model

	outcome, response, err := s.extractor.Extract(ctx, request, camera.Schema)
	if err != nil {
		return nil, fmt.Errorf("lookup: ask model: %w", err)
	}
	if response.Truncated() && s.observer != nil {
		s.observer.Warn(ctx, "Model output reached the token limit",
			observability.String(observability.AttrCameraModel, q.ModelName),
			observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		)
	}

	result := &Result{Outcome: outcome, Source: SourceLLM}
	if failure, ok := outcome.(*parse.Failure); ok {
		result.ArchiveKey = s.archiveOutcome(ctx, q, failure, span)
		return result, nil
	}

	spec, err := camera.FromOutcome(outcome)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	spec.AddAlias(q.Alias)
	result.Record = spec

	if spec.NeedsReview {
		result.ArchiveKey = s.archiveOutcome(ctx, q, outcome, span)
	}
	s.persist(ctx, spec, span)
	if !spec.NeedsReview {
		s.remember(key, spec)
	}
	return result, nil
}

// persist stores spec. A write failure is logged but does not fail the
// lookup: the record is still valid for the caller.
func (s *Service) persist(ctx context.Context, spec *camera.Spec, span observability.Span) {
	if s.store == nil {
		return
	}
	if err := s.store.Upsert(ctx, spec); err != nil {
		if s.observer != nil {
			s.observer.Error(ctx, "Failed to persist camera record",
				observability.String(observability.AttrCameraModel, spec.ModelName),
				observability.Error(err),
			)
		}
		return
	}
	if span != nil {
		span.AddEvent(observability.EventRecordPersisted,
			observability.Bool("needs_review", spec.NeedsReview),
		)
	}
}

// archiveOutcome returns the object key, or "" when nothing was archived.
func (s *Service) archiveOutcome(ctx context.Context, q camera.Query, outcome parse.Outcome, span observability.Span) string {
	if s.archive == nil {
		return ""
	}
	key, err := s.archive.Put(ctx, s3archive.EntryFromOutcome(q, outcome))
	if err != nil {
		if s.observer != nil {
			s.observer.Error(ctx, "Failed to archive model output",
				observability.ParseStatus(string(outcome.Status())),
				observability.Error(err),
			)
		}
		return ""
	}
	if span != nil {
		span.AddEvent(observability.EventResponseArchived,
			observability.String(observability.AttrArchiveKey, key),
		)
	}
	return key
}

func (s *Service) remember(key string, spec *camera.Spec) {
	if s.cache != nil {
		s.cache.Add(key, spec)
	}
}

func (s *Service) report(ctx context.Context, span observability.Span, result *Result, err error) {
	if err != nil {
		observability.Fail(span, err, err.Error())
		return
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrLookupSource, string(result.Source)),
	}
	if result.Outcome != nil {
		attrs = append(attrs, observability.ParseStatus(string(result.Outcome.Status())))
	}
	span.SetAttributes(attrs...)

	if failure := result.Failure(); failure != nil {
		observability.Fail(span, nil, string(failure.Kind))
	} else {
		observability.Succeed(span, "")
	}

	s.observer.Counter(observability.MetricLookupCount).Add(ctx, 1, attrs...)
}
