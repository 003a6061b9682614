package observability

import (
	"context"
	"time"
)

// Provider bundles tracing, metrics and logging. slogobs implements it.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// --- TRACING ---

type Tracer interface {
	// StartSpan starts a span and returns a context carrying it.
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span is one timed unit of work: a pipeline run, a lookup, an HTTP
// request or an LLM call.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// Fail records err on span and marks it failed with description. A nil
// span is ignored.
func Fail(span Span, err error, description string) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
	}
	span.SetStatus(StatusError, description)
}

// Succeed marks span as successful. A nil span is ignored.
func Succeed(span Span, description string) {
	if span != nil {
		span.SetStatus(StatusOK, description)
	}
}

// --- METRICS ---

type Metrics interface {
	// Counter returns the counter registered under name, creating it on
	// first use.
	Counter(name string) Counter
	Histogram(name string) Histogram
}

type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// --- LOGGING ---

type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// --- ATTRIBUTES ---

// Attribute is a key-value pair attached to spans, metrics and log
// records. Keys come from semconv.go.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

func StringSlice(key string, value []string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error returns the error attribute. A nil error yields an empty message.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}

// CameraQuery returns the identity of a camera lookup: model name,
// manufacturer and alias, skipping the empty ones.
func CameraQuery(modelName, manufacturer, alias string) []Attribute {
	attrs := make([]Attribute, 0, 3)
	for _, a := range []Attribute{
		String(AttrCameraModel, modelName),
		String(AttrCameraManufacturer, manufacturer),
		String(AttrCameraAlias, alias),
	} {
		if a.Value != "" {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// ParseStatus tags a pipeline outcome status (success, partial_success,
// failure).
func ParseStatus(status string) Attribute {
	return String(AttrParseStatus, status)
}

// HTTPStatus tags a response status code.
func HTTPStatus(code int) Attribute {
	return Int(AttrHTTPStatusCode, code)
}
