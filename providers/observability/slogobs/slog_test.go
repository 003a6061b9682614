package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/mirror/providers/observability"
)

func newTestObserver(buf *bytes.Buffer, level slog.Level) *Observer {
	return New(WithFormat(FormatJSON), WithLevel(level), WithOutput(buf))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("line is not JSON: %v\n%s", err, line)
		}
		records = append(records, record)
	}
	return records
}

func TestObserver_SpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf, slog.LevelDebug)

	ctx, span := observer.StartSpan(context.Background(), observability.SpanCameraLookup,
		observability.String(observability.AttrCameraModel, "EOS R5"))
	if observability.SpanFromContext(ctx) != span {
		t.Fatal("span not attached to context")
	}
	span.SetAttributes(observability.String(observability.AttrLookupSource, "cache"))
	span.AddEvent("cache.hit")
	span.SetStatus(observability.StatusOK, "")
	span.End()

	records := decodeLines(t, &buf)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	end := records[2]
	if end["event"] != "span.end" || end["span"] != observability.SpanCameraLookup {
		t.Errorf("unexpected end record: %v", end)
	}
	if end[observability.AttrLookupSource] != "cache" {
		t.Errorf("expected accumulated attribute on end record: %v", end)
	}
	if end[observability.AttrStatus] != "ok" {
		t.Errorf("status = %v, want ok", end[observability.AttrStatus])
	}
	if _, ok := end[observability.AttrDuration]; !ok {
		t.Errorf("expected duration on end record: %v", end)
	}
}

func TestObserver_FailedSpanEndsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf, slog.LevelInfo)

	_, span := observer.StartSpan(context.Background(), observability.SpanParseExtract)
	span.RecordError(errors.New("missing required field"))
	span.SetStatus(observability.StatusError, "missing_required_field")
	span.End()

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected only the end record at INFO, got %d", len(records))
	}
	if records[0]["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", records[0]["level"])
	}
	if records[0]["error"] != "missing required field" {
		t.Errorf("error = %v", records[0]["error"])
	}
}

func TestObserver_CounterAccumulates(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf, slog.LevelDebug)

	c := observer.Counter(observability.MetricLookupCount)
	c.Add(context.Background(), 1)
	observer.Counter(observability.MetricLookupCount).Add(context.Background(), 2)

	if got := c.(*counter).Value(); got != 3 {
		t.Errorf("counter value = %d, want 3", got)
	}
	records := decodeLines(t, &buf)
	if records[len(records)-1]["value"] != float64(3) {
		t.Errorf("last record value = %v", records[len(records)-1]["value"])
	}
}

func TestObserver_Histogram(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf, slog.LevelDebug)

	observer.Histogram(observability.MetricClientRequestDuration).Record(context.Background(), 1.5)

	if !strings.Contains(buf.String(), `"value":1.5`) {
		t.Errorf("expected recorded value, got: %s", buf.String())
	}
}

func TestObserver_Logging(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf, LevelTrace)
	ctx := context.Background()

	observer.Trace(ctx, "t")
	observer.Debug(ctx, "d")
	observer.Info(ctx, "i", observability.Int("n", 1))
	observer.Warn(ctx, "w")
	observer.Error(ctx, "e")

	var levels []string
	for _, r := range decodeLines(t, &buf) {
		levels = append(levels, r["level"].(string))
	}
	want := "TRACE,DEBUG,INFO,WARN,ERROR"
	if got := strings.Join(levels, ","); got != want {
		t.Errorf("levels = %s, want %s", got, want)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	observer := New(WithLogger(logger))
	observer.Info(context.Background(), "through text handler")

	if observer.Logger() != logger {
		t.Error("expected the supplied logger")
	}
	if !strings.Contains(buf.String(), "msg=\"through text handler\"") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
