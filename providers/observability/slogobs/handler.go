package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// Handler is a slog.Handler writing compact, pretty or JSON records.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	Level  slog.Leveler
	// Output defaults to os.Stdout.
	Output io.Writer
	// Colors is only honoured by compact and pretty output. It is switched
	// on automatically when Output is a terminal.
	Colors bool
}

// NewHandler returns a Handler for opts. A nil opts means compact INFO
// output on stdout.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		output: opts.Output,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
	}
	if h.output == nil {
		h.output = os.Stdout
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if !h.colors && h.format != FormatJSON {
		if f, ok := h.output.(*os.File); ok {
			h.colors = isTerminal(f)
		}
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := h.collect(r)

	var line []byte
	var err error
	switch h.format {
	case FormatJSON:
		line, err = h.formatJSON(r, attrs)
	case FormatPretty:
		line = h.formatPretty(r, attrs)
	default:
		line = h.formatCompact(r, attrs)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.output.Write(line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix(a.Key), Value: a.Value})
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *Handler) prefix(key string) string {
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	return key
}

// collect flattens handler and record attributes into one map. Record
// attributes win over handler attributes with the same key.
func (h *Handler) collect(r slog.Record) map[string]any {
	out := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		out[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[h.prefix(a.Key)] = a.Value.Resolve().Any()
		return true
	})
	return out
}

func (h *Handler) formatCompact(r slog.Record, attrs map[string]any) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, r.Level, "%5s")
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	if len(attrs) > 0 {
		encoded, err := json.Marshal(stringifyErrors(attrs))
		if err != nil {
			encoded = []byte(`{"log.error":"unencodable attributes"}`)
		}
		buf = append(buf, " -> "...)
		buf = append(buf, encoded...)
	}
	return append(buf, '\n')
}

func (h *Handler) formatPretty(r slog.Record, attrs map[string]any) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, r.Level, "%-5s")
	buf = append(buf, "  "...)
	buf = append(buf, r.Message...)
	buf = append(buf, '\n')

	keys := sortedKeys(attrs)
	for i, key := range keys {
		branch := "|- "
		if i == len(keys)-1 {
			branch = "`- "
		}
		buf = append(buf, "                    "...)
		buf = append(buf, branch...)
		buf = append(buf, key...)
		buf = append(buf, ": "...)
		buf = fmt.Appendf(buf, "%v", attrs[key])
		buf = append(buf, '\n')
	}
	return buf
}

func (h *Handler) formatJSON(r slog.Record, attrs map[string]any) ([]byte, error) {
	record := stringifyErrors(attrs)
	record["time"] = r.Time.Format("2006-01-02T15:04:05.000Z07:00")
	record["level"] = levelName(r.Level)
	record["msg"] = r.Message

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

func (h *Handler) appendLevel(buf []byte, level slog.Level, layout string) []byte {
	name := fmt.Sprintf(layout, levelName(level))
	if !h.colors {
		return append(buf, name...)
	}
	buf = append(buf, levelColor(level)...)
	buf = append(buf, name...)
	return append(buf, colorReset...)
}

// stringifyErrors copies attrs, replacing error values with their message
// since encoding/json renders most errors as {}.
func stringifyErrors(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs)+3)
	for k, v := range attrs {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func levelColor(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
