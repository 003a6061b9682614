// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans, counters and histograms become structured log records, which is
// enough for a single service writing to stdout. Output format and level
// default to MIRROR_LOG_FORMAT and MIRROR_LOG_LEVEL and can be overridden
// with [WithFormat], [WithLevel], [WithOutput], [WithColors] and
// [WithLogger].
package slogobs
