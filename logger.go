package facet

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with facet-specific helpers so that every
// operation logs with the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, a text handler writing to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON lines to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable lines to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// LogReindex logs the outcome of building an index snapshot.
func (l *Logger) LogReindex(items, fields int, took time.Duration, err error) {
	if err != nil {
		l.Error("reindex failed", "items", items, "fields", fields, "error", err)
		return
	}
	l.Info("reindex completed", "items", items, "fields", fields, "took", took)
}

// LogSearch logs a finished search request.
func (l *Logger) LogSearch(res *SearchResult, err error) {
	if err != nil {
		l.Error("search failed", "error", err)
		return
	}
	l.Debug("search completed",
		"total", res.Pagination.Total,
		"page", res.Pagination.Page,
		"per_page", res.Pagination.PerPage,
		"took", res.Timings.Total,
		"facets", res.Timings.Facets,
		"search", res.Timings.Search,
		"sorting", res.Timings.Sorting,
	)
}

// LogAggregation logs a bucket listing request.
func (l *Logger) LogAggregation(name string, buckets int, err error) {
	if err != nil {
		l.Error("aggregation failed", "name", name, "error", err)
		return
	}
	l.Debug("aggregation completed", "name", name, "buckets", buckets)
}
