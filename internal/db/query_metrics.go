package db

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/hooksig/internal/db/queries"
	"github.com/fr0stylo/hooksig/internal/observability"
)

const maxSamplesPerQuery = 512

// QueryLatency is a rolling latency summary for one named query.
type QueryLatency struct {
	Name  string
	Count int
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// QueryLatencyStats returns per-query latency, slowest p95 first.
func (c *Database) QueryLatencyStats() []QueryLatency {
	if c == nil || c.tracker == nil {
		return nil
	}
	return c.tracker.snapshot()
}

type queryLatencyTracker struct {
	mu        sync.Mutex
	samples   map[string][]time.Duration
	histogram metric.Float64Histogram
}

func newQueryLatencyTracker() *queryLatencyTracker {
	histogram, _ := otel.Meter("github.com/fr0stylo/hooksig/internal/db").Float64Histogram(
		"hooksig.db.query.duration",
		metric.WithUnit("ms"),
	)
	return &queryLatencyTracker{samples: make(map[string][]time.Duration), histogram: histogram}
}

func (t *queryLatencyTracker) observe(ctx context.Context, name, operation string, duration time.Duration) {
	if t == nil {
		return
	}
	if t.histogram != nil {
		t.histogram.Record(ctx, float64(duration)/float64(time.Millisecond), metric.WithAttributes(
			attribute.String("db.query_name", name),
			attribute.String("db.operation", operation),
		))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	window := append(t.samples[name], duration)
	if len(window) > maxSamplesPerQuery {
		window = window[len(window)-maxSamplesPerQuery:]
	}
	t.samples[name] = window
}

func (t *queryLatencyTracker) snapshot() []QueryLatency {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make([]QueryLatency, 0, len(t.samples))
	for name, durations := range t.samples {
		if len(durations) == 0 {
			continue
		}
		sorted := slices.Clone(durations)
		slices.Sort(sorted)
		last := len(sorted) - 1
		stats = append(stats, QueryLatency{
			Name:  name,
			Count: len(sorted),
			P50:   sorted[last/2],
			P95:   sorted[last*95/100],
			Max:   sorted[last],
		})
	}

	slices.SortFunc(stats, func(a, b QueryLatency) int {
		if a.P95 != b.P95 {
			if a.P95 > b.P95 {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return stats
}

// instrumentedDBTX traces and times every statement issued through the query set.
type instrumentedDBTX struct {
	inner   queries.DBTX
	tracker *queryLatencyTracker
}

func newInstrumentedDBTX(inner queries.DBTX, tracker *queryLatencyTracker) queries.DBTX {
	if tracker == nil {
		return inner
	}
	return &instrumentedDBTX{inner: inner, tracker: tracker}
}

func (d *instrumentedDBTX) start(ctx context.Context, query, operation string) (context.Context, func(error)) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, name, operation)
	began := time.Now()
	return ctx, func(err error) {
		d.tracker.observe(ctx, name, operation, time.Since(began))
		span.RecordError(err)
		span.End()
	}
}

func (d *instrumentedDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, done := d.start(ctx, query, "exec")
	result, err := d.inner.ExecContext(ctx, query, args...)
	done(err)
	return result, err
}

func (d *instrumentedDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	ctx, done := d.start(ctx, query, "prepare")
	stmt, err := d.inner.PrepareContext(ctx, query)
	done(err)
	return stmt, err
}

func (d *instrumentedDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, done := d.start(ctx, query, "query")
	rows, err := d.inner.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext defers its error to Scan, so the span only covers dispatch.
func (d *instrumentedDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, done := d.start(ctx, query, "query_row")
	row := d.inner.QueryRowContext(ctx, query, args...)
	done(nil)
	return row
}

// queryName reads the "-- name: X :kind" annotation heading each statement.
func queryName(query string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	fields := strings.Fields(strings.TrimSpace(first))
	if len(fields) < 3 || fields[0] != "--" || fields[1] != "name:" {
		return "unknown"
	}
	return fields[2]
}
