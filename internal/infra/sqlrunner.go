package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SQLExecutor defines the contract required by repositories for executing SQL queries.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// IsNoRows reports whether err signals an empty single-row result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var sqlTracer = otel.Tracer("sql-runner")

// DefaultSlowQuery is the duration above which statements are logged at warn level.
const DefaultSlowQuery = 500 * time.Millisecond

// SQLRunner executes marker-tagged statements against the pool. The marker
// line is stripped before execution and used to name the statement in logs
// and spans, so query text never reaches either.
type SQLRunner struct {
	Pool      *pgxpool.Pool
	Logger    zerolog.Logger
	SlowQuery time.Duration
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger, SlowQuery: DefaultSlowQuery}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (tag pgconn.CommandTag, err error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	ctx, span := r.start(ctx, "exec", marker)
	start := time.Now()
	defer func() {
		if err == nil {
			span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
		}
		r.finish(span, marker, "exec", start, err)
	}()
	return r.Pool.Exec(ctx, trimmed, args...)
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	ctx, span := r.start(ctx, "query_row", marker)
	row := r.Pool.QueryRow(ctx, trimmed, args...)
	return &tracedRow{row: row, runner: r, span: span, marker: marker, start: time.Now()}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	ctx, span := r.start(ctx, "query", marker)
	start := time.Now()
	rows, err := r.Pool.Query(ctx, trimmed, args...)
	if err != nil {
		r.finish(span, marker, "query", start, err)
		return nil, err
	}
	return &tracedRows{Rows: rows, runner: r, span: span, marker: marker, start: start}, nil
}

func (r *SQLRunner) start(ctx context.Context, op, marker string) (context.Context, trace.Span) {
	return sqlTracer.Start(ctx, "sql."+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "postgresql"), attribute.String("db.statement_id", marker)))
}

// finish logs the statement outcome and ends its span. Empty single-row
// results are not failures.
func (r *SQLRunner) finish(span trace.Span, marker, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	if IsNoRows(err) {
		err = nil
	}
	EndSpan(span, err)
	switch {
	case err != nil:
		r.Logger.Error().Err(err).Str("sql", marker).Str("op", op).Dur("elapsed", elapsed).Msg("statement failed")
	case r.SlowQuery > 0 && elapsed > r.SlowQuery:
		r.Logger.Warn().Str("sql", marker).Str("op", op).Dur("elapsed", elapsed).Msg("slow statement")
	default:
		r.Logger.Debug().Str("sql", marker).Str("op", op).Dur("elapsed", elapsed).Msg("statement ok")
	}
}

type tracedRow struct {
	row    pgx.Row
	runner *SQLRunner
	span   trace.Span
	marker string
	start  time.Time
}

func (t *tracedRow) Scan(dest ...any) error {
	err := t.row.Scan(dest...)
	t.runner.finish(t.span, t.marker, "query_row", t.start, err)
	return err
}

type tracedRows struct {
	pgx.Rows
	runner *SQLRunner
	span   trace.Span
	marker string
	start  time.Time
	closed bool
}

func (t *tracedRows) Close() {
	t.Rows.Close()
	if t.closed {
		return
	}
	t.closed = true
	t.runner.finish(t.span, t.marker, "query", t.start, t.Rows.Err())
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

// extractMarker splits a statement into its marker id and executable body.
func extractMarker(query string) (marker, body string, err error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", "", errors.New("sql: empty query")
	}
	markerLine, rest, _ := strings.Cut(trimmed, "\n")
	markerLine = strings.TrimSpace(markerLine)
	if !markerRegexp.MatchString(markerLine) {
		return "", "", errors.New("sql: marker missing or invalid")
	}
	return strings.TrimPrefix(markerLine, "--sql "), rest, nil
}

var _ SQLExecutor = (*SQLRunner)(nil)
