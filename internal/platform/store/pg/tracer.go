package pg

import (
	"context"
	"strings"
	"time"

	"prsentinel/internal/platform/logger"

	"github.com/jackc/pgx/v5"
)

// Tracer is a pgx.QueryTracer writing one line per statement. Failed and
// slow statements are always logged at warn, others only when All is set
type Tracer struct {
	Log  *logger.Logger
	All  bool
	Slow time.Duration
}

var _ pgx.QueryTracer = (*Tracer)(nil)

type traceKey struct{}

type traceStart struct {
	at  time.Time
	sql string
}

// TraceQueryStart implements pgx.QueryTracer
func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: time.Now(), sql: data.SQL})
}

// TraceQueryEnd implements pgx.QueryTracer
func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	st, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok || t.Log == nil {
		return
	}
	elapsed := time.Since(st.at)
	slow := t.Slow > 0 && elapsed >= t.Slow

	evt := t.Log.Debug()
	switch {
	case data.Err != nil || slow:
		evt = t.Log.Warn()
	case !t.All:
		return
	}
	evt.Str("component", "pg").
		Str("sql", compact(st.sql)).
		Int64("rows", data.CommandTag.RowsAffected()).
		Dur("elapsed", elapsed).
		Bool("slow", slow).
		Err(data.Err).
		Msg("pg query")
}

// compact folds whitespace runs so multi line SQL logs on one line
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }
