package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func trace(tr *Tracer, sql string, err error) {
	ctx := tr.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: sql})
	tr.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: err})
}

func TestTracer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)

	quiet := &Tracer{Log: &l}
	trace(quiet, "select 1", nil)
	if buf.Len() != 0 {
		t.Fatalf("quiet tracer logged a fast ok query: %s", buf.String())
	}

	trace(quiet, "insert into pull_requests\n\t values ($1)", errors.New("boom"))
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"sql":"insert into pull_requests values ($1)"`) {
		t.Fatalf("failed query line = %s", out)
	}

	buf.Reset()
	trace(&Tracer{Log: &l, All: true}, "select 1", nil)
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Fatalf("all tracer line = %s", buf.String())
	}

	buf.Reset()
	trace(&Tracer{Log: &l, Slow: time.Nanosecond}, "select pg_sleep(0)", nil)
	if !strings.Contains(buf.String(), `"slow":true`) {
		t.Fatalf("slow line = %s", buf.String())
	}

	// end without start is ignored
	(&Tracer{Log: &l, All: true}).TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
}

func TestOpen_ParseError(t *testing.T) {
	t.Parallel()

	l := zerolog.Nop()
	if _, err := Open(context.Background(), Config{URL: "postgres://%zz"}, &l); err == nil {
		t.Fatal("expected parse error")
	}
}
