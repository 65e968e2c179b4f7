package guardrails

import (
	"context"
	"errors"
	"testing"
	"time"

	"prsentinel/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

type fakeRows struct{ n int }

func (r *fakeRows) Next() bool             { r.n--; return r.n >= 0 }
func (r *fakeRows) Scan(dest ...any) error { return nil }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 {}

// leaseTable mimics insert ... on conflict do nothing returning true
type leaseTable struct {
	store.RowQuerier
	claimed map[string]string
	err     error
}

func (l *leaseTable) Query(_ context.Context, _ string, args ...any) (store.Rows, error) {
	if l.err != nil {
		return nil, l.err
	}
	run := args[0].(string)
	if _, ok := l.claimed[run]; ok {
		return &fakeRows{}, nil
	}
	l.claimed[run] = args[1].(string)
	return &fakeRows{n: 1}, nil
}

func (l *leaseTable) Exec(_ context.Context, _ string, args ...any) (store.CommandTag, error) {
	run, holder := args[0].(string), args[1].(string)
	if l.claimed[run] == holder {
		delete(l.claimed, run)
	}
	return nil, nil
}

func (l *leaseTable) Tx(_ context.Context, fn func(store.RowQuerier) error) error { return fn(l) }

func TestNoLease_AlwaysRuns(t *testing.T) {
	t.Parallel()

	runs := 0
	lease := NoLease()
	for range 2 {
		if err := lease(context.Background(), "r1", func(context.Context) error { runs++; return nil }); err != nil {
			t.Fatal(err)
		}
	}
	if runs != 2 {
		t.Fatalf("runs = %d", runs)
	}
}

func TestPGLease_SecondClaimIsHeld(t *testing.T) {
	t.Parallel()

	tbl := &leaseTable{claimed: map[string]string{}}
	lease := MakePGLease(tbl, "host-a")
	ctx := context.Background()

	runs := 0
	do := func(context.Context) error { runs++; return nil }
	if err := lease(ctx, "r1", do); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := lease(ctx, "r1", do); !errors.Is(err, ErrLeaseHeld) {
		t.Fatalf("second claim err = %v, want ErrLeaseHeld", err)
	}
	if err := lease(ctx, "r2", do); err != nil {
		t.Fatalf("other run: %v", err)
	}
	if runs != 2 || tbl.claimed["r1"] != "host-a" {
		t.Fatalf("runs = %d claimed = %v", runs, tbl.claimed)
	}
}

func TestPGLease_FailedRunReleasesClaim(t *testing.T) {
	t.Parallel()

	tbl := &leaseTable{claimed: map[string]string{}}
	lease := MakePGLease(tbl, "host-a")
	ctx := context.Background()

	boom := errors.New("registry unavailable")
	if err := lease(ctx, "r1", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the work error", err)
	}
	if _, ok := tbl.claimed["r1"]; ok {
		t.Fatalf("claim kept after a failed run")
	}
	ran := false
	if err := lease(ctx, "r1", func(context.Context) error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("retry after failure: ran=%v err=%v", ran, err)
	}
	if tbl.claimed["r1"] != "host-a" {
		t.Fatalf("successful retry should keep its claim: %v", tbl.claimed)
	}
}

func TestPGLease_QueryErrorSkipsWork(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	lease := MakePGLease(&leaseTable{err: boom}, "h")
	err := lease(context.Background(), "r1", func(context.Context) error {
		t.Fatalf("work ran without a lease")
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestRedisLease_UnreachableServer(t *testing.T) {
	t.Parallel()

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	lease := MakeRedisLease(rdb, time.Minute, "h")
	err := lease(context.Background(), "r1", func(context.Context) error {
		t.Fatalf("work ran without a lease")
		return nil
	})
	if err == nil {
		t.Fatalf("expected dial error")
	}
}
