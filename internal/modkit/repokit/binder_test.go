package repokit

import (
	"context"
	"testing"

	"prsentinel/internal/platform/store"
)

type nopQ struct{ store.RowQuerier }

type countRepo struct {
	q Queryer
}

func (r countRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, "select count(*) from pull_requests").Scan(&n)
	return n, err
}

func TestBindFunc(t *testing.T) {
	t.Parallel()

	q := nopQ{}
	var b Binder[countRepo] = BindFunc[countRepo](func(q Queryer) countRepo { return countRepo{q: q} })

	got := b.Bind(q)
	if got.q != Queryer(q) {
		t.Fatalf("bound queryer = %#v", got.q)
	}
}
