package store

import (
	"context"
	"errors"
	"testing"
)

type listRows struct {
	data   []int64
	i      int
	err    error
	closed bool
}

func (r *listRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *listRows) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.data[r.i-1]
	return nil
}
func (r *listRows) Err() error { return r.err }
func (r *listRows) Close()     { r.closed = true }

type listQ struct {
	RowQuerier
	rows *listRows
	err  error
}

func (q *listQ) Query(context.Context, string, ...any) (Rows, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func scanID(r Row) (int64, error) {
	var id int64
	err := r.Scan(&id)
	return id, err
}

func TestMany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("maps every row", func(t *testing.T) {
		rows := &listRows{data: []int64{7, 8, 9}}
		got, err := Many(ctx, &listQ{rows: rows}, scanID, "select pr_id from pull_requests")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 || got[0] != 7 || got[2] != 9 {
			t.Fatalf("got %v", got)
		}
		if !rows.closed {
			t.Fatalf("rows not closed")
		}
	})

	t.Run("empty is nil without error", func(t *testing.T) {
		got, err := Many(ctx, &listQ{rows: &listRows{}}, scanID, "q")
		if err != nil || got != nil {
			t.Fatalf("got %v err %v", got, err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		boom := errors.New("boom")
		if _, err := Many(ctx, &listQ{err: boom}, scanID, "q"); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("iterator error", func(t *testing.T) {
		boom := errors.New("conn reset")
		if _, err := Many(ctx, &listQ{rows: &listRows{err: boom}}, scanID, "q"); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("scan error stops", func(t *testing.T) {
		boom := errors.New("bad column")
		scan := func(Row) (int64, error) { return 0, boom }
		if _, err := Many(ctx, &listQ{rows: &listRows{data: []int64{1}}}, scan, "q"); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	})
}
