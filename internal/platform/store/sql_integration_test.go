//go:build integration_pg

package store_test

import (
	"context"
	"errors"
	"testing"

	"prsentinel/internal/platform/store"
	"prsentinel/internal/platform/store/pgtest"
)

func TestSQLStore_TxCommitAndRollback(t *testing.T) {
	_, db := pgtest.Migrated(t)
	ctx := context.Background()

	if _, err := db.Exec(ctx, `create table probe (id int primary key)`); err != nil {
		t.Fatal(err)
	}

	err := db.Tx(ctx, func(q store.RowQuerier) error {
		_, err := q.Exec(ctx, `insert into probe values (1)`)
		return err
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	boom := errors.New("boom")
	err = db.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, `insert into probe values (2)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("rollback err = %v", err)
	}

	ids, err := store.Many(ctx, db, func(r store.Row) (int, error) {
		var id int
		err := r.Scan(&id)
		return id, err
	}, `select id from probe order by id`)
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("ids = %v err = %v", ids, err)
	}

	if p, ok := db.(store.Pinger); !ok || p.Ping(ctx) != nil {
		t.Fatalf("sql store should ping")
	}
}
