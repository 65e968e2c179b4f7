// Package guardrails holds the single writer lease for training runs
package guardrails

import (
	"context"
	"errors"
	"time"

	"prsentinel/internal/platform/store"
	"prsentinel/internal/services/train/domain"

	"github.com/redis/go-redis/v9"
)

// ErrLeaseHeld signals another trainer already claimed the run
var ErrLeaseHeld = errors.New("train: run lease already held")

// Lease backends accepted by CORE_TRAIN_LEASE
const (
	BackendNone  = "none"
	BackendPG    = "pg"
	BackendRedis = "redis"
)

// redisKeyPrefix namespaces lease keys
const redisKeyPrefix = "prsentinel:train:lease:"

// NoLease runs do unconditionally. Callers accept that two trainers on one run
// register two models
func NoLease() domain.Lease {
	return func(ctx context.Context, _ string, do func(context.Context) error) error {
		return do(ctx)
	}
}

// MakePGLease claims runID in train_run_leases and runs do if the insert won.
// A successful run keeps its claim so it trains at most once per database; a
// failed one deletes its row so the run can be retried
func MakePGLease(tx store.TxRunner, holder string) domain.Lease {
	return func(ctx context.Context, runID string, do func(context.Context) error) error {
		var claimed bool
		err := tx.Tx(ctx, func(q store.RowQuerier) error {
			won, err := store.Many(ctx, q, scanBool, `
				insert into train_run_leases (run_id, holder)
				values ($1, $2)
				on conflict (run_id) do nothing
				returning true
			`, runID, holder)
			claimed = len(won) > 0
			return err
		})
		if err != nil {
			return err
		}
		if !claimed {
			return ErrLeaseHeld
		}
		if err := do(ctx); err != nil {
			rctx := context.WithoutCancel(ctx)
			_ = tx.Tx(rctx, func(q store.RowQuerier) error {
				_, err := q.Exec(rctx, `delete from train_run_leases where run_id = $1 and holder = $2`, runID, holder)
				return err
			})
			return err
		}
		return nil
	}
}

func scanBool(r store.Row) (bool, error) {
	var b bool
	err := r.Scan(&b)
	return b, err
}

// MakeRedisLease claims runID with SET NX and a ttl. The key is deleted when do
// returns with an error so a failed run can be retried before the ttl lapses
func MakeRedisLease(rdb *redis.Client, ttl time.Duration, holder string) domain.Lease {
	return func(ctx context.Context, runID string, do func(context.Context) error) error {
		key := redisKeyPrefix + runID
		ok, err := rdb.SetNX(ctx, key, holder, ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return ErrLeaseHeld
		}
		if err := do(ctx); err != nil {
			_ = rdb.Del(context.WithoutCancel(ctx), key).Err()
			return err
		}
		return nil
	}
}
