// Package pg opens the pgx pool the sql store runs on
package pg

import (
	"context"
	"fmt"
	"time"

	"prsentinel/internal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32

	// LogSQL logs every statement, otherwise only slow and failed ones
	LogSQL bool
	Slow   time.Duration

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// Open builds the pool and pings it until it answers, backing off from
// 150ms to 2s between attempts
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pcfg.ConnConfig.Tracer = &Tracer{Log: log, All: cfg.LogSQL, Slow: cfg.Slow}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}

	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	wait := 150 * time.Millisecond
	for i := 1; ; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err = pool.Ping(pctx)
		cancel()
		if err == nil {
			return pool, nil
		}
		if i >= attempts || ctx.Err() != nil {
			pool.Close()
			return nil, fmt.Errorf("pg: ping failed after %d attempts: %w", i, err)
		}
		log.Debug().Err(err).Int("attempt", i).Dur("retry_in", wait).Msg("pg not ready")
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		wait = min(wait*2, 2*time.Second)
	}
}
