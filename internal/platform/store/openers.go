package store

import (
	"context"
	"fmt"
	"time"

	"prsentinel/internal/platform/logger"
	"prsentinel/internal/platform/store/ch"
	"prsentinel/internal/platform/store/pg"

	"github.com/redis/go-redis/v9"
)

func openPG(ctx context.Context, cfg PGConfig, log *logger.Logger) (TxRunner, error) {
	pool, err := pg.Open(ctx, pg.Config{
		URL:            cfg.URL,
		MaxConns:       cfg.MaxConns,
		LogSQL:         cfg.LogSQL,
		Slow:           time.Duration(cfg.SlowQueryMs) * time.Millisecond,
		ConnectRetries: cfg.ConnectRetries,
		PingTimeout:    cfg.PingTimeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return newSQLStore(pool), nil
}

func openCH(ctx context.Context, cfg CHConfig) (Clickhouse, error) {
	c, err := ch.Open(ctx, ch.Config{URL: cfg.URL, Role: cfg.Role})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// openRedis only parses, the first command dials
func openRedis(cfg RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	return redis.NewClient(opt), nil
}
