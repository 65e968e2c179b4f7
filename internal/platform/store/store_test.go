package store

import (
	"context"
	"testing"

	"prsentinel/internal/platform/config"

	"github.com/rs/zerolog"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://localhost/prs")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "9")
	t.Setenv("SERVICE_REDIS_URL", "redis://localhost:6379/0")

	cfg := FromEnv(config.New(), "train")
	if !cfg.PG.Enabled || cfg.PG.MaxConns != 9 || cfg.PG.SlowQueryMs != 500 {
		t.Fatalf("pg = %+v", cfg.PG)
	}
	if cfg.CH.Enabled || cfg.CH.Role != "train" {
		t.Fatalf("ch = %+v", cfg.CH)
	}
	if !cfg.RDS.Enabled {
		t.Fatalf("redis disabled")
	}
}

func TestOpen_ClickhouseAndRedisDialLazily(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{
		CH:  CHConfig{Enabled: true, URL: "clickhouse://localhost:9000/default", Role: "test"},
		RDS: RedisConfig{Enabled: true, URL: "redis://localhost:6379/1"},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH == nil || s.Redis == nil {
		t.Fatalf("unexpected backends %+v", s)
	}
	if _, ok := s.CH.(Pinger); !ok {
		t.Fatalf("clickhouse should be pingable for readiness")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	cases := map[string]Config{
		"pg url":    {PG: PGConfig{Enabled: true, URL: "postgres://%zz"}},
		"redis url": {RDS: RedisConfig{Enabled: true, URL: "http://nope"}},
		"ch url":    {CH: CHConfig{Enabled: true, URL: "://"}},
	}
	for name, cfg := range cases {
		if _, err := Open(ctx, cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestWithLogger(t *testing.T) {
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.Nop()))
	if err != nil || s.PG != nil || s.CH != nil || s.Redis != nil {
		t.Fatalf("empty config: store=%+v err=%v", s, err)
	}
}
