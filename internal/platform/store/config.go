package store

import (
	"time"

	"prsentinel/internal/platform/config"
)

// Config says which backends to open
type Config struct {
	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures postgres
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse. Role is reported as client info
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// RedisConfig takes a redis:// or rediss:// url
type RedisConfig struct {
	Enabled bool
	URL     string
}

// FromEnv reads SERVICE_PGSQL_*, SERVICE_CLICKHOUSE_* and SERVICE_REDIS_*.
// A backend is enabled when its url is set
func FromEnv(root config.Conf, role string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	rd := root.Prefix("SERVICE_REDIS_")

	pgURL := pg.MayString("DBURL", "")
	chURL := ch.MayString("DBURL", "")
	rdURL := rd.MayString("URL", "")
	return Config{
		PG: PGConfig{
			Enabled:        pgURL != "",
			URL:            pgURL,
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH:  CHConfig{Enabled: chURL != "", URL: chURL, Role: role},
		RDS: RedisConfig{Enabled: rdURL != "", URL: rdURL},
	}
}
