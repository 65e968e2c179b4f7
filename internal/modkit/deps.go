// Package modkit provides module wiring and core deps
package modkit

import (
	"prsentinel/internal/modkit/repokit"
	"prsentinel/internal/platform/blob"
	"prsentinel/internal/platform/config"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	PG    repokit.TxRunner
	CH    store.Clickhouse
	Redis *redis.Client
	Blob  blob.Store
}
