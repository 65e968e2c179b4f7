// Package bootkit opens the shared process dependencies every binary starts from
package bootkit

import (
	"context"

	"prsentinel/internal/modkit"
	"prsentinel/internal/platform/blob"
	"prsentinel/internal/platform/config"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/platform/store"
)

// Need lists the backends a binary cannot run without. Everything else is opened when configured
type Need struct {
	PG   bool
	Blob bool
}

// Env is an opened set of backends
type Env struct {
	Root  config.Conf
	Store *store.Store
	Blob  blob.Store
	Log   *logger.Logger
}

// openStore and openBlob are seams for tests
var (
	openStore = store.Open
	openBlob  = blob.Open
)

// Open loads .env, opens every configured backend for role and checks need
func Open(ctx context.Context, role string, need Need) (*Env, error) {
	config.LoadDotenv()
	root := config.New()
	l := logger.Named(role)

	st, err := openStore(ctx, store.FromEnv(root, role), store.WithLogger(*l))
	if err != nil {
		return nil, err
	}
	e := &Env{Root: root, Store: st, Log: l}

	if need.PG && st.PG == nil {
		e.Close(ctx)
		return nil, perr.FailedPreconditionf("%s: SERVICE_PGSQL_DBURL is required", role)
	}

	bcfg := blob.FromConfig(root)
	if bcfg.URL != "" {
		b, err := openBlob(ctx, bcfg)
		if err != nil {
			e.Close(ctx)
			return nil, err
		}
		e.Blob = b
	}
	if need.Blob && e.Blob == nil {
		e.Close(ctx)
		return nil, perr.FailedPreconditionf("%s: SERVICE_BLOB_URL is required", role)
	}
	return e, nil
}

// Deps projects the env onto module deps
func (e *Env) Deps() modkit.Deps {
	return modkit.Deps{
		Log:   *e.Log,
		Cfg:   e.Root,
		PG:    e.Store.PG,
		CH:    e.Store.CH,
		Redis: e.Store.Redis,
		Blob:  e.Blob,
	}
}

// Close releases every backend, logging failures
func (e *Env) Close(ctx context.Context) {
	if e.Blob != nil {
		if err := e.Blob.Close(); err != nil {
			e.Log.Error().Err(err).Msg("failed to close blob store")
		}
	}
	if e.Store != nil {
		if err := e.Store.Close(ctx); err != nil {
			e.Log.Error().Err(err).Msg("failed to close store")
		}
	}
}
