// @title         prsentinel API
// @version       0.1.0
// @description   Pull request anomaly scoring

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"prsentinel/internal/modkit/bootkit"
	"prsentinel/internal/platform/logger"
	phttp "prsentinel/internal/platform/net/http"

	"prsentinel/internal/services/api"
	scoringmod "prsentinel/internal/services/api/scoring/module"
	scoringsvc "prsentinel/internal/services/api/scoring/service"
	registrymod "prsentinel/internal/services/registry/module"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("api stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	env, err := bootkit.Open(ctx, "api", bootkit.Need{})
	if err != nil {
		return err
	}
	defer env.Close(context.Background())
	deps := env.Deps()
	apiCfg := env.Root.Prefix("CORE_API_")

	// a missing registry is not fatal: the service starts unready unless the model is a local file
	var loader scoringsvc.Loader
	if reg, err := registrymod.New(ctx, deps); err != nil {
		env.Log.Warn().Err(err).Msg("model registry unavailable")
	} else {
		defer reg.Close()
		loader = reg.Registry()
	}
	handle := scoringsvc.Load(ctx, loader, scoringmod.FromConfig(env.Root).Source())

	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Config:         apiCfg,
		Store:          env.Store,
		Logger:         env.Log,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		Scorer:         handle,
	})

	return srv.Run(ctx)
}
