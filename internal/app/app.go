package app

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"

	"github.com/draftly/post-scheduler/internal/api"
	"github.com/draftly/post-scheduler/internal/dismiss"
	"github.com/draftly/post-scheduler/internal/metrics"
	"github.com/draftly/post-scheduler/internal/publisher"
	"github.com/draftly/post-scheduler/internal/publisher/publisherimpl"
	"github.com/draftly/post-scheduler/internal/ratelimit"
	repositories "github.com/draftly/post-scheduler/internal/repositories/fx"
	"github.com/draftly/post-scheduler/internal/scheduler"
	"github.com/draftly/post-scheduler/internal/scheduler/schedulerimpl"
	"github.com/draftly/post-scheduler/pkg/config"
	"github.com/draftly/post-scheduler/pkg/logger"
	"github.com/draftly/post-scheduler/pkg/pgx"

	_ "github.com/draftly/post-scheduler/internal/migrations"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		func() clockwork.Clock { return clockwork.NewRealClock() },
	),
	fx.Provide(
		fx.Annotate(
			schedulerimpl.New,
			fx.As(new(scheduler.Client)),
		),
		fx.Annotate(
			publisherimpl.New,
			fx.As(new(publisher.Client)),
		),
		newDismissRegistry,
		newRateLimiter,
		api.New,
	),
	metrics.Module,
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(api.Run),
	fx.Invoke(run),
)

func newDismissRegistry(lc fx.Lifecycle, log logger.Logger, clock clockwork.Clock, cfg *config.Config) *dismiss.Registry {
	registry := dismiss.NewRegistry(log, clock, time.Duration(cfg.Dismiss.UndoSeconds)*time.Second)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			registry.Shutdown()
			return nil
		},
	})

	return registry
}

func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	return ratelimit.NewInMemoryLimiter(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.PerSecs)*time.Second,
		cfg.RateLimit.Burst,
	)
}

func migrate(cfg *config.Config, log logger.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, "."); err != nil {
		return err
	}

	log.Info("Migrations applied")
	return nil
}

func run(lc fx.Lifecycle, log logger.Logger, pubClient publisher.Client) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := pubClient.Start(ctx); err != nil {
				log.Error("Failed to start publisher", "error", err)
				cancel()
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
