package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"

	"github.com/draftly/post-scheduler/internal/dismiss"
	"github.com/draftly/post-scheduler/internal/metrics"
	"github.com/draftly/post-scheduler/internal/ratelimit"
	"github.com/draftly/post-scheduler/internal/repositories/post"
	"github.com/draftly/post-scheduler/internal/repositories/preference"
	"github.com/draftly/post-scheduler/internal/scheduler"
	"github.com/draftly/post-scheduler/pkg/config"
	"github.com/draftly/post-scheduler/pkg/logger"
)

type Opts struct {
	fx.In

	Scheduler scheduler.Client
	PostRepo  post.Repository
	PrefRepo  preference.Repository
	Dismisses *dismiss.Registry
	Metrics   *metrics.Collector
	Limiter   ratelimit.Limiter
	Logger    logger.Logger
	Config    *config.Config
}

// Server is the REST surface the scheduling front end talks to.
type Server struct {
	scheduler scheduler.Client
	postRepo  post.Repository
	prefRepo  preference.Repository
	dismisses *dismiss.Registry
	metrics   *metrics.Collector
	limiter   ratelimit.Limiter
	logger    logger.Logger
	config    *config.Config
}

func New(opts Opts) *Server {
	return &Server{
		scheduler: opts.Scheduler,
		postRepo:  opts.PostRepo,
		prefRepo:  opts.PrefRepo,
		dismisses: opts.Dismisses,
		metrics:   opts.Metrics,
		limiter:   opts.Limiter,
		logger:    opts.Logger.WithComponent("API"),
		config:    opts.Config,
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.loggingMiddleware)
		r.Use(s.rateLimitMiddleware)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenSession)
			r.Get("/{sessionID}", s.handleGetSession)
			r.Patch("/{sessionID}/selection", s.handleUpdateSelection)
			r.Post("/{sessionID}/month", s.handleChangeMonth)
			r.Post("/{sessionID}/submit", s.handleSubmit)
			r.Delete("/{sessionID}", s.handleCloseSession)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/scheduled", s.handleScheduledWindow)
			r.Post("/{postID}/dismiss", s.handleDismiss)
			r.Post("/{postID}/undo", s.handleUndoDismiss)
		})

		r.Put("/preferences/{userID}", s.handleUpsertPreference)
	})

	return r
}

// Run starts the HTTP server under the fx lifecycle.
func Run(lc fx.Lifecycle, server *Server, log logger.Logger, cfg *config.Config) {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("Server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}
