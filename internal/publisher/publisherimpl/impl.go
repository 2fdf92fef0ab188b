package publisherimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/draftly/post-scheduler/internal/metrics"
	"github.com/draftly/post-scheduler/internal/publisher"
	"github.com/draftly/post-scheduler/internal/repositories/post"
	"github.com/draftly/post-scheduler/pkg/config"
	"github.com/draftly/post-scheduler/pkg/logger"
	"github.com/draftly/post-scheduler/pkg/retry"
)

const dueBatchSize = 50

type Opts struct {
	fx.In

	PostRepo post.Repository
	Logger   logger.Logger
	Config   *config.Config
	Metrics  metrics.Recorder
	Clock    clockwork.Clock
}

type PublisherImpl struct {
	PostRepo post.Repository
	Logger   logger.Logger
	Config   *config.Config
	Metrics  metrics.Recorder
	Clock    clockwork.Clock

	limiter *rate.Limiter
}

func New(opts Opts) *PublisherImpl {
	perMinute := opts.Config.Publisher.RatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}

	return &PublisherImpl{
		PostRepo: opts.PostRepo,
		Logger:   opts.Logger.WithComponent("Publisher"),
		Config:   opts.Config,
		Metrics:  opts.Metrics,
		Clock:    opts.Clock,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

var _ publisher.Client = (*PublisherImpl)(nil)

// Start schedules the recurring job that publishes due posts
func (p *PublisherImpl) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create publisher scheduler: %w", err)
	}

	interval := time.Duration(p.Config.Publisher.IntervalSeconds) * time.Second

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}

			runCtx, cancel := context.WithTimeout(ctx, interval)
			defer cancel()

			published, err := p.PublishDue(runCtx)
			if err != nil {
				p.Logger.Error("Publish run failed", "error", err)
				return
			}
			if published > 0 {
				p.Logger.Info("Publish run completed", "published", published)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule publish job: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		p.Logger.Info("Stopping publisher scheduler")
		if err := scheduler.Shutdown(); err != nil {
			p.Logger.Error("Failed to shut down publisher scheduler", "error", err)
		}
	}()

	return nil
}

// PublishDue processes every scheduled post whose instant has passed
func (p *PublisherImpl) PublishDue(ctx context.Context) (int, error) {
	due, err := p.PostRepo.ListDue(ctx, p.Clock.Now(), dueBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due posts: %w", err)
	}

	published := 0
	for _, item := range due {
		if err := p.limiter.Wait(ctx); err != nil {
			return published, err
		}

		postID := item.ID
		err := retry.Do(ctx, p.Logger, "mark_posted", func() error {
			return p.PostRepo.MarkPosted(ctx, postID, p.Clock.Now())
		}, retry.DefaultConfig())
		if err != nil {
			p.Metrics.RecordPublish("failed")
			p.Logger.Error("Failed to publish post", "post_id", postID, "error", err)
			continue
		}

		p.Metrics.RecordPublish("success")
		published++
	}

	return published, nil
}
