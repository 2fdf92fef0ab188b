package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Recorder is the surface the scheduling and publishing paths report to.
type Recorder interface {
	RecordSubmit(outcome string)
	RecordConflicts(count int)
	RecordPush(shifted int)
	RecordPublish(outcome string)
}

// Collector registers and serves Prometheus metrics.
type Collector struct {
	registry    *prometheus.Registry
	submits     *prometheus.CounterVec
	conflicts   prometheus.Counter
	pushedPosts prometheus.Counter
	publishes   *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_submit_total",
			Help: "Schedule submissions by outcome",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_conflicts_detected_total",
			Help: "Posts found conflicting with a candidate selection",
		}),
		pushedPosts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_pushed_posts_total",
			Help: "Posts shifted forward by cascade pushes",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "publisher_publish_total",
			Help: "Due posts processed by the publisher, by outcome",
		}, []string{"outcome"}),
	}

	c.registry.MustRegister(c.submits, c.conflicts, c.pushedPosts, c.publishes)
	return c
}

func (c *Collector) RecordSubmit(outcome string) {
	c.submits.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordConflicts(count int) {
	c.conflicts.Add(float64(count))
}

func (c *Collector) RecordPush(shifted int) {
	c.pushedPosts.Add(float64(shifted))
}

func (c *Collector) RecordPublish(outcome string) {
	c.publishes.WithLabelValues(outcome).Inc()
}

// Handler serves the collector's registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

var Module = fx.Module("metrics",
	fx.Provide(
		NewCollector,
		func(c *Collector) Recorder { return c },
	),
)
