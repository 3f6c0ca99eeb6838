// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Poll results
const (
	ResultSuccess      = "success"
	ResultNetworkError = "network_error"
	ResultHTTPError    = "http_error"
	ResultMalformed    = "malformed"
	ResultTimeout      = "timeout"
	ResultOther        = "error"
)

// Discard reasons
const (
	DiscardStale = "stale"
	DiscardLate  = "late"
)

// Collector holds the pipeline metrics on its own registry so several views
// and tests never collide on global registration.
type Collector struct {
	registry     *prometheus.Registry
	polls        *prometheus.CounterVec
	pollDuration prometheus.Histogram
	discarded    *prometheus.CounterVec
	plants       prometheus.Gauge
	readings     prometheus.Gauge
	lastApplied  prometheus.Gauge
}

// New creates and registers all collectors
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plantmonitor_polls_total",
			Help: "Telemetry polls by result.",
		}, []string{"result"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plantmonitor_poll_duration_seconds",
			Help:    "Time from issuing a telemetry read to a normalized result.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plantmonitor_responses_discarded_total",
			Help: "Poll responses dropped instead of applied, by reason.",
		}, []string{"reason"}),
		plants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plantmonitor_plants",
			Help: "Plants in the currently applied dataset.",
		}),
		readings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plantmonitor_readings",
			Help: "Readings in the currently applied dataset.",
		}),
		lastApplied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plantmonitor_last_applied_timestamp_seconds",
			Help: "Unix time the dataset was last replaced.",
		}),
	}

	c.registry.MustRegister(c.polls, c.pollDuration, c.discarded, c.plants, c.readings, c.lastApplied)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObservePoll records one completed read
func (c *Collector) ObservePoll(duration time.Duration, err error) {
	c.polls.WithLabelValues(Classify(err)).Inc()
	c.pollDuration.Observe(duration.Seconds())
}

// LateResponseDiscarded counts a result that resolved after its poller stopped
func (c *Collector) LateResponseDiscarded() {
	c.discarded.WithLabelValues(DiscardLate).Inc()
}

// StaleResponseDiscarded counts a result older than the applied dataset
func (c *Collector) StaleResponseDiscarded() {
	c.discarded.WithLabelValues(DiscardStale).Inc()
}

// SetDataset records the size of a freshly applied dataset
func (c *Collector) SetDataset(plants, readings int, at time.Time) {
	c.plants.Set(float64(plants))
	c.readings.Set(float64(readings))
	c.lastApplied.Set(float64(at.Unix()))
}

// Classify maps a poll error to its result label
func Classify(err error) string {
	if err == nil {
		return ResultSuccess
	}

	var malformed *api.MalformedDataError
	var httpErr *api.HTTPError
	var netErr *api.NetworkError

	switch {
	case errors.As(err, &malformed):
		return ResultMalformed
	case errors.As(err, &httpErr):
		return ResultHTTPError
	case errors.Is(err, context.DeadlineExceeded):
		return ResultTimeout
	case errors.As(err, &netErr):
		return ResultNetworkError
	default:
		return ResultOther
	}
}
