// Package metrics exposes scan progress and outcomes as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ternarybob/movers/internal/fetcher"
	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pipeline"
)

// Recorder collects fetch and run metrics on its own registry.
// It implements fetcher.Observer.
type Recorder struct {
	registry *prometheus.Registry

	requested     prometheus.Counter
	skipped       *prometheus.CounterVec
	rateLimited   prometheus.Counter
	cooldown      prometheus.Counter
	processed     prometheus.Gauge
	total         prometheus.Gauge
	batchDuration prometheus.Histogram
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	ranked        prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

var _ fetcher.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with Go and process collectors registered.
func NewRecorder(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "symbols_requested_total",
			Help: "Symbols for which a daily series was requested.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "symbols_skipped_total",
			Help: "Symbols that produced no bar, by reason.",
		}, []string{"reason"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "rate_limited_total",
			Help: "Throttling notices received from the quote provider.",
		}),
		cooldown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "cooldown_seconds_total",
			Help: "Time spent cooling down after throttling notices.",
		}),
		processed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "processed_symbols",
			Help: "Symbols processed in the current run.",
		}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "total_symbols",
			Help: "Symbols to process in the current run.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "batch_duration_seconds",
			Help:    "Wall time per fetch batch.",
			Buckets: prometheus.ExponentialBuckets(60, 2, 8),
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total",
			Help: "Completed scans by status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help:    "Wall time per scan.",
			Buckets: prometheus.ExponentialBuckets(60, 2, 12),
		}),
		ranked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ranked_stocks",
			Help: "Stocks in the last ranking.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last successful scan.",
		}),
	}

	r.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		r.requested, r.skipped, r.rateLimited, r.cooldown, r.processed, r.total,
		r.batchDuration, r.runs, r.runDuration, r.ranked, r.lastSuccess,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) BatchStarted(batch, _, _ int) {
	if batch == 1 {
		r.processed.Set(0)
	}
}

func (r *Recorder) SymbolStarted(index, total int, _ models.ListedInstrument) {
	r.requested.Inc()
	r.total.Set(float64(total))
	r.processed.Set(float64(index - 1))
}

func (r *Recorder) SymbolSkipped(_ models.ListedInstrument, reason fetcher.SkipReason, _ error) {
	r.skipped.WithLabelValues(reason.String()).Inc()
}

func (r *Recorder) RateLimited(_ models.ListedInstrument, _ int, cooldown time.Duration, _ string) {
	r.rateLimited.Inc()
	r.cooldown.Add(cooldown.Seconds())
}

func (r *Recorder) BatchCompleted(progress fetcher.BatchProgress) {
	r.processed.Set(float64(progress.Processed))
	r.batchDuration.Observe(progress.Elapsed.Seconds())
}

// ObserveRun records the outcome of a scan.
func (r *Recorder) ObserveRun(result *pipeline.Result, err error, now time.Time) {
	status := "success"
	switch {
	case errors.Is(err, pipeline.ErrCancelledByOperator):
		status = "declined"
	case err != nil && result != nil && result.Interrupted:
		status = "interrupted"
	case err != nil:
		status = "failed"
	}
	r.runs.WithLabelValues(status).Inc()

	if result == nil {
		return
	}
	r.runDuration.Observe(result.Duration.Seconds())
	if err == nil {
		r.ranked.Set(float64(len(result.Stocks)))
		r.lastSuccess.Set(float64(now.Unix()))
	}
}
