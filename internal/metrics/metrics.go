package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts summary runs by outcome ("ok" or "error").
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonledger_runs_total",
		Help: "Summary runs by outcome.",
	}, []string{"status"})

	// RunDuration observes wall-clock run time.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lessonledger_run_duration_seconds",
		Help:    "Wall-clock duration of a summary run.",
		Buckets: prometheus.DefBuckets,
	})

	// ParseMisses counts messages an extractor rejected, by extractor.
	ParseMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonledger_parse_misses_total",
		Help: "Messages rejected by an extractor.",
	}, []string{"extractor"})

	// FxCacheHits counts fresh cache hits in the FX service.
	FxCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lessonledger_fx_cache_hits_total",
		Help: "FX lookups answered from a fresh cache entry.",
	})

	// FxProviderFailures counts failed provider fetches, by provider.
	FxProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonledger_fx_provider_failures_total",
		Help: "Failed FX provider fetches.",
	}, []string{"provider"})
)
