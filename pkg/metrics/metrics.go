package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics owns a private registry so it can be constructed more than once (tests).
// All methods are safe on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	turns            *prometheus.CounterVec
	turnDuration     *prometheus.HistogramVec
	extractionMisses *prometheus.CounterVec
	plansGenerated   *prometheus.CounterVec
	externalErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		turns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_turns_total",
				Help: "Dialogue turns processed by policy and outcome.",
			},
			[]string{"policy", "outcome"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "travel_turn_duration_seconds",
				Help:    "Duration of a dialogue turn.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"policy"},
		),
		extractionMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_extraction_misses_total",
				Help: "Extraction requests that produced no field.",
			},
			[]string{"strategy"},
		),
		plansGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_plans_generated_total",
				Help: "Travel plans assembled.",
			},
			[]string{"policy"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_external_errors_total",
				Help: "Errors returned by external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_cache_hits_total",
				Help: "Search cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_cache_misses_total",
				Help: "Search cache misses.",
			},
			[]string{"cache"},
		),
	}
}

func (m *Metrics) ObserveTurn(policy, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(policy, outcome).Inc()
	m.turnDuration.WithLabelValues(policy).Observe(elapsed.Seconds())
}

func (m *Metrics) ExtractionMiss(strategy string) {
	if m == nil {
		return
	}
	m.extractionMisses.WithLabelValues(strategy).Inc()
}

func (m *Metrics) PlanGenerated(policy string) {
	if m == nil {
		return
	}
	m.plansGenerated.WithLabelValues(policy).Inc()
}

func (m *Metrics) ExternalError(service string) {
	if m == nil {
		return
	}
	m.externalErrors.WithLabelValues(service).Inc()
}

func (m *Metrics) CacheHit(name string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(name).Inc()
}

func (m *Metrics) CacheMiss(name string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(name).Inc()
}
