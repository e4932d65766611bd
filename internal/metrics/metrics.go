package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds normalization and enrichment metrics for direct
// instrumentation in the engine callers and the authority matcher.
type Metrics struct {
	NormalizePasses      prometheus.Counter
	WorksEmitted         prometheus.Counter
	UnlinkedWorks        prometheus.Counter
	DeadVariantsFiltered prometheus.Counter

	AuthorityDecisions *prometheus.CounterVec
	AuthorityRequests  prometheus.Counter
	AuthorityErrors    prometheus.Counter
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NormalizePasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "normalize",
			Name:      "passes_total",
			Help:      "Total normalization passes executed.",
		}),
		WorksEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "normalize",
			Name:      "works_emitted_total",
			Help:      "Normalized works emitted across all passes.",
		}),
		UnlinkedWorks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "normalize",
			Name:      "unlinked_works_total",
			Help:      "Singleton works emitted for unlinkable items.",
		}),
		DeadVariantsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "normalize",
			Name:      "dead_variants_filtered_total",
			Help:      "Variants excluded because they were marked permanently dead.",
		}),
		AuthorityDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "authority",
			Name:      "decisions_total",
			Help:      "Authority match decisions by terminal outcome.",
		}, []string{"outcome"}),
		AuthorityRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "authority",
			Name:      "requests_total",
			Help:      "Requests issued to the external authority.",
		}),
		AuthorityErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "authority",
			Name:      "errors_total",
			Help:      "Transport failures talking to the external authority.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "authority",
			Name:      "cache_hits_total",
			Help:      "Authority cache hits by cache name.",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediafold",
			Subsystem: "authority",
			Name:      "cache_misses_total",
			Help:      "Authority cache misses by cache name.",
		}, []string{"cache"}),
	}

	reg.MustRegister(
		m.NormalizePasses,
		m.WorksEmitted,
		m.UnlinkedWorks,
		m.DeadVariantsFiltered,
		m.AuthorityDecisions,
		m.AuthorityRequests,
		m.AuthorityErrors,
		m.CacheHits,
		m.CacheMisses,
	)

	return m
}
