package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// LibraryStats is the snapshot the collector scrapes. Implemented by the
// library's work repository.
type LibraryStats interface {
	Counts() (works, variants int64, err error)
}

// LibraryCollector implements prometheus.Collector for library stats. It
// queries the store lazily on each Prometheus scrape rather than maintaining
// duplicate state.
type LibraryCollector struct {
	stats LibraryStats
	log   *slog.Logger

	worksStored    *prometheus.Desc
	variantsStored *prometheus.Desc
}

// NewLibraryCollector creates a collector that scrapes library counts on demand.
func NewLibraryCollector(stats LibraryStats) *LibraryCollector {
	return &LibraryCollector{
		stats: stats,
		log:   slog.With("component", "library-collector"),

		worksStored: prometheus.NewDesc(
			"mediafold_library_works",
			"Number of normalized works currently stored.",
			nil, nil,
		),
		variantsStored: prometheus.NewDesc(
			"mediafold_library_variants",
			"Number of variants currently stored across all works.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *LibraryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.worksStored
	ch <- c.variantsStored
}

// Collect implements prometheus.Collector.
func (c *LibraryCollector) Collect(ch chan<- prometheus.Metric) {
	works, variants, err := c.stats.Counts()
	if err != nil {
		c.log.Warn("library stats scrape failed", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.worksStored, prometheus.GaugeValue, float64(works))
	ch <- prometheus.MustNewConstMetric(c.variantsStored, prometheus.GaugeValue, float64(variants))
}
