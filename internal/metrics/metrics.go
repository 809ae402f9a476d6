// Package metrics holds Prometheus instruments used across the resolver.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ParseTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "template_parse_total",
			Help: "Cumulative number of template parse invocations.",
		})

	ParseErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "template_parse_errors_total",
			Help: "Cumulative number of parses that produced at least one error.",
		})

	ImportExpandTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "template_import_expand_total",
			Help: "Cumulative number of import directives successfully embedded.",
		})

	ImportErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "template_import_errors_total",
			Help: "Cumulative number of failed import directives (missing, cyclic, too deep).",
		})

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Cumulative number of result-cache hits.",
		})

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Cumulative number of result-cache misses.",
		})

	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "result_cache_entries",
			Help: "Number of entries currently held by the result cache.",
		})
)

func init() {
	prometheus.MustRegister(
		ParseTotal,
		ParseErrorsTotal,
		ImportExpandTotal,
		ImportErrorsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEntries,
	)
}
