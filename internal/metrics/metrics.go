// Package metrics holds Prometheus instruments that are used across
// hostview.  All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ViewLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostview_view_lookups_total",
			Help: "View and layout lookups, by resolved domain segment.",
		}, []string{"segment"})

	ViewNotFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostview_view_not_found_total",
			Help: "Lookups that exhausted every candidate path.",
		})

	TemplateParse = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostview_template_parse_total",
			Help: "Template sets parsed from disk (cache misses included).",
		})

	DomainAnnotations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostview_domain_annotations_total",
			Help: "Requests annotated, by X-Domain-Name value.",
		}, []string{"header"})
)

func init() {
	prometheus.MustRegister(
		ViewLookups,
		ViewNotFound,
		TemplateParse,
		DomainAnnotations,
	)
}
