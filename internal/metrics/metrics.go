// Package metrics registers the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogLookupsTotal counts lookups by outcome: disabled, cache_hit, backoff, live, stale, miss, cancelled.
	CatalogLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifthub_catalog_lookups_total",
			Help: "Catalog lookups by outcome",
		},
		[]string{"outcome"},
	)

	// CatalogRequestsTotal counts live catalog API requests by result.
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifthub_catalog_requests_total",
			Help: "Live catalog API requests by result",
		},
		[]string{"result"},
	)

	// RelatedListsTotal counts related-page requests by result: cache_hit, computed, empty.
	RelatedListsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifthub_related_lists_total",
			Help: "Related-page list requests by result",
		},
		[]string{"result"},
	)

	// RelatedInvalidationsTotal counts related-list cache invalidations.
	RelatedInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gifthub_related_invalidations_total",
			Help: "Related-page cache invalidations",
		},
	)

	// WarmBatchesTotal counts batches processed by the cache warmer.
	WarmBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gifthub_warm_batches_total",
			Help: "Catalog warm batches processed",
		},
	)
)
