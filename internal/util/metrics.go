package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersReplacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_replaced_total",
		Help: "Total number of orders whose header and item set were replaced",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected or failed order operations",
	}, []string{"reason"})

	OrderItemsPerOrder = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_items_per_order",
		Help:    "Number of line items per persisted order",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
	})

	PricingBulkOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_bulk_ops_total",
		Help: "Total number of bulk pricing operations by kind and outcome",
	}, []string{"op", "outcome"})

	PriceResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_resolutions_total",
		Help: "Total number of price resolutions",
	}, []string{"outcome"})

	PriceResolveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "price_resolve_latency_seconds",
		Help:    "Latency of price resolution including store lookups",
		Buckets: prometheus.DefBuckets,
	})

	PricingCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_cache_events_total",
		Help: "Pricing cache hits and misses",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
