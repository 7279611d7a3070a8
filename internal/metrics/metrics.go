package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoutesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indoornav_routes_enqueued_total",
		Help: "Total number of route searches placed on the worker queue.",
	})

	RoutesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indoornav_routes_rejected_total",
		Help: "Total number of route searches rejected due to a full queue.",
	})

	RoutesCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indoornav_routes_coalesced_total",
		Help: "Total number of route requests answered by an identical in-flight search.",
	})

	RoutesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indoornav_routes_processed_total",
		Help: "Total number of route searches run, labelled by outcome.",
	}, []string{"outcome"}) // found | not_found | truncated | error

	RouteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indoornav_route_duration_ms",
		Help:    "Route search time on a worker in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	RouteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indoornav_route_latency_ms",
		Help:    "Time from request receipt to answer in milliseconds, queue wait included.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000, 2500},
	})

	SearchIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indoornav_search_iterations",
		Help:    "BFS expansion steps per route search.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indoornav_queue_utilization_ratio",
		Help: "Current route queue utilization (0-1).",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indoornav_graph_nodes",
		Help: "Number of nodes in the active graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indoornav_graph_edges",
		Help: "Number of edges in the active graph.",
	})

	GraphReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indoornav_graph_reloads_total",
		Help: "Total number of map reload attempts, labelled by status.",
	}, []string{"status"})

	MapSkippedFeatures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indoornav_map_skipped_features",
		Help: "Features skipped by the most recent map load.",
	})
)
