package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the planner analytics service
type Metrics struct {
	EngineComputations  *prometheus.CounterVec   // computation, status
	ComputationDuration *prometheus.HistogramVec // computation
	StoreQueries        *prometheus.CounterVec   // query_type, status
	RefreshRuns         *prometheus.CounterVec   // status
	LastRefreshTime     *prometheus.GaugeVec     // no labels; unix seconds
}
