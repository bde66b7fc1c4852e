// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

// Metrics holds the service's prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SalesRecorded     *prometheus.CounterVec
	SalesRejected     *prometheus.CounterVec
	UnitsSold         prometheus.Counter
	StockAdjustments  *prometheus.CounterVec
	LockWaitDuration  prometheus.Histogram
	ForecastDuration  prometheus.Histogram
	ForecastCacheHits *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	m.SalesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_recorded_total",
			Help:      "Sales committed together with their ledger entry",
		},
		[]string{"payment_mode"},
	)

	m.SalesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_rejected_total",
			Help:      "Sales that were not recorded, by reason",
		},
		[]string{"reason"},
	)

	m.UnitsSold = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_sold_total",
			Help:      "Units removed from stock by sales",
		},
	)

	m.StockAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Manual ledger adjustments, by reason code",
		},
		[]string{"reason_code"},
	)

	m.LockWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stock_lock_wait_seconds",
			Help:      "Time spent waiting for a per-product stock lock",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	m.ForecastDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Time to build a demand forecast including the history query",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	m.ForecastCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_lookups_total",
			Help:      "Forecast cache lookups by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SalesRecorded,
		m.SalesRejected,
		m.UnitsSold,
		m.StockAdjustments,
		m.LockWaitDuration,
		m.ForecastDuration,
		m.ForecastCacheHits,
	)

	return m
}

// Handler returns the HTTP handler that serves the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a finished HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSale counts a committed sale
func (m *Metrics) RecordSale(paymentMode string, quantity int) {
	if m == nil {
		return
	}
	m.SalesRecorded.WithLabelValues(paymentMode).Inc()
	m.UnitsSold.Add(float64(quantity))
}

// RecordSaleRejected counts a sale that was refused or failed
func (m *Metrics) RecordSaleRejected(reason string) {
	if m == nil {
		return
	}
	m.SalesRejected.WithLabelValues(reason).Inc()
}

// RecordAdjustment counts a manual ledger adjustment
func (m *Metrics) RecordAdjustment(reasonCode string) {
	if m == nil {
		return
	}
	m.StockAdjustments.WithLabelValues(reasonCode).Inc()
}

// ObserveLockWait records how long a stock lock took to obtain
func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.LockWaitDuration.Observe(d.Seconds())
}

// ObserveForecast records forecast latency
func (m *Metrics) ObserveForecast(d time.Duration) {
	if m == nil {
		return
	}
	m.ForecastDuration.Observe(d.Seconds())
}

// RecordForecastCache records a cache hit or miss
func (m *Metrics) RecordForecastCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ForecastCacheHits.WithLabelValues(result).Inc()
}
