package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
)

// Operation labels.
const (
	OpAdd      = "add"
	OpRemove   = "remove"
	OpClearAll = "clear_all"
	OpUndo     = "undo"
	OpPrune    = "prune"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapstash_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapstash_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Store Metrics
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapstash_operations_total",
			Help: "Record store operations by outcome",
		},
		[]string{"operation", "status"},
	)

	Items = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapstash_items",
			Help: "Number of saved items",
		},
	)

	HistoryDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapstash_history_depth",
			Help: "Number of undoable actions",
		},
	)

	HistoryPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapstash_history_pruned_total",
			Help: "History entries dropped by the pruner",
		},
	)

	// Category Metrics
	CategoryReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapstash_category_reloads_total",
			Help: "Category file reloads by outcome",
		},
		[]string{"status"},
	)

	Categories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapstash_categories",
			Help: "Number of categories currently offered",
		},
	)
)

// Status maps an operation error to a low-cardinality label.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmptyHistory):
		return "empty_history"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}

// RecordOperation counts one store operation.
func RecordOperation(op string, err error) {
	OperationsTotal.WithLabelValues(op, Status(err)).Inc()
}

// SetState publishes the current item count and history depth.
func SetState(items, historyDepth int) {
	Items.Set(float64(items))
	HistoryDepth.Set(float64(historyDepth))
}

// RecordReload counts one category reload and, on success, the resulting set size.
func RecordReload(count int, err error) {
	if err != nil {
		CategoryReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	CategoryReloadsTotal.WithLabelValues("ok").Inc()
	Categories.Set(float64(count))
}

// RecordHTTP records one served request. route is the chi route pattern.
func RecordHTTP(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
