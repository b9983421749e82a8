// Package observability provides Prometheus metrics, structured logging and tracing setup.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	RowsLoaded   *prometheus.CounterVec
	RowsDropped  *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec

	// Rebase metrics
	RebasesTotal    *prometheus.CounterVec
	RebaseDuration  prometheus.Histogram
	ActiveBase      prometheus.Gauge
	SnapshotVersion prometheus.Gauge

	// Query metrics
	RangeSelections prometheus.Counter
	RangePoints     prometheus.Histogram
	PriceLookups    *prometheus.CounterVec

	// Transport metrics
	WebsocketClients prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulLoad prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rpi_index_lab"
	}

	return &Metrics{
		// Ingestion metrics
		RowsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_loaded_total",
			Help:      "Total number of dataset rows kept after normalization",
		}, []string{"dataset"}),
		RowsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_dropped_total",
			Help:      "Total number of malformed dataset rows dropped",
		}, []string{"dataset"}),
		LoadDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "load_duration_seconds",
			Help:      "Dataset load duration in seconds by source kind",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"source"}),

		// Rebase metrics
		RebasesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rebase",
			Name:      "rebases_total",
			Help:      "Total number of rebase requests by result",
		}, []string{"result"}),
		RebaseDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rebase",
			Name:      "duration_seconds",
			Help:      "Rebase computation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		ActiveBase: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rebase",
			Name:      "active_base_ordinal",
			Help:      "Ordinal (year*10+quarter) of the active base period",
		}),
		SnapshotVersion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rebase",
			Name:      "snapshot_version",
			Help:      "Version of the active rebasing snapshot",
		}),

		// Query metrics
		RangeSelections: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "range_selections_total",
			Help:      "Total number of range selections plotted",
		}),
		RangePoints: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "range_points",
			Help:      "Number of points returned per range selection",
			Buckets:   []float64{0, 1, 4, 8, 20, 40, 80, 160},
		}),
		PriceLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "price_lookups_total",
			Help:      "Total number of price lookups by result",
		}, []string{"result"}),

		// Transport metrics
		WebsocketClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulLoad: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of last successful dataset load",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// Rebase and lookup result labels.
const (
	ResultOK         = "ok"
	ResultNotFound   = "not_found"
	ResultInvalid    = "invalid"
	ResultDegenerate = "degenerate"
	ResultIncomplete = "incomplete"
)

// RecordRowsLoaded records kept and dropped rows for a dataset.
func RecordRowsLoaded(dataset string, kept, dropped int) {
	DefaultMetrics.RowsLoaded.WithLabelValues(dataset).Add(float64(kept))
	DefaultMetrics.RowsDropped.WithLabelValues(dataset).Add(float64(dropped))
}

// RecordLoad records a dataset load and marks the load time on success.
func RecordLoad(source string, seconds float64, unixTime int64) {
	DefaultMetrics.LoadDuration.WithLabelValues(source).Observe(seconds)
	DefaultMetrics.LastSuccessfulLoad.Set(float64(unixTime))
}

// RecordRebase records a rebase request. Ordinal and version are only
// applied when the result is ResultOK.
func RecordRebase(result string, seconds float64, baseOrdinal int, version uint64) {
	DefaultMetrics.RebasesTotal.WithLabelValues(result).Inc()
	DefaultMetrics.RebaseDuration.Observe(seconds)
	if result == ResultOK {
		DefaultMetrics.ActiveBase.Set(float64(baseOrdinal))
		DefaultMetrics.SnapshotVersion.Set(float64(version))
	}
}

// RecordRangeSelection records a plotted range and its size.
func RecordRangeSelection(points int) {
	DefaultMetrics.RangeSelections.Inc()
	DefaultMetrics.RangePoints.Observe(float64(points))
}

// RecordPriceLookup records a price lookup outcome.
func RecordPriceLookup(result string) {
	DefaultMetrics.PriceLookups.WithLabelValues(result).Inc()
}

// SetWebsocketClients updates the connected websocket clients gauge.
func SetWebsocketClients(n int) {
	DefaultMetrics.WebsocketClients.Set(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
