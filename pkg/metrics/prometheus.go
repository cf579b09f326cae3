// Package metrics provides Prometheus metrics for the sideout rating engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the sideout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Replay Metrics - The core rating computation
	setsProcessed  prometheus.Counter
	setsDuplicate  prometheus.Counter
	setsMalformed  prometheus.Counter
	replayDuration prometheus.Histogram
	tierSets       *prometheus.GaugeVec

	// Training Metrics - Model fitting progress
	trainingEpochs *prometheus.CounterVec
	trainingLoss   *prometheus.GaugeVec

	// Evaluation Metrics - Model comparison quality
	modelAccuracy  *prometheus.GaugeVec
	modelEvaluated *prometheus.GaugeVec
	modelExcluded  *prometheus.GaugeVec

	// Standings Metrics - Ranked store management
	standingsRecords       prometheus.Gauge
	standingsUpdateLatency prometheus.Histogram
	standingsQueryLatency  prometheus.Histogram
	totalPlayers           prometheus.Gauge

	// Persistence Metrics - Database round trips
	storeQueryLatency prometheus.Histogram
	storeWriteLatency prometheus.Histogram

	// Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sideout",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Replay Metrics - The core rating computation
	m.setsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sets_processed_total",
		Help:      "Total number of sets successfully processed by a replay",
	})

	m.setsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sets_duplicate_total",
		Help:      "Total number of duplicate set IDs skipped (indicates data quality)",
	})

	m.setsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sets_malformed_total",
		Help:      "Total number of sets rejected for tied scores",
	})

	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_duration_milliseconds",
		Help:      "Histogram of full replay duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.tierSets = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tier_sets",
			Help:      "Number of sets matched by the tier filter, per tier",
		},
		[]string{"tier"},
	)

	// Training Metrics - Model fitting progress
	m.trainingEpochs = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "training_epochs_total",
			Help:      "Total number of training epochs completed, per model",
		},
		[]string{"model"},
	)

	m.trainingLoss = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "training_loss",
			Help:      "Training loss at the end of the latest epoch, per model",
		},
		[]string{"model"},
	)

	// Evaluation Metrics - Model comparison quality
	m.modelAccuracy = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "model_accuracy_ratio",
			Help:      "Holdout prediction accuracy per model",
		},
		[]string{"model"},
	)

	m.modelEvaluated = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "model_evaluated_sets",
			Help:      "Number of holdout sets evaluated per model",
		},
		[]string{"model"},
	)

	m.modelExcluded = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "model_excluded_sets",
			Help:      "Number of holdout sets excluded for unseen players per model",
		},
		[]string{"model"},
	)

	// Standings Metrics - Ranked store management
	m.standingsRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_records_total",
		Help:      "Total number of rated players held in the standings store",
	})

	m.standingsUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_update_latency_milliseconds",
		Help:      "Standings update operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.standingsQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_query_latency_milliseconds",
		Help:      "Standings query operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.totalPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_players",
		Help:      "Total number of players with a computed rating (business scale)",
	})

	// Persistence Metrics - Database round trips
	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Database read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Database write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
}

// Replay Metrics Functions.

// RecordSetProcessed increments the processed sets counter.
func RecordSetProcessed() {
	globalManager.setsProcessed.Inc()
}

// RecordDuplicateSet increments the duplicate sets counter.
func RecordDuplicateSet() {
	globalManager.setsDuplicate.Inc()
}

// RecordMalformedSet increments the malformed sets counter.
func RecordMalformedSet() {
	globalManager.setsMalformed.Inc()
}

// RecordReplayDuration records full replay duration in milliseconds.
func RecordReplayDuration(durationMs float64) {
	globalManager.replayDuration.Observe(durationMs)
}

// UpdateTierSets sets the number of sets matched by a tier filter.
func UpdateTierSets(tier string, count int) {
	globalManager.tierSets.WithLabelValues(tier).Set(float64(count))
}

// Training Metrics Functions.

// RecordTrainingEpoch increments the completed epochs counter for a model.
func RecordTrainingEpoch(model string) {
	globalManager.trainingEpochs.WithLabelValues(model).Inc()
}

// UpdateTrainingLoss sets the latest epoch loss for a model.
func UpdateTrainingLoss(model string, loss float64) {
	globalManager.trainingLoss.WithLabelValues(model).Set(loss)
}

// Evaluation Metrics Functions.

// UpdateModelAccuracy sets the holdout accuracy for a model.
func UpdateModelAccuracy(model string, accuracy float64) {
	globalManager.modelAccuracy.WithLabelValues(model).Set(accuracy)
}

// UpdateModelEvaluated sets the evaluated and excluded set counts for a model.
func UpdateModelEvaluated(model string, evaluated, excluded int) {
	globalManager.modelEvaluated.WithLabelValues(model).Set(float64(evaluated))
	globalManager.modelExcluded.WithLabelValues(model).Set(float64(excluded))
}

// Standings Metrics Functions.

// UpdateStandingsRecords sets the total number of records in the standings store.
func UpdateStandingsRecords(count int) {
	globalManager.standingsRecords.Set(float64(count))
}

// RecordStandingsUpdateLatency records standings update operation latency.
func RecordStandingsUpdateLatency(latencyMs float64) {
	globalManager.standingsUpdateLatency.Observe(latencyMs)
}

// RecordStandingsQueryLatency records standings query operation latency.
func RecordStandingsQueryLatency(latencyMs float64) {
	globalManager.standingsQueryLatency.Observe(latencyMs)
}

// UpdateTotalPlayers sets the total rated players count.
func UpdateTotalPlayers(count int) {
	globalManager.totalPlayers.Set(float64(count))
}

// Persistence Metrics Functions.

// RecordStoreQueryLatency records database read latency.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreWriteLatency records database write latency.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
