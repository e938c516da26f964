package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "entitystore"

	metricLabelHandler = "handler"
	metricLabelStatus  = "status"
	metricLabelSource  = "source"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// ServiceRequestCounter count the number of requests for each service function
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// ServiceRequestDuration observe the duration of requests for each service function
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to unmarshal a request, execute a store operation and marshal its response",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// SnapshotPersistFailedCounter count the number of failed snapshot writes
	SnapshotPersistFailedCounter = newCounterVec(
		"snapshot_persist_failed_count",
		"Number of failures to persist the entity snapshot",
	)
	// SnapshotRestoreFailedCounter count the number of snapshots that could not be decoded
	SnapshotRestoreFailedCounter = newCounterVec(
		"snapshot_restore_failed_count",
		"Number of snapshots that existed but could not be restored",
	)
	// SnapshotPersistDuration observe the duration of each snapshot write
	SnapshotPersistDuration = newSummaryVec(
		"snapshot_persist_duration_seconds",
		"Duration in seconds for each successful snapshot write",
	)
	// StoredEntitiesGauge keep track of the number of stored entities
	StoredEntitiesGauge = newGaugeVec(
		"entities_stored",
		"Number of entities currently held in the store",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
