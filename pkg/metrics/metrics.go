package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GroupsProcessed counts plot groups per outcome
	// status: succeeded, failed, skipped
	GroupsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldsync_groups_total",
		Help: "Plot groups handled by sync passes, by outcome and record type",
	}, []string{"status", "record_type"})

	// RecordsSynced counts records confirmed by the remote collector
	RecordsSynced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldsync_records_synced_total",
		Help: "Records flipped to synced after a confirmed batch",
	}, []string{"record_type"})

	// TransmitRetries counts extra attempts made after transient transport errors
	TransmitRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldsync_transmit_retries_total",
		Help: "Batch transmissions retried after a transient failure",
	}, []string{"record_type"})

	// PendingRecords is the backlog left on the device after the last pass
	PendingRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fieldsync_pending_records",
		Help: "Records still waiting for a confirmed sync",
	}, []string{"record_type"})

	// PassDuration measures a full sync pass across all record types
	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldsync_pass_duration_seconds",
		Help:    "Duration of a sync pass in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	// GroupSize tracks how many records travel in one batch
	GroupSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldsync_group_size",
		Help:    "Number of records per transmitted plot group",
		Buckets: []float64{1, 5, 10, 50, 100, 500},
	})
)

// WriteTextfile dumps the default registry in the node_exporter textfile format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
