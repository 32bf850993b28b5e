package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_schema_registrations_total",
			Help: "Schema registration attempts by final outcome",
		},
		[]string{"subject", "outcome"},
	)
	VerifyAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_verify_attempts_total",
			Help: "Subject verification read attempts by signal",
		},
		[]string{"subject", "method"},
	)
	DiagnosticScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_diagnostic_scans_total",
			Help: "Cross-subject content scans by result",
		},
		[]string{"result"},
	)
	CopiedVersions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_copied_versions_total",
			Help: "Versions staged by copy operations",
		},
		[]string{"subject"},
	)
	CheckpointAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kc_checkpoint_attempts_total",
			Help: "Checkpoint mutation attempts by verb and status",
		},
		[]string{"verb", "status"},
	)
	ReplicationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kc_replication_latency_seconds",
			Help:    "Wall time of whole paste batches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		Registrations,
		VerifyAttempts,
		DiagnosticScans,
		CopiedVersions,
		CheckpointAttempts,
		ReplicationLatency,
	}
}

// The collectors register themselves on the default registry so any
// promhttp handler the binary mounts can serve them without extra wiring.
func init() {
	prometheus.MustRegister(collectors()...)
}

// Register adds all collectors to the given registry, for embedders that
// scrape a registry of their own instead of the default one.
func Register(r *prometheus.Registry) {
	r.MustRegister(collectors()...)
}
