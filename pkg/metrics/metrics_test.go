package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorsOnDefaultRegistry(t *testing.T) {
	Registrations.WithLabelValues("orders-value", "confirmed").Inc()
	VerifyAttempts.WithLabelValues("orders-value", "versions").Inc()
	CheckpointAttempts.WithLabelValues("patch", "200").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got := map[string]bool{}
	for _, mf := range mfs {
		got[mf.GetName()] = true
	}
	for _, name := range []string{
		"kc_schema_registrations_total",
		"kc_verify_attempts_total",
		"kc_checkpoint_attempts_total",
	} {
		if !got[name] {
			t.Fatalf("family %s not gathered from default registry", name)
		}
	}
}

func TestRegisterCustomRegistry(t *testing.T) {
	r := prometheus.NewRegistry()
	Register(r)

	DiagnosticScans.WithLabelValues("found").Inc()
	mfs, err := r.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "kc_diagnostic_scans_total" {
			return
		}
	}
	t.Fatalf("kc_diagnostic_scans_total missing from custom registry")
}
