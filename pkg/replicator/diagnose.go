package replicator

import (
	"context"
	"fmt"
	"sort"

	"github.com/giulio1979/kafka-connect-admin/internal/events"
	"github.com/giulio1979/kafka-connect-admin/pkg/metrics"
	"github.com/giulio1979/kafka-connect-admin/pkg/normalize"
	"github.com/giulio1979/kafka-connect-admin/pkg/schemareg"
)

// FindSubjectBySchema scans the registry for a subject holding a version
// whose normalized content equals canonical exactly. It exists for the
// failure path only: when verification cannot find a subject the engine
// just wrote, the schema may have landed under another name through
// registry-side aliasing, and a full content scan is the only way left to
// locate it. The scan is O(subjects x versions) and capped by policy.
//
// A nil match with a nil error means nothing in the scanned window matched.
// Per-subject and per-version fetch errors are treated as non-matches.
func (r *Replicator) FindSubjectBySchema(ctx context.Context, client schemareg.Client, canonical string) (*DiagnosticMatch, error) {
	subjects, err := client.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects for diagnostic scan: %w", err)
	}
	if len(subjects) > r.policy.MaxSubjectsScanned {
		r.log.Warnw("diagnostic scan truncated",
			"subjects", len(subjects), "cap", r.policy.MaxSubjectsScanned)
		subjects = subjects[:r.policy.MaxSubjectsScanned]
	}

	for _, subject := range subjects {
		versions, err := client.ListVersions(ctx, subject)
		if err != nil {
			continue
		}
		sort.Ints(versions)
		for _, v := range versions {
			doc, err := client.GetVersion(ctx, subject, v)
			if err != nil {
				continue
			}
			s, _, ok := normalize.Extract(doc.RawPayload)
			if !ok {
				continue
			}
			if s == canonical {
				metrics.DiagnosticScans.WithLabelValues("found").Inc()
				r.emit(ctx, events.Event{Step: events.StepDiagnostic, Subject: subject,
					Version: v, Outcome: "match"})
				return &DiagnosticMatch{Subject: subject, Version: v}, nil
			}
		}
	}
	metrics.DiagnosticScans.WithLabelValues("not_found").Inc()
	r.emit(ctx, events.Event{Step: events.StepDiagnostic, Outcome: "no_match"})
	return nil, nil
}
