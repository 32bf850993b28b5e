package replicator

import (
	"context"
	"errors"
	"fmt"

	"github.com/giulio1979/kafka-connect-admin/internal/events"
	"github.com/giulio1979/kafka-connect-admin/pkg/metrics"
	"github.com/giulio1979/kafka-connect-admin/pkg/schemareg"
)

// VerifyResult reports how a subject registration was confirmed.
type VerifyResult struct {
	OK bool
	// Method names the signal that confirmed the subject: "versions" when
	// the version listing carried enough entries, "subjectList" when the
	// subject appeared in the registry-wide subject list.
	Method   string
	Attempts int
	Evidence string
}

// VerifySubjectRegistered confirms that subject exists on the target using
// two independent read signals per attempt, retrying with a doubling delay
// because registries surface writes on their read paths late. A verification
// miss is a warning condition, not proof the write failed.
//
// The returned error is non-nil only when the registry was unreachable on
// every attempt; a reachable registry that simply never shows the subject
// yields OK=false with a nil error.
func (r *Replicator) VerifySubjectRegistered(ctx context.Context, client schemareg.Client, subject string, minExpectedVersions int) (VerifyResult, error) {
	if minExpectedVersions < 1 {
		minExpectedVersions = 1
	}
	res := VerifyResult{}
	delay := r.policy.VerifyInitialDelay
	reachable := false
	var lastErr error

	for attempt := 1; attempt <= r.policy.VerifyAttempts; attempt++ {
		res.Attempts = attempt

		versions, err := client.ListVersions(ctx, subject)
		metrics.VerifyAttempts.WithLabelValues(subject, "versions").Inc()
		if err == nil {
			reachable = true
			if len(versions) >= minExpectedVersions {
				res.OK = true
				res.Method = "versions"
				res.Evidence = fmt.Sprintf("%d versions listed", len(versions))
				r.emit(ctx, events.Event{Step: events.StepVerify, Subject: subject,
					Outcome: "confirmed", Detail: res.Evidence})
				return res, nil
			}
		} else if errors.Is(err, schemareg.ErrSubjectNotFound) {
			reachable = true
		} else {
			lastErr = err
		}

		subjects, err := client.ListSubjects(ctx)
		metrics.VerifyAttempts.WithLabelValues(subject, "subjectList").Inc()
		if err == nil {
			reachable = true
			for _, s := range subjects {
				if s == subject {
					res.OK = true
					res.Method = "subjectList"
					res.Evidence = "subject present in registry listing"
					r.emit(ctx, events.Event{Step: events.StepVerify, Subject: subject,
						Outcome: "confirmed", Detail: res.Evidence})
					return res, nil
				}
			}
		} else {
			lastErr = err
		}

		r.emit(ctx, events.Event{Step: events.StepVerify, Subject: subject,
			Outcome: fmt.Sprintf("attempt_%d_miss", attempt)})
		if serr := r.sleep(ctx, delay); serr != nil {
			return res, serr
		}
		delay *= 2
		if delay > r.policy.VerifyMaxDelay {
			delay = r.policy.VerifyMaxDelay
		}
	}

	r.log.Warnw("verification exhausted", "subject", subject, "attempts", res.Attempts)
	r.emit(ctx, events.Event{Step: events.StepVerify, Subject: subject, Outcome: "exhausted"})
	if !reachable {
		return res, fmt.Errorf("%w: %v", ErrTargetUnreachable, lastErr)
	}
	return res, nil
}
