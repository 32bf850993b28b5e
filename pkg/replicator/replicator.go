// Package replicator copies schema versions between registries: it stages a
// subject's history in a clipboard, replays it oldest-first into a target,
// confirms every granted id by read-back, and verifies the result against
// an eventually consistent read path.
package replicator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/giulio1979/kafka-connect-admin/internal/events"
	"github.com/giulio1979/kafka-connect-admin/pkg/metrics"
	"github.com/giulio1979/kafka-connect-admin/pkg/normalize"
	"github.com/giulio1979/kafka-connect-admin/pkg/schemareg"
)

// Config assembles a Replicator.
type Config struct {
	Logger *zap.SugaredLogger
	// Sink receives trail events in addition to the built-in trail.
	Sink   events.Sink
	Policy Policy
	// Sleep replaces the inter-attempt delay. Tests inject a recorder
	// here; nil means a context-aware real sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Replicator drives copy/paste replication over a pair of registry clients.
// Requests are issued one at a time; registries run stateful compatibility
// checks per subject and replaying history concurrently trips them.
type Replicator struct {
	log    *zap.SugaredLogger
	sink   events.Sink
	trail  *events.Trail
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
}

// New returns a Replicator initialized with the given configuration.
func New(cfg Config) *Replicator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = contextSleep
	}
	return &Replicator{
		log:    logger,
		sink:   cfg.Sink,
		trail:  events.NewTrail(),
		policy: cfg.Policy.withDefaults(),
		sleep:  sleep,
	}
}

// Trail returns every event recorded so far, success paths included.
func (r *Replicator) Trail() []events.Event {
	return r.trail.Records()
}

func (r *Replicator) emit(ctx context.Context, e events.Event) {
	e.Time = time.Now()
	_ = r.trail.Emit(ctx, e)
	if r.sink != nil {
		_ = r.sink.Emit(ctx, e)
	}
}

// Copy stages versions of subject from the source registry. Pass
// schemareg.Latest as version to copy the full history; a positive version
// copies just that one. Per-version fetch failures are logged and skipped;
// Copy only fails when the subject is empty or nothing was fetchable.
func (r *Replicator) Copy(ctx context.Context, src schemareg.Client, subject string, version int) (*Clipboard, error) {
	var versions []int
	if version > 0 {
		versions = []int{version}
	} else {
		all, err := src.ListVersions(ctx, subject)
		if err != nil {
			return nil, err
		}
		versions = append(versions, all...)
		sort.Ints(versions)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySubject, subject)
	}

	clip := &Clipboard{SourceSubject: subject}
	for _, v := range versions {
		doc, err := src.GetVersion(ctx, subject, v)
		if err != nil {
			r.log.Warnw("version fetch failed, excluding from clipboard",
				"subject", subject, "version", v, "error", err)
			r.emit(ctx, events.Event{Step: events.StepCopy, Subject: subject, Version: v,
				Outcome: "fetch_failed", Detail: err.Error()})
			continue
		}
		clip.Versions = append(clip.Versions, ClipboardVersion{Version: v, Document: doc})
		r.emit(ctx, events.Event{Step: events.StepCopy, Subject: subject, Version: v, Outcome: "staged"})
	}
	if len(clip.Versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCopyFailed, subject)
	}
	metrics.CopiedVersions.WithLabelValues(subject).Add(float64(len(clip.Versions)))
	r.log.Infow("copied subject", "subject", subject, "versions", len(clip.Versions))
	return clip, nil
}

// Paste replays the clipboard into the target registry under targetSubject,
// oldest version first. Per-version failures never abort the batch; the
// returned BatchResult carries one outcome per clipboard version. A non-nil
// error is only returned when the target could not be reached at all for
// the final verification, and even then the outcomes are still returned.
func (r *Replicator) Paste(ctx context.Context, tgt schemareg.Client, clip *Clipboard, targetSubject string) (BatchResult, error) {
	res := BatchResult{TargetSubject: targetSubject}
	if clip == nil || len(clip.Versions) == 0 {
		return res, ErrEmptyClipboard
	}
	start := time.Now()

	ordered := make([]ClipboardVersion, len(clip.Versions))
	copy(ordered, clip.Versions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	var lastCanonical string
	for _, cv := range ordered {
		out := r.replayOne(ctx, tgt, targetSubject, cv, &lastCanonical)
		res.Outcomes = append(res.Outcomes, out)
	}

	verify, err := r.VerifySubjectRegistered(ctx, tgt, targetSubject, 1)
	res.FinalVerified = verify.OK
	res.VerifyMethod = verify.Method
	if err != nil {
		return res, fmt.Errorf("final verification: %w", err)
	}
	if !verify.OK && lastCanonical != "" {
		if m, derr := r.FindSubjectBySchema(ctx, tgt, lastCanonical); derr == nil && m != nil {
			res.Diagnostic = m
			r.log.Warnw("schema found under unexpected subject",
				"expected", targetSubject, "found", m.Subject, "version", m.Version)
		}
	}
	metrics.ReplicationLatency.WithLabelValues(targetSubject).Observe(time.Since(start).Seconds())
	return res, nil
}

// replayOne walks a single version through the replay state machine.
// lastCanonical is updated with the newest successfully normalized schema
// string so the diagnostic scan has something to search for.
func (r *Replicator) replayOne(ctx context.Context, tgt schemareg.Client, targetSubject string, cv ClipboardVersion, lastCanonical *string) ReplayOutcome {
	out := ReplayOutcome{Version: cv.Version, State: StateNormalizing}

	canonical, shape, ok := normalize.Extract(cv.Document.RawPayload)
	if !ok {
		out.State = StateSkipped
		out.Err = fmt.Sprintf("unrecognized payload shape for version %d", cv.Version)
		metrics.Registrations.WithLabelValues(targetSubject, "skipped").Inc()
		r.log.Warnw("normalization failed, skipping version",
			"subject", targetSubject, "version", cv.Version)
		r.emit(ctx, events.Event{Step: events.StepNormalize, Subject: targetSubject,
			Version: cv.Version, Outcome: "unrecognized"})
		return out
	}
	*lastCanonical = canonical
	r.emit(ctx, events.Event{Step: events.StepNormalize, Subject: targetSubject,
		Version: cv.Version, Outcome: "ok", Detail: shape.String()})

	out.Attempted = true
	out.State = StateRegistering
	req := schemareg.RegisterRequest{Schema: canonical, SchemaType: cv.Document.SchemaType}

	var resp schemareg.RegisterResponse
	var lastErr error
	for attempt := 1; attempt <= r.policy.RegisterAttempts; attempt++ {
		resp, lastErr = tgt.RegisterVersion(ctx, targetSubject, req)
		if lastErr == nil {
			break
		}
		r.emit(ctx, events.Event{Step: events.StepRegister, Subject: targetSubject,
			Version: cv.Version, Outcome: fmt.Sprintf("attempt_%d_failed", attempt),
			Detail: lastErr.Error()})
	}
	if lastErr != nil {
		out.State = StateFailed
		out.Err = lastErr.Error()
		metrics.Registrations.WithLabelValues(targetSubject, "failed").Inc()
		r.log.Errorw("registration failed after retries",
			"subject", targetSubject, "version", cv.Version, "error", lastErr)
		return out
	}
	out.RegistryID = resp.ID
	r.emit(ctx, events.Event{Step: events.StepRegister, Subject: targetSubject,
		Version: cv.Version, Outcome: "accepted", Detail: fmt.Sprintf("id=%d", resp.ID)})

	if resp.ID > 0 {
		// A registry that accepts a write but cannot serve it back by id
		// has not durably committed the schema.
		if _, err := tgt.GetByGlobalID(ctx, resp.ID); err != nil {
			out.State = StateRegisteredUnconfirmed
			out.Err = fmt.Sprintf("write accepted (id=%d) but read-back failed: %v", resp.ID, err)
			metrics.Registrations.WithLabelValues(targetSubject, "unconfirmed").Inc()
			r.log.Warnw("registration unconfirmed: id read-back failed",
				"subject", targetSubject, "version", cv.Version, "id", resp.ID, "error", err)
			r.emit(ctx, events.Event{Step: events.StepReadBack, Subject: targetSubject,
				Version: cv.Version, Outcome: "failed", Detail: err.Error()})
			return out
		}
		r.emit(ctx, events.Event{Step: events.StepReadBack, Subject: targetSubject,
			Version: cv.Version, Outcome: "ok"})
	}
	out.State = StateRegisteredConfirmed
	out.Registered = true
	metrics.Registrations.WithLabelValues(targetSubject, "confirmed").Inc()
	return out
}

// RegisterOne is the single-version path: one registration, then a short
// linear-delay verification loop instead of the batch verifier.
func (r *Replicator) RegisterOne(ctx context.Context, tgt schemareg.Client, targetSubject string, doc schemareg.SchemaDocument) (ReplayOutcome, bool, error) {
	var lastCanonical string
	out := r.replayOne(ctx, tgt, targetSubject, ClipboardVersion{Version: doc.Version, Document: doc}, &lastCanonical)
	if !out.Registered {
		return out, false, nil
	}
	for attempt := 1; attempt <= r.policy.SingleVerifyAttempts; attempt++ {
		versions, err := tgt.ListVersions(ctx, targetSubject)
		metrics.VerifyAttempts.WithLabelValues(targetSubject, "versions").Inc()
		if err == nil && len(versions) > 0 {
			return out, true, nil
		}
		if serr := r.sleep(ctx, time.Duration(attempt)*r.policy.SingleVerifyStep); serr != nil {
			return out, false, serr
		}
	}
	return out, false, nil
}

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
