package replicator

import (
	"errors"
	"time"

	"github.com/giulio1979/kafka-connect-admin/pkg/schemareg"
)

var (
	// ErrEmptySubject is returned by Copy when the source subject has no
	// versions at all.
	ErrEmptySubject = errors.New("subject has no versions")
	// ErrCopyFailed is returned by Copy when every version fetch failed.
	ErrCopyFailed = errors.New("no version could be copied")
	// ErrEmptyClipboard is returned by Paste when the clipboard holds
	// nothing to replay.
	ErrEmptyClipboard = errors.New("clipboard is empty")
	// ErrTargetUnreachable is returned when the target registry could not
	// be reached at all during final verification.
	ErrTargetUnreachable = errors.New("target registry unreachable")
)

// ClipboardVersion pairs a version number with its fetched document.
type ClipboardVersion struct {
	Version  int
	Document schemareg.SchemaDocument
}

// Clipboard stages one subject's copied version set between a Copy and any
// number of Pastes. It is a plain value owned by the caller; the engine
// holds no process-wide buffer.
type Clipboard struct {
	SourceSubject string
	Versions      []ClipboardVersion
}

// VersionState tracks a version through the replay pipeline.
type VersionState int

const (
	StatePending VersionState = iota
	StateNormalizing
	StateSkipped
	StateRegistering
	StateRegisteredConfirmed
	StateRegisteredUnconfirmed
	StateFailed
)

func (s VersionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateNormalizing:
		return "normalizing"
	case StateSkipped:
		return "skipped"
	case StateRegistering:
		return "registering"
	case StateRegisteredConfirmed:
		return "registered_confirmed"
	case StateRegisteredUnconfirmed:
		return "registered_unconfirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ReplayOutcome is the per-version result of a Paste.
// Registered is only true for confirmed writes: a write whose read-back by
// global id failed stays Registered=false with State
// StateRegisteredUnconfirmed.
type ReplayOutcome struct {
	Version    int
	State      VersionState
	Attempted  bool
	Registered bool
	RegistryID int
	Err        string
}

// DiagnosticMatch locates a schema found under an unexpected subject.
type DiagnosticMatch struct {
	Subject string
	Version int
}

// BatchResult aggregates a whole Paste.
type BatchResult struct {
	TargetSubject string
	Outcomes      []ReplayOutcome
	FinalVerified bool
	VerifyMethod  string
	Diagnostic    *DiagnosticMatch
}

// Policy holds the retry budgets and delays of the engine. The counts and
// delays were tuned against real registries; treat them as configuration,
// not constants.
type Policy struct {
	// RegisterAttempts is the per-version registration budget in Paste.
	RegisterAttempts int
	// VerifyAttempts bounds VerifySubjectRegistered.
	VerifyAttempts int
	// VerifyInitialDelay is the first inter-attempt delay; it doubles
	// each attempt up to VerifyMaxDelay.
	VerifyInitialDelay time.Duration
	VerifyMaxDelay     time.Duration
	// SingleVerifyAttempts and SingleVerifyStep drive the linear retry of
	// the single-version registration path.
	SingleVerifyAttempts int
	SingleVerifyStep     time.Duration
	// MaxSubjectsScanned caps the diagnostic content scan.
	MaxSubjectsScanned int
}

// DefaultPolicy returns the stock budgets.
func DefaultPolicy() Policy {
	return Policy{
		RegisterAttempts:     3,
		VerifyAttempts:       6,
		VerifyInitialDelay:   200 * time.Millisecond,
		VerifyMaxDelay:       2 * time.Second,
		SingleVerifyAttempts: 3,
		SingleVerifyStep:     400 * time.Millisecond,
		MaxSubjectsScanned:   100,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.RegisterAttempts <= 0 {
		p.RegisterAttempts = d.RegisterAttempts
	}
	if p.VerifyAttempts <= 0 {
		p.VerifyAttempts = d.VerifyAttempts
	}
	if p.VerifyInitialDelay <= 0 {
		p.VerifyInitialDelay = d.VerifyInitialDelay
	}
	if p.VerifyMaxDelay <= 0 {
		p.VerifyMaxDelay = d.VerifyMaxDelay
	}
	if p.SingleVerifyAttempts <= 0 {
		p.SingleVerifyAttempts = d.SingleVerifyAttempts
	}
	if p.SingleVerifyStep <= 0 {
		p.SingleVerifyStep = d.SingleVerifyStep
	}
	if p.MaxSubjectsScanned <= 0 {
		p.MaxSubjectsScanned = d.MaxSubjectsScanned
	}
	return p
}
