package replicator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/giulio1979/kafka-connect-admin/pkg/schemareg"
)

// lagClient simulates an eventually consistent registry: ListVersions only
// returns data from a given call count onward.
type lagClient struct {
	subject       string
	versions      []int
	visibleOnCall int
	versionCalls  int
	subjectLagged bool
	down          bool
}

func (c *lagClient) ListSubjects(context.Context) ([]string, error) {
	if c.down {
		return nil, errors.New("connection refused")
	}
	if c.subjectLagged {
		return []string{}, nil
	}
	return []string{c.subject}, nil
}

func (c *lagClient) ListVersions(_ context.Context, subject string) ([]int, error) {
	if c.down {
		return nil, errors.New("connection refused")
	}
	c.versionCalls++
	if subject != c.subject || c.versionCalls < c.visibleOnCall {
		return nil, fmt.Errorf("%w: %s", schemareg.ErrSubjectNotFound, subject)
	}
	return c.versions, nil
}

func (c *lagClient) GetVersion(context.Context, string, int) (schemareg.SchemaDocument, error) {
	return schemareg.SchemaDocument{}, errors.New("not implemented")
}

func (c *lagClient) GetByGlobalID(context.Context, int) (schemareg.SchemaDocument, error) {
	return schemareg.SchemaDocument{}, errors.New("not implemented")
}

func (c *lagClient) RegisterVersion(context.Context, string, schemareg.RegisterRequest) (schemareg.RegisterResponse, error) {
	return schemareg.RegisterResponse{}, errors.New("not implemented")
}

func sleepRecorder(slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestVerifyConsistentOnThirdAttempt(t *testing.T) {
	cli := &lagClient{subject: "s", versions: []int{1}, visibleOnCall: 3, subjectLagged: true}
	var slept []time.Duration
	rep := New(Config{Sleep: sleepRecorder(&slept)})

	res, err := rep.VerifySubjectRegistered(context.Background(), cli, "s", 1)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.OK || res.Method != "versions" {
		t.Fatalf("result = %+v, want ok via versions", res)
	}
	if res.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", res.Attempts)
	}
}

func TestVerifySubjectListSignal(t *testing.T) {
	// Version listing lags forever but the subject listing already shows
	// the name; either signal is sufficient.
	cli := &lagClient{subject: "s", visibleOnCall: 1 << 30}
	var slept []time.Duration
	rep := New(Config{Sleep: sleepRecorder(&slept)})

	res, err := rep.VerifySubjectRegistered(context.Background(), cli, "s", 1)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.OK || res.Method != "subjectList" {
		t.Fatalf("result = %+v, want ok via subjectList", res)
	}
	if res.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", res.Attempts)
	}
}

func TestVerifyExhaustsWithCappedBackoff(t *testing.T) {
	cli := &lagClient{subject: "s", visibleOnCall: 1 << 30, subjectLagged: true}
	var slept []time.Duration
	rep := New(Config{Sleep: sleepRecorder(&slept)})

	res, err := rep.VerifySubjectRegistered(context.Background(), cli, "s", 1)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.OK {
		t.Fatal("should not verify")
	}
	if res.Attempts != 6 {
		t.Fatalf("attempts = %d, want exactly maxAttempts", res.Attempts)
	}
	want := []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		2000 * time.Millisecond,
		2000 * time.Millisecond,
	}
	if !reflect.DeepEqual(slept, want) {
		t.Fatalf("delays = %v, want doubling capped at 2s: %v", slept, want)
	}
}

func TestVerifyUnreachableTarget(t *testing.T) {
	cli := &lagClient{subject: "s", down: true}
	var slept []time.Duration
	rep := New(Config{Sleep: sleepRecorder(&slept)})

	res, err := rep.VerifySubjectRegistered(context.Background(), cli, "s", 1)
	if !errors.Is(err, ErrTargetUnreachable) {
		t.Fatalf("err = %v, want ErrTargetUnreachable", err)
	}
	if res.OK {
		t.Fatal("unreachable target cannot verify")
	}
}

func TestVerifyMinExpectedVersions(t *testing.T) {
	cli := &lagClient{subject: "s", versions: []int{1}, visibleOnCall: 1}
	var slept []time.Duration
	rep := New(Config{Policy: Policy{VerifyAttempts: 2}, Sleep: sleepRecorder(&slept)})

	res, err := rep.VerifySubjectRegistered(context.Background(), cli, "s", 3)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	// One version listed, three expected: the version signal must not
	// fire, but the subject listing still confirms presence.
	if !res.OK || res.Method != "subjectList" {
		t.Fatalf("result = %+v, want subjectList fallback", res)
	}
}
