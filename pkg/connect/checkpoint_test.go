package connect_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giulio1979/kafka-connect-admin/internal/events"
	"github.com/giulio1979/kafka-connect-admin/pkg/connect"
)

// checkpointServer simulates a connector service with a configurable verb
// dialect for the offsets endpoint.
type checkpointServer struct {
	allow       map[string]bool // verbs accepted on the job endpoint
	precondBody string          // when set, PATCH answers 409 with this body
	tasks       []int
	taskOK      map[int]bool
	seenVerbs   []string
}

func (s *checkpointServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/connectors/job/offsets", func(w http.ResponseWriter, r *http.Request) {
		s.seenVerbs = append(s.seenVerbs, r.Method)
		if s.precondBody != "" && r.Method == http.MethodPatch {
			http.Error(w, s.precondBody, http.StatusConflict)
			return
		}
		if s.allow[r.Method] {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/connectors/job/status", func(w http.ResponseWriter, r *http.Request) {
		st := connect.ConnectorStatus{Name: "job"}
		st.Connector.State = "RUNNING"
		for _, id := range s.tasks {
			st.Tasks = append(st.Tasks, connect.TaskState{ID: id, State: "RUNNING"})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	})
	mux.HandleFunc("/connectors/job/tasks/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		if _, err := fmt.Sscanf(r.URL.Path, "/connectors/job/tasks/%d/offsets", &id); err != nil {
			http.Error(w, "bad path", http.StatusBadRequest)
			return
		}
		if s.taskOK[id] {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "task rejected", http.StatusInternalServerError)
	})
	return mux
}

func TestSetCheckpointPatchAccepted(t *testing.T) {
	srv := &checkpointServer{allow: map[string]bool{http.MethodPatch: true}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	cli := connect.NewHTTP(ts.URL)
	res, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{"offset": 5})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !res.OK || res.Verb != http.MethodPatch || res.PerTask {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Attempts) != 1 || res.Attempts[0].Status != http.StatusOK {
		t.Fatalf("attempts = %+v", res.Attempts)
	}
}

func TestSetCheckpointFallsBackToPut(t *testing.T) {
	srv := &checkpointServer{allow: map[string]bool{http.MethodPut: true}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	cli := connect.NewHTTP(ts.URL)
	res, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !res.OK || res.Verb != http.MethodPut {
		t.Fatalf("result = %+v", res)
	}
	if got := srv.seenVerbs; len(got) != 2 || got[0] != http.MethodPatch || got[1] != http.MethodPut {
		t.Fatalf("verb order = %v, want PATCH then PUT", got)
	}
}

func TestSetCheckpointFallsBackToPost(t *testing.T) {
	srv := &checkpointServer{allow: map[string]bool{http.MethodPost: true}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	cli := connect.NewHTTP(ts.URL)
	res, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !res.OK || res.Verb != http.MethodPost {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Attempts) != 3 {
		t.Fatalf("attempts = %+v, want all three verbs recorded", res.Attempts)
	}
}

func TestSetCheckpointPreconditionNotRetried(t *testing.T) {
	srv := &checkpointServer{precondBody: "Connector must be in STOPPED state"}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	cli := connect.NewHTTP(ts.URL)
	_, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{})
	var pe *connect.PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if pe.Status != http.StatusConflict || pe.Name != "job" {
		t.Fatalf("precondition = %+v", pe)
	}
	if len(srv.seenVerbs) != 1 {
		t.Fatalf("verbs = %v, precondition must not be retried", srv.seenVerbs)
	}
}

func TestSetCheckpointPerTaskAggregation(t *testing.T) {
	srv := &checkpointServer{
		allow:  map[string]bool{},
		tasks:  []int{0, 1},
		taskOK: map[int]bool{1: true},
	}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	cli := connect.NewHTTP(ts.URL)
	res, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !res.OK || !res.PerTask || res.Verb != "task-put" {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Tasks) != 2 {
		t.Fatalf("tasks = %+v", res.Tasks)
	}
	if res.Tasks[0].OK || !res.Tasks[1].OK {
		t.Fatalf("task outcomes = %+v, want task 1 only", res.Tasks)
	}
}

func TestSetCheckpointEmitsTrailEvents(t *testing.T) {
	srv := &checkpointServer{allow: map[string]bool{http.MethodPut: true}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	trail := events.NewTrail()
	cli := connect.NewHTTP(ts.URL, connect.WithSink(trail))
	if _, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	recs := trail.Records()
	if len(recs) != 3 {
		t.Fatalf("events = %+v, want patch probe, put probe, accepted", recs)
	}
	for _, e := range recs {
		if e.Step != events.StepCheckpoint || e.Subject != "job" {
			t.Fatalf("event = %+v", e)
		}
	}
	if recs[0].Outcome != "patch" || recs[1].Outcome != "put" || recs[2].Outcome != "accepted" {
		t.Fatalf("outcomes = %v %v %v", recs[0].Outcome, recs[1].Outcome, recs[2].Outcome)
	}
}

func TestSetCheckpointPreconditionOnTrail(t *testing.T) {
	srv := &checkpointServer{precondBody: "Connector must be in STOPPED state"}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	trail := events.NewTrail()
	cli := connect.NewHTTP(ts.URL, connect.WithSink(trail))
	_, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{})
	var pe *connect.PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	recs := trail.Records()
	if len(recs) == 0 || recs[len(recs)-1].Outcome != "precondition" {
		t.Fatalf("events = %+v, want trailing precondition record", recs)
	}
}

func TestSetCheckpointEverythingFails(t *testing.T) {
	srv := &checkpointServer{
		allow:  map[string]bool{},
		tasks:  []int{0},
		taskOK: map[int]bool{},
	}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	cli := connect.NewHTTP(ts.URL)
	res, err := cli.SetCheckpoint(context.Background(), "job", connect.Checkpoint{})
	if !errors.Is(err, connect.ErrCheckpointFailed) {
		t.Fatalf("err = %v, want ErrCheckpointFailed", err)
	}
	if res.OK {
		t.Fatalf("result = %+v", res)
	}
	// Three job-level probes plus one task probe, all on record.
	if len(res.Attempts) != 4 {
		t.Fatalf("attempts = %+v", res.Attempts)
	}
}
