package connect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/giulio1979/kafka-connect-admin/internal/events"
	"github.com/giulio1979/kafka-connect-admin/pkg/metrics"
)

// PreconditionError reports a checkpoint mutation rejected because the job
// is not in a stoppable state. It is not retried; the caller must stop the
// job first.
type PreconditionError struct {
	Name   string
	Status int
	Body   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("connector %s not in a stoppable state (%d): %s", e.Name, e.Status, e.Body)
}

// ErrCheckpointFailed is returned when every verb and every per-task
// endpoint was exhausted without a single success.
var ErrCheckpointFailed = errors.New("no checkpoint endpoint accepted the mutation")

// Attempt records one probe against the server for diagnostics.
type Attempt struct {
	Verb   string `json:"verb"`
	URL    string `json:"url"`
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// TaskResult is the outcome of one per-task fallback mutation.
type TaskResult struct {
	TaskID int    `json:"taskId"`
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Body   string `json:"body,omitempty"`
}

// CheckpointResult aggregates a whole SetCheckpoint run, raw attempts
// included, so intermittent server-dialect issues stay diagnosable after
// the fact.
type CheckpointResult struct {
	OK       bool         `json:"ok"`
	Verb     string       `json:"verb,omitempty"`
	PerTask  bool         `json:"perTask"`
	Tasks    []TaskResult `json:"tasks,omitempty"`
	Attempts []Attempt    `json:"attempts"`
}

// SetCheckpoint locates a working verb/endpoint combination for writing a
// checkpoint. Server versions diverge here: newer ones accept PATCH on the
// job-level endpoint, older ones only PUT or POST, and some builds expose
// nothing but per-task endpoints. The probe order is PATCH, PUT, POST, then
// a PUT against every task; the first job-level success wins, and the
// per-task pass succeeds when at least one task accepts the write.
func (c *httpClient) SetCheckpoint(ctx context.Context, name string, cp Checkpoint) (CheckpointResult, error) {
	res := CheckpointResult{}
	url := c.base + "/connectors/" + name + "/offsets"

	for _, verb := range []string{http.MethodPatch, http.MethodPut, http.MethodPost} {
		resp, err := c.http.R().SetContext(ctx).SetBody(cp).Execute(verb, url)
		if err != nil {
			return res, err
		}
		res.Attempts = append(res.Attempts, attemptOf(verb, url, resp))
		metrics.CheckpointAttempts.WithLabelValues(verb, strconv.Itoa(resp.StatusCode())).Inc()
		c.emit(ctx, name, strings.ToLower(verb), "status="+strconv.Itoa(resp.StatusCode()))

		switch {
		case resp.IsSuccess():
			res.OK = true
			res.Verb = verb
			c.emit(ctx, name, "accepted", verb)
			return res, nil
		case isPrecondition(resp):
			c.emit(ctx, name, "precondition", "status="+strconv.Itoa(resp.StatusCode()))
			return res, &PreconditionError{Name: name, Status: resp.StatusCode(),
				Body: strings.TrimSpace(string(resp.Body()))}
		case resp.StatusCode() == http.StatusMethodNotAllowed:
			continue
		default:
			// Unexpected rejection: keep probing the remaining verbs,
			// the per-task pass may still land.
			continue
		}
	}

	status, err := c.GetStatus(ctx, name)
	if err != nil {
		c.emit(ctx, name, "failed", "status lookup: "+err.Error())
		return res, fmt.Errorf("%w: %v", ErrCheckpointFailed, err)
	}
	if len(status.Tasks) == 0 {
		c.emit(ctx, name, "failed", "no tasks to fall back to")
		return res, ErrCheckpointFailed
	}
	res.PerTask = true
	for _, task := range status.Tasks {
		turl := c.base + "/connectors/" + name + "/tasks/" + strconv.Itoa(task.ID) + "/offsets"
		resp, err := c.http.R().SetContext(ctx).SetBody(cp).Put(turl)
		if err != nil {
			res.Tasks = append(res.Tasks, TaskResult{TaskID: task.ID, OK: false, Body: err.Error()})
			continue
		}
		res.Attempts = append(res.Attempts, attemptOf(http.MethodPut, turl, resp))
		metrics.CheckpointAttempts.WithLabelValues("task-put", strconv.Itoa(resp.StatusCode())).Inc()
		tr := TaskResult{TaskID: task.ID, OK: resp.IsSuccess(), Status: resp.StatusCode()}
		if !tr.OK {
			tr.Body = strings.TrimSpace(string(resp.Body()))
		}
		res.Tasks = append(res.Tasks, tr)
		if tr.OK {
			res.OK = true
		}
	}
	if !res.OK {
		c.emit(ctx, name, "failed", "all verbs and tasks rejected")
		return res, ErrCheckpointFailed
	}
	res.Verb = "task-put"
	c.emit(ctx, name, "accepted", res.Verb)
	return res, nil
}

func (c *httpClient) emit(ctx context.Context, name, outcome, detail string) {
	if c.sink == nil {
		return
	}
	_ = c.sink.Emit(ctx, events.Event{
		Step:    events.StepCheckpoint,
		Subject: name,
		Outcome: outcome,
		Detail:  detail,
		Time:    time.Now(),
	})
}

// isPrecondition matches the rejection servers emit when the job must be
// stopped before its checkpoint can change.
func isPrecondition(resp *resty.Response) bool {
	if resp.StatusCode() != http.StatusBadRequest && resp.StatusCode() != http.StatusConflict {
		return false
	}
	body := strings.ToLower(string(resp.Body()))
	return strings.Contains(body, "stop") || resp.StatusCode() == http.StatusConflict
}

func attemptOf(verb, url string, resp *resty.Response) Attempt {
	return Attempt{Verb: verb, URL: url, Status: resp.StatusCode(),
		Body: strings.TrimSpace(string(resp.Body()))}
}
