package connect

// ConnectorStatus mirrors the status document of a connector job.
type ConnectorStatus struct {
	Name      string         `json:"name"`
	Connector ConnectorState `json:"connector"`
	Tasks     []TaskState    `json:"tasks"`
	Type      string         `json:"type"`
}

// ConnectorState is the job-level state block.
type ConnectorState struct {
	State    string `json:"state"`
	WorkerID string `json:"worker_id"`
}

// TaskState is one task's state block.
type TaskState struct {
	ID       int    `json:"id"`
	State    string `json:"state"`
	WorkerID string `json:"worker_id"`
	Trace    string `json:"trace,omitempty"`
}

// Checkpoint is an opaque progress marker body. Servers differ on its
// exact layout, so it is passed through unmodified.
type Checkpoint map[string]any
