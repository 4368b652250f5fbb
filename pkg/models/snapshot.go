package models

import (
	"encoding/json"
	"time"
)

// ContextState is the serializable form of an execution context. Resume
// must restore outputs, logs, statuses and the waiting set exactly, or a
// reconstructed run cannot skip already-completed tasks.
type ContextState struct {
	ID         string                  `json:"id"`
	WorkflowID string                  `json:"workflow_id"`
	Outputs    map[string]any          `json:"outputs"`
	Logs       map[string][]string     `json:"logs"`
	AuditTrail []AuditEvent            `json:"audit_trail"`
	Statuses   map[string]TaskStatus   `json:"statuses"`
	Waiting    map[string]InputRequest `json:"waiting"`
	Errors     []string                `json:"errors"`
}

// Snapshot is the durable capture of a suspended run: the original
// workflow definition, the full context state and the waiting frontier.
// It is produced exactly when the scheduler runs out of ready work while
// tasks are still waiting, and consumed exactly once by resume.
type Snapshot struct {
	ExecutionID string          `json:"execution_id"`
	Workflow    json.RawMessage `json:"workflow"`
	Context     ContextState    `json:"context"`
	Frontier    []WaitingTask   `json:"waiting_frontier"`
	CreatedAt   time.Time       `json:"created_at"`
}
