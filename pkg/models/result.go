package models

// ExecutionStatus is the run-level verdict carried by a WorkflowResult.
type ExecutionStatus string

const (
	ExecutionStatusCompleted       ExecutionStatus = "completed"
	ExecutionStatusFailed          ExecutionStatus = "failed"
	ExecutionStatusWaitingForInput ExecutionStatus = "waiting_for_input"
)

// TaskResult is the per-task slice of a WorkflowResult.
type TaskResult struct {
	TaskID string     `json:"task_id"`
	Name   string     `json:"name"`
	Status TaskStatus `json:"status"`
	Output any        `json:"output,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// WaitingTask is one entry of a suspended run's frontier.
type WaitingTask struct {
	TaskID  string       `json:"task_id"`
	Request InputRequest `json:"request"`
}

// WorkflowResult is the terminal snapshot of a finished or suspended run.
// It is created once by the result assembler and never mutated.
type WorkflowResult struct {
	ExecutionID  string              `json:"execution_id"`
	WorkflowName string              `json:"workflow_name"`
	Success      bool                `json:"success"`
	Status       ExecutionStatus     `json:"status"`
	Tasks        []TaskResult        `json:"tasks"`
	AuditTrail   []AuditEvent        `json:"audit_trail"`
	Logs         map[string][]string `json:"logs,omitempty"`
	Errors       []string            `json:"errors,omitempty"`
	Waiting      []WaitingTask       `json:"waiting,omitempty"`
}
