// Package models defines the core domain models for tree-based workflow execution.
package models

// TaskStatus defines the lifecycle states of a single task. Cancelled is
// reached two ways: a rejected input request on a waiting task, and
// subtree pruning, which moves still-pending descendants of a failed or
// rejected task straight from pending to cancelled so they can never
// become ready.
type TaskStatus string

const (
	TaskStatusPending         TaskStatus = "pending"
	TaskStatusRunning         TaskStatus = "running"
	TaskStatusComplete        TaskStatus = "complete"
	TaskStatusFailed          TaskStatus = "failed"
	TaskStatusWaitingForInput TaskStatus = "waiting_for_input"
	TaskStatusCancelled       TaskStatus = "cancelled"
)

// IsTerminal reports whether a task in this status can never run again.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusComplete || s == TaskStatusFailed || s == TaskStatusCancelled
}

// Task is a node in the workflow tree. Children in NextTasks are inline
// values owned by their parent, so the tree is acyclic by construction and
// a task id can appear only once (the parser enforces global uniqueness).
type Task struct {
	ID        string   `json:"id"                   validate:"required"`
	Name      string   `json:"name"`
	Function  Function `json:"function"             validate:"required"`
	NextTasks []*Task  `json:"next_tasks,omitempty"`
}

// Walk visits the task and every descendant, depth first. The visitor
// returning false stops the walk.
func (t *Task) Walk(visit func(*Task) bool) bool {
	if !visit(t) {
		return false
	}

	for _, child := range t.NextTasks {
		if !child.Walk(visit) {
			return false
		}
	}

	return true
}
