// Package web provides HTTP handlers and REST API endpoints for running
// and resuming workflow executions.
package web

import (
	"time"

	"github.com/fermata-run/fermata/pkg/models"
)

// ResumeRequest is the request body for resuming a suspended execution.
type ResumeRequest struct {
	TaskID   string `json:"task_id"            validate:"required"`
	Accepted bool   `json:"accepted"`
	Response any    `json:"response,omitempty"`
}

// ExecutionSummary is the list view of a suspended execution.
type ExecutionSummary struct {
	ExecutionID  string               `json:"execution_id"`
	WorkflowID   string               `json:"workflow_id"`
	WaitingTasks []models.WaitingTask `json:"waiting_tasks"`
	SuspendedAt  time.Time            `json:"suspended_at"`
}

// TransformExecutionSummary projects a stored snapshot into its list view.
func TransformExecutionSummary(snapshot *models.Snapshot) ExecutionSummary {
	return ExecutionSummary{
		ExecutionID:  snapshot.ExecutionID,
		WorkflowID:   snapshot.Context.WorkflowID,
		WaitingTasks: snapshot.Frontier,
		SuspendedAt:  snapshot.CreatedAt,
	}
}

// ValidateResponse reports the outcome of validating a workflow document.
type ValidateResponse struct {
	Valid      bool     `json:"valid"`
	WorkflowID string   `json:"workflow_id,omitempty"`
	Name       string   `json:"name,omitempty"`
	TaskIDs    []string `json:"task_ids,omitempty"`
}
