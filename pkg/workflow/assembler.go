package workflow

import (
	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
)

// Assemble folds the accumulated execution context into the immutable
// result the caller receives. Tasks appear in tree declaration order; the
// audit trail keeps its chronological append order.
func Assemble(workflow *models.Workflow, execCtx *execution.Context) *models.WorkflowResult {
	state := execCtx.State()

	tasks := make([]models.TaskResult, 0)
	waiting := make([]models.WaitingTask, 0)
	failures := failureMessages(state.AuditTrail)

	for _, root := range workflow.Tasks {
		root.Walk(func(task *models.Task) bool {
			status := state.Statuses[task.ID]
			if status == "" {
				status = models.TaskStatusPending
			}

			result := models.TaskResult{
				TaskID: task.ID,
				Name:   task.Name,
				Status: status,
			}

			if output, ok := state.Outputs[task.ID]; ok {
				result.Output = output
			}

			if status == models.TaskStatusFailed {
				result.Error = failures[task.ID]
			}

			if request, ok := state.Waiting[task.ID]; ok {
				waiting = append(waiting, models.WaitingTask{TaskID: task.ID, Request: request})
			}

			tasks = append(tasks, result)

			return true
		})
	}

	status := models.ExecutionStatusCompleted
	if len(state.Errors) > 0 {
		status = models.ExecutionStatusFailed
	}

	if len(waiting) > 0 {
		status = models.ExecutionStatusWaitingForInput
	}

	return &models.WorkflowResult{
		ExecutionID:  state.ID,
		WorkflowName: workflow.Name,
		Success:      status == models.ExecutionStatusCompleted,
		Status:       status,
		Tasks:        tasks,
		AuditTrail:   state.AuditTrail,
		Logs:         state.Logs,
		Errors:       state.Errors,
		Waiting:      waiting,
	}
}

// failureMessages keeps the last failure message per task; re-dispatched
// tasks overwrite earlier entries.
func failureMessages(trail []models.AuditEvent) map[string]string {
	failures := make(map[string]string)

	for _, event := range trail {
		if event.Status == models.TaskStatusFailed {
			failures[event.TaskID] = event.Message
		}
	}

	return failures
}
