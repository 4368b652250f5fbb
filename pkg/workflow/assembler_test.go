package workflow_test

import (
	"testing"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleDeclarationOrderAndStatuses(t *testing.T) {
	wf := &models.Workflow{
		ID:   "asm",
		Name: "assembler",
		Tasks: []*models.Task{
			customTask("first", customTask("child")),
			customTask("second"),
		},
	}

	execCtx := execution.NewContext("exec-asm", wf.ID)
	execCtx.SetStatus("first", models.TaskStatusComplete)
	execCtx.RecordOutput("first", "ok")
	execCtx.SetStatus("child", models.TaskStatusFailed)
	execCtx.AppendAudit(models.AuditEvent{
		TaskID:  "child",
		Status:  models.TaskStatusFailed,
		Message: "exit status 2",
	})
	execCtx.AppendError("task child: exit status 2")

	result := workflow.Assemble(wf, execCtx)

	require.Len(t, result.Tasks, 3)
	assert.Equal(t, []string{"first", "child", "second"}, []string{
		result.Tasks[0].TaskID, result.Tasks[1].TaskID, result.Tasks[2].TaskID,
	})

	assert.Equal(t, models.TaskStatusComplete, result.Tasks[0].Status)
	assert.Equal(t, "ok", result.Tasks[0].Output)

	assert.Equal(t, models.TaskStatusFailed, result.Tasks[1].Status)
	assert.Equal(t, "exit status 2", result.Tasks[1].Error)

	// A task that never ran reports as pending.
	assert.Equal(t, models.TaskStatusPending, result.Tasks[2].Status)

	assert.Equal(t, models.ExecutionStatusFailed, result.Status)
	assert.False(t, result.Success)
}

func TestAssembleWaitingFrontierWins(t *testing.T) {
	wf := &models.Workflow{
		ID:    "asm-wait",
		Name:  "assembler waiting",
		Tasks: []*models.Task{customTask("gate")},
	}

	execCtx := execution.NewContext("exec-asm-wait", wf.ID)
	execCtx.SetStatus("gate", models.TaskStatusWaitingForInput)
	execCtx.MarkWaiting("gate", models.InputRequest{Prompt: "Go on?"})

	result := workflow.Assemble(wf, execCtx)

	assert.Equal(t, models.ExecutionStatusWaitingForInput, result.Status)
	assert.False(t, result.Success)
	require.Len(t, result.Waiting, 1)
	assert.Equal(t, "gate", result.Waiting[0].TaskID)
	assert.Equal(t, "Go on?", result.Waiting[0].Request.Prompt)
}
