package workflow

import (
	"time"

	"github.com/fermata-run/fermata/pkg/eventbus"
	"github.com/fermata-run/fermata/pkg/events"
	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/google/uuid"
)

// withBase stamps the shared envelope onto a lifecycle event before it is
// published.
func withBase(event eventbus.Event, execCtx *execution.Context, workflow *models.Workflow) eventbus.Event {
	base := events.BaseEvent{
		ID:          uuid.New().String(),
		Type:        event.GetType(),
		Timestamp:   time.Now().UTC(),
		ExecutionID: execCtx.ID(),
		WorkflowID:  workflow.ID,
	}

	switch typed := event.(type) {
	case events.ExecutionStarted:
		typed.BaseEvent = base

		return typed
	case events.ExecutionCompleted:
		typed.BaseEvent = base

		return typed
	case events.ExecutionFailed:
		typed.BaseEvent = base

		return typed
	case events.ExecutionPaused:
		typed.BaseEvent = base

		return typed
	case events.ExecutionResumed:
		typed.BaseEvent = base

		return typed
	case events.TaskStarted:
		typed.BaseEvent = base

		return typed
	case events.TaskCompleted:
		typed.BaseEvent = base

		return typed
	case events.TaskFailed:
		typed.BaseEvent = base

		return typed
	default:
		return event
	}
}
