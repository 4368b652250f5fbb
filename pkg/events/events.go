// Package events defines the lifecycle notifications the engine publishes
// for one workflow execution.
package events

import (
	"time"

	"github.com/fermata-run/fermata/pkg/models"
)

type EventType string

// Topic is the bus topic all execution events are published on.
const Topic = "fermata.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionPausedEvent    EventType = "execution.paused"
	ExecutionResumedEvent   EventType = "execution.resumed"

	TaskStartedEvent   EventType = "task.started"
	TaskCompletedEvent EventType = "task.completed"
	TaskFailedEvent    EventType = "task.failed"
)

type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	ExecutionID string    `json:"execution_id"`
	WorkflowID  string    `json:"workflow_id"`
}

type ExecutionStarted struct {
	BaseEvent

	WorkflowName string `json:"workflow_name"`
	RootTasks    int    `json:"root_tasks"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	Errors   []string      `json:"errors"`
	Duration time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

// ExecutionPaused is published when the scheduler runs out of ready work
// while tasks are still waiting for input.
type ExecutionPaused struct {
	BaseEvent

	Frontier []models.WaitingTask `json:"waiting_frontier"`
}

func (e ExecutionPaused) GetType() EventType {
	return ExecutionPausedEvent
}

type ExecutionResumed struct {
	BaseEvent

	TaskID   string `json:"task_id"`
	Accepted bool   `json:"accepted"`
}

func (e ExecutionResumed) GetType() EventType {
	return ExecutionResumedEvent
}

type TaskStarted struct {
	BaseEvent

	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`
	Function string `json:"function"`
}

func (e TaskStarted) GetType() EventType {
	return TaskStartedEvent
}

type TaskCompleted struct {
	BaseEvent

	TaskID     string            `json:"task_id"`
	Status     models.TaskStatus `json:"status"`
	DurationMs int64             `json:"duration_ms"`
}

func (e TaskCompleted) GetType() EventType {
	return TaskCompletedEvent
}

type TaskFailed struct {
	BaseEvent

	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

func (e TaskFailed) GetType() EventType {
	return TaskFailedEvent
}
