// Package workflow contains the execution engine: the concurrent task
// scheduler, the snapshot controller and the result assembler, tied
// together by the Runner facade.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fermata-run/fermata/pkg/eventbus"
	"github.com/fermata-run/fermata/pkg/events"
	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/otelhelper"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/fermata-run/fermata/pkg/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Executor schedules tasks over the workflow tree. Siblings that become
// ready in the same round run concurrently; a task's children become
// ready only after the task completes.
type Executor struct {
	registry  *registry.Registry
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
}

func NewExecutor(logger *slog.Logger, reg *registry.Registry) *Executor {
	return &Executor{
		registry: reg,
		logger:   logger.With("module", "workflow_executor"),
	}
}

// WithEventPublisher enables lifecycle event publishing for task and
// execution transitions.
func (e *Executor) WithEventPublisher(publisher eventbus.EventPublisher) *Executor {
	e.publisher = publisher

	return e
}

// WithTracer enables per-task tracing spans.
func (e *Executor) WithTracer(tracer trace.Tracer) *Executor {
	e.tracer = tracer

	return e
}

// ReadyRoots collects the entry round for a run: every root whose subtree
// still has runnable work. Completed tasks are skipped in favor of their
// children, failed and cancelled subtrees are pruned.
func ReadyRoots(workflow *models.Workflow, execCtx *execution.Context) []*models.Task {
	ready := make([]*models.Task, 0, len(workflow.Tasks))
	for _, root := range workflow.Tasks {
		ready = append(ready, readyIn(root, execCtx)...)
	}

	return ready
}

func readyIn(task *models.Task, execCtx *execution.Context) []*models.Task {
	switch execCtx.Status(task.ID) {
	case models.TaskStatusComplete:
		ready := make([]*models.Task, 0, len(task.NextTasks))
		for _, child := range task.NextTasks {
			ready = append(ready, readyIn(child, execCtx)...)
		}

		return ready
	case models.TaskStatusFailed, models.TaskStatusCancelled:
		return nil
	default:
		return []*models.Task{task}
	}
}

// Execute runs rounds of ready tasks until no task can make progress.
// The context accumulates every transition; callers inspect it afterwards
// to decide whether the run completed, failed or suspended.
func (e *Executor) Execute(ctx context.Context, workflow *models.Workflow, execCtx *execution.Context, round []*models.Task) error {
	for len(round) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("execution interrupted: %w", err)
		}

		e.logger.DebugContext(ctx, "Dispatching round",
			"execution_id", execCtx.ID(),
			"tasks", len(round),
		)

		var wg sync.WaitGroup

		for _, task := range round {
			wg.Add(1)

			go func(task *models.Task) {
				defer wg.Done()
				e.runTask(ctx, workflow, execCtx, task)
			}(task)
		}

		wg.Wait()

		next := make([]*models.Task, 0)

		for _, task := range round {
			if execCtx.Status(task.ID) != models.TaskStatusComplete {
				continue
			}

			for _, child := range task.NextTasks {
				if !execCtx.Status(child.ID).IsTerminal() {
					next = append(next, child)
				}
			}
		}

		round = next
	}

	return nil
}

func (e *Executor) runTask(ctx context.Context, workflow *models.Workflow, execCtx *execution.Context, task *models.Task) {
	logger := e.logger.With(
		"execution_id", execCtx.ID(),
		"task_id", task.ID,
		"function", task.Function.Name,
	)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "task.execute",
			attribute.String(otelhelper.ExecutionIDKey, execCtx.ID()),
			attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
			attribute.String(otelhelper.TaskIDKey, task.ID),
			attribute.String(otelhelper.FunctionKey, task.Function.Name),
		)
		defer span.End()
	}

	startedAt := time.Now().UTC()

	execCtx.SetStatus(task.ID, models.TaskStatusRunning)
	execCtx.AppendAudit(models.AuditEvent{
		TaskID:       task.ID,
		Status:       models.TaskStatusRunning,
		ChangesCount: 0,
	})

	e.publish(ctx, execCtx, workflow, events.TaskStarted{
		TaskID:   task.ID,
		TaskName: task.Name,
		Function: task.Function.Name,
	})

	logger.InfoContext(ctx, "Executing task")

	handlerName := task.Function.HandlerName()
	if handlerName == "" {
		e.failTask(ctx, workflow, execCtx, task, fmt.Errorf("custom function on task %s names no handler", task.ID))

		return
	}

	outcome, err := e.registry.Dispatch(ctx, handlerName, execCtx, task.ID, task.Function.Input)
	if err != nil {
		e.failTask(ctx, workflow, execCtx, task, err)

		return
	}

	switch outcome.Status {
	case protocol.OutcomeCompleted:
		execCtx.RecordOutput(task.ID, outcome.Output)
		execCtx.ClearWaiting(task.ID)
		execCtx.SetStatus(task.ID, models.TaskStatusComplete)
		execCtx.AppendAudit(models.AuditEvent{
			TaskID:       task.ID,
			Status:       models.TaskStatusComplete,
			ChangesCount: 1,
		})

		e.publish(ctx, execCtx, workflow, events.TaskCompleted{
			TaskID:     task.ID,
			Status:     models.TaskStatusComplete,
			DurationMs: time.Since(startedAt).Milliseconds(),
		})

		logger.InfoContext(ctx, "Task completed", "duration", time.Since(startedAt))
	case protocol.OutcomeSuspended:
		request := models.InputRequest{}
		if outcome.Request != nil {
			request = *outcome.Request
		}

		execCtx.MarkWaiting(task.ID, request)
		execCtx.SetStatus(task.ID, models.TaskStatusWaitingForInput)
		execCtx.AppendAudit(models.AuditEvent{
			TaskID:       task.ID,
			Status:       models.TaskStatusWaitingForInput,
			Message:      request.Prompt,
			ChangesCount: 0,
		})

		logger.InfoContext(ctx, "Task waiting for input", "prompt", request.Prompt)
	case protocol.OutcomeFailed:
		e.failTask(ctx, workflow, execCtx, task, outcome.Err)
	}
}

// failTask records the failure and prunes the task's subtree. Siblings
// and unrelated branches are untouched.
func (e *Executor) failTask(ctx context.Context, workflow *models.Workflow, execCtx *execution.Context, task *models.Task, taskErr error) {
	message := "task failed"
	if taskErr != nil {
		message = taskErr.Error()
	}

	execCtx.ClearWaiting(task.ID)
	execCtx.SetStatus(task.ID, models.TaskStatusFailed)
	execCtx.AppendAudit(models.AuditEvent{
		TaskID:       task.ID,
		Status:       models.TaskStatusFailed,
		Message:      message,
		ChangesCount: 0,
	})
	execCtx.AppendError(fmt.Sprintf("task %s: %s", task.ID, message))

	if taskErr != nil {
		otelhelper.SetError(trace.SpanFromContext(ctx), taskErr,
			attribute.String(otelhelper.TaskIDKey, task.ID),
		)
	}

	e.publish(ctx, execCtx, workflow, events.TaskFailed{
		TaskID: task.ID,
		Error:  message,
	})

	e.logger.WarnContext(ctx, "Task failed",
		"execution_id", execCtx.ID(),
		"task_id", task.ID,
		"error", message,
	)

	for _, child := range task.NextTasks {
		cancelSubtree(execCtx, child)
	}
}

// cancelSubtree marks a branch as cancelled so it never becomes ready.
// Pruned descendants go straight from pending to cancelled; the audit
// trail records that transition per task.
func cancelSubtree(execCtx *execution.Context, task *models.Task) {
	task.Walk(func(t *models.Task) bool {
		if execCtx.Status(t.ID).IsTerminal() {
			return true
		}

		execCtx.ClearWaiting(t.ID)
		execCtx.SetStatus(t.ID, models.TaskStatusCancelled)
		execCtx.AppendAudit(models.AuditEvent{
			TaskID:       t.ID,
			Status:       models.TaskStatusCancelled,
			ChangesCount: 0,
		})

		return true
	})
}

func (e *Executor) publish(ctx context.Context, execCtx *execution.Context, workflow *models.Workflow, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, execCtx.ID(), withBase(event, execCtx, workflow)); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}
