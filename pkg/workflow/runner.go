package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fermata-run/fermata/pkg/eventbus"
	"github.com/fermata-run/fermata/pkg/events"
	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/otelhelper"
	"github.com/fermata-run/fermata/pkg/parser"
	"github.com/fermata-run/fermata/pkg/persistence"
	"github.com/fermata-run/fermata/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrTaskNotWaiting is returned when a resume targets a task that is not
// in the suspended run's waiting frontier.
var ErrTaskNotWaiting = errors.New("task is not waiting for input")

// Runner is the engine facade: it parses a workflow document, drives the
// executor, captures snapshots on suspension and assembles the result.
type Runner struct {
	parser     *parser.Parser
	executor   *Executor
	controller *SnapshotController
	publisher  eventbus.EventPublisher
	tracer     trace.Tracer
	logger     *slog.Logger
}

func NewRunner(logger *slog.Logger, reg *registry.Registry, snapshots persistence.SnapshotRepository) *Runner {
	p := parser.NewParser()

	return &Runner{
		parser:     p,
		executor:   NewExecutor(logger, reg),
		controller: NewSnapshotController(logger, snapshots, p),
		logger:     logger.With("module", "workflow_runner"),
	}
}

// WithEventPublisher enables lifecycle event publishing for the run.
func (r *Runner) WithEventPublisher(publisher eventbus.EventPublisher) *Runner {
	r.publisher = publisher
	r.executor.WithEventPublisher(publisher)

	return r
}

// WithTracer enables tracing spans around executions and tasks.
func (r *Runner) WithTracer(tracer trace.Tracer) *Runner {
	r.tracer = tracer
	r.executor.WithTracer(tracer)

	return r
}

// Run parses and executes a workflow document from its roots. A run that
// suspends leaves a snapshot behind and reports the waiting frontier in
// the result.
func (r *Runner) Run(ctx context.Context, document []byte) (*models.WorkflowResult, error) {
	workflow, err := r.parser.Parse(document)
	if err != nil {
		return nil, err
	}

	executionID := generateExecutionID()
	execCtx := execution.NewContext(executionID, workflow.ID)

	if r.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, r.tracer, "workflow.run",
			attribute.String(otelhelper.ExecutionIDKey, executionID),
			attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
			attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
		)
		defer span.End()
	}

	r.logger.InfoContext(ctx, "Starting workflow execution",
		"execution_id", executionID,
		"workflow_id", workflow.ID,
		"workflow_name", workflow.Name,
	)

	r.publish(ctx, execCtx, workflow, events.ExecutionStarted{
		WorkflowName: workflow.Name,
		RootTasks:    len(workflow.Tasks),
	})

	startedAt := time.Now().UTC()

	err = r.executor.Execute(ctx, workflow, execCtx, ReadyRoots(workflow, execCtx))
	if err != nil {
		return nil, err
	}

	return r.finish(ctx, workflow, document, execCtx, startedAt)
}

// Resume feeds an input response into a suspended run and continues
// execution. An accepted response completes the waiting task with the
// supplied value; a rejected one cancels the task and its subtree.
func (r *Runner) Resume(ctx context.Context, executionID string, response models.InputResponse) (*models.WorkflowResult, error) {
	workflow, execCtx, snapshot, err := r.controller.Reconstruct(ctx, executionID)
	if err != nil {
		return nil, err
	}

	request, waiting := execCtx.Waiting()[response.TaskID]
	if !waiting {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotWaiting, response.TaskID)
	}

	task := workflow.FindTask(response.TaskID)
	if task == nil {
		return nil, fmt.Errorf("%w: %s is not part of workflow %s", ErrTaskNotWaiting, response.TaskID, workflow.ID)
	}

	if r.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, r.tracer, "workflow.resume",
			attribute.String(otelhelper.ExecutionIDKey, executionID),
			attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
			attribute.String(otelhelper.TaskIDKey, response.TaskID),
		)
		defer span.End()
	}

	r.logger.InfoContext(ctx, "Resuming workflow execution",
		"execution_id", executionID,
		"task_id", response.TaskID,
		"accepted", response.Accepted,
	)

	r.publish(ctx, execCtx, workflow, events.ExecutionResumed{
		TaskID:   response.TaskID,
		Accepted: response.Accepted,
	})

	startedAt := time.Now().UTC()

	var round []*models.Task

	if response.Accepted {
		value := response.Response
		if value == nil {
			value = request.Default
		}

		execCtx.RecordOutput(task.ID, value)
		execCtx.ClearWaiting(task.ID)

		round = []*models.Task{task}
	} else {
		execCtx.ClearWaiting(task.ID)
		execCtx.SetStatus(task.ID, models.TaskStatusCancelled)
		execCtx.AppendAudit(models.AuditEvent{
			TaskID:       task.ID,
			Status:       models.TaskStatusCancelled,
			Message:      "input rejected",
			ChangesCount: 0,
		})

		for _, child := range task.NextTasks {
			cancelSubtree(execCtx, child)
		}
	}

	err = r.executor.Execute(ctx, workflow, execCtx, round)
	if err != nil {
		return nil, err
	}

	return r.finish(ctx, workflow, snapshot.Workflow, execCtx, startedAt)
}

// finish settles the run: a still-waiting context is captured as a
// snapshot, a terminal one discards any previous snapshot. Either way the
// assembled result is returned.
func (r *Runner) finish(ctx context.Context, workflow *models.Workflow, document []byte, execCtx *execution.Context, startedAt time.Time) (*models.WorkflowResult, error) {
	duration := time.Since(startedAt)

	if execCtx.HasWaiting() {
		snapshot, err := r.controller.Capture(ctx, workflow, document, execCtx)
		if err != nil {
			return nil, err
		}

		r.publish(ctx, execCtx, workflow, events.ExecutionPaused{
			Frontier: snapshot.Frontier,
		})
	} else {
		if err := r.controller.Discard(ctx, execCtx.ID()); err != nil {
			r.logger.WarnContext(ctx, "Failed to discard snapshot",
				"execution_id", execCtx.ID(),
				"error", err,
			)
		}

		if execCtx.HasErrors() {
			r.publish(ctx, execCtx, workflow, events.ExecutionFailed{
				Errors:   execCtx.Errors(),
				Duration: duration,
			})
		} else {
			r.publish(ctx, execCtx, workflow, events.ExecutionCompleted{
				Success:  true,
				Duration: duration,
			})
		}
	}

	result := Assemble(workflow, execCtx)

	r.logger.InfoContext(ctx, "Workflow execution settled",
		"execution_id", result.ExecutionID,
		"status", result.Status,
		"duration", duration,
	)

	return result, nil
}

func (r *Runner) publish(ctx context.Context, execCtx *execution.Context, workflow *models.Workflow, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, execCtx.ID(), withBase(event, execCtx, workflow)); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

// generateExecutionID returns a short unique execution id.
func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
