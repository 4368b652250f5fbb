package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/parser"
	"github.com/fermata-run/fermata/pkg/persistence"
)

// SnapshotController captures suspended runs into the snapshot store and
// reconstructs them for resume. The original workflow document travels
// inside the snapshot, so resume needs nothing but the execution id.
type SnapshotController struct {
	snapshots persistence.SnapshotRepository
	parser    *parser.Parser
	logger    *slog.Logger
}

func NewSnapshotController(logger *slog.Logger, snapshots persistence.SnapshotRepository, p *parser.Parser) *SnapshotController {
	return &SnapshotController{
		snapshots: snapshots,
		parser:    p,
		logger:    logger.With("module", "snapshot_controller"),
	}
}

// Capture persists the suspended run. The frontier lists waiting tasks in
// tree declaration order.
func (c *SnapshotController) Capture(ctx context.Context, workflow *models.Workflow, document []byte, execCtx *execution.Context) (*models.Snapshot, error) {
	state := execCtx.State()

	frontier := make([]models.WaitingTask, 0, len(state.Waiting))
	for _, root := range workflow.Tasks {
		root.Walk(func(task *models.Task) bool {
			if request, ok := state.Waiting[task.ID]; ok {
				frontier = append(frontier, models.WaitingTask{TaskID: task.ID, Request: request})
			}

			return true
		})
	}

	snapshot := &models.Snapshot{
		ExecutionID: execCtx.ID(),
		Workflow:    json.RawMessage(document),
		Context:     state,
		Frontier:    frontier,
		CreatedAt:   time.Now().UTC(),
	}

	if err := c.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to capture snapshot: %w", err)
	}

	c.logger.InfoContext(ctx, "Captured execution snapshot",
		"execution_id", snapshot.ExecutionID,
		"waiting_tasks", len(frontier),
	)

	return snapshot, nil
}

// Reconstruct loads a snapshot and rebuilds the workflow tree and the
// execution context exactly as they were when the run suspended.
func (c *SnapshotController) Reconstruct(ctx context.Context, executionID string) (*models.Workflow, *execution.Context, *models.Snapshot, error) {
	snapshot, err := c.snapshots.LoadSnapshot(ctx, executionID)
	if err != nil {
		return nil, nil, nil, err
	}

	workflow, err := c.parser.Parse(snapshot.Workflow)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot %s carries an unparseable workflow: %w", executionID, err)
	}

	execCtx := execution.FromState(snapshot.Context)

	c.logger.InfoContext(ctx, "Reconstructed execution from snapshot",
		"execution_id", executionID,
		"workflow_id", workflow.ID,
		"waiting_tasks", len(snapshot.Frontier),
	)

	return workflow, execCtx, snapshot, nil
}

// Discard removes a snapshot once its run reaches a terminal state. A
// missing snapshot is not an error here.
func (c *SnapshotController) Discard(ctx context.Context, executionID string) error {
	err := c.snapshots.DeleteSnapshot(ctx, executionID)
	if err != nil && !persistence.IsSnapshotNotFound(err) {
		return err
	}

	return nil
}
