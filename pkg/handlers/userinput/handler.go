// Package userinput implements the user_input task handler: the approval
// gate that suspends a workflow until a caller responds.
package userinput

import (
	"context"
	"log/slog"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/protocol"
)

// Handler suspends on the first dispatch for a task id and completes on
// the second, once the caller's response has been recorded under that id.
// This two-phase shape is what keeps suspend/resume invisible to the
// scheduler: resuming is just dispatching the task again.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger.With("handler", models.FunctionUserInput),
	}
}

func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, taskID string, input map[string]any) (protocol.Outcome, error) {
	if response, ok := execCtx.Output(taskID); ok {
		h.logger.DebugContext(ctx, "Response present, completing input task", "task_id", taskID)

		return protocol.Completed(response), nil
	}

	request := models.DecodeInputRequest(input)

	h.logger.DebugContext(ctx, "Suspending for input", "task_id", taskID, "prompt", request.Prompt)

	return protocol.Suspended(request), nil
}
