// Package log implements a custom handler that emits a leveled, templated
// log line and records it on the task.
package log

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/fermata-run/fermata/pkg/template"
)

// Name is the registry key for this custom handler.
const Name = "log"

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger.With("handler", Name),
	}
}

func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, taskID string, input map[string]any) (protocol.Outcome, error) {
	message, ok := input["message"].(string)
	if !ok {
		return protocol.Failed(errors.New("missing required field 'message'")), nil
	}

	level := "info"
	if lvl, ok := input["level"].(string); ok && lvl != "" {
		level = lvl
	}

	rendered, err := template.RenderString(message, execCtx)
	if err != nil {
		return protocol.Failed(err), nil
	}

	logger := h.logger.With("task_id", taskID, "execution_id", execCtx.ID())

	switch level {
	case "debug":
		logger.DebugContext(ctx, rendered)
	case "warn":
		logger.WarnContext(ctx, rendered)
	case "error":
		logger.ErrorContext(ctx, rendered)
	default:
		logger.InfoContext(ctx, rendered)
	}

	execCtx.AppendLog(taskID, rendered)

	return protocol.Completed(map[string]any{
		"message": rendered,
		"level":   level,
	}), nil
}
