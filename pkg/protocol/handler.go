// Package protocol defines the contract between the scheduler and
// pluggable task handlers.
package protocol

import (
	"context"

	"github.com/fermata-run/fermata/pkg/execution"
)

// Handler executes one task's function. Implementations receive the shared
// execution context to read prior outputs (templated references) and to
// append their own log lines; all context mutation is internally
// serialized, so handlers may run concurrently.
type Handler interface {
	Execute(ctx context.Context, execCtx *execution.Context, taskID string, input map[string]any) (Outcome, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, execCtx *execution.Context, taskID string, input map[string]any) (Outcome, error)

func (f HandlerFunc) Execute(ctx context.Context, execCtx *execution.Context, taskID string, input map[string]any) (Outcome, error) {
	return f(ctx, execCtx, taskID, input)
}
