// Package registry maps function names to executable task handlers.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/protocol"
)

// ErrUnknownFunction indicates a dispatch on a name nothing registered.
// The scheduler treats it as an ordinary task failure, never a crash.
var ErrUnknownFunction = errors.New("unknown function")

// HandlerError wraps a handler-level failure with the function name and
// task it occurred on.
type HandlerError struct {
	Function string
	TaskID   string
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %q failed for task %s: %v", e.Function, e.TaskID, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Registry is an explicit handler table passed into the executor at
// construction time. It is not a hidden global, so concurrent engine
// instances (tests included) never share mutable state.
type Registry struct {
	logger   *slog.Logger
	handlers map[string]protocol.Handler
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger,
		handlers: make(map[string]protocol.Handler),
	}
}

// Register binds a handler to a function name. Registering the same name
// twice replaces the previous handler.
func (r *Registry) Register(name string, handler protocol.Handler) {
	r.handlers[name] = handler
}

// Registered reports whether a handler exists for the given name.
func (r *Registry) Registered(name string) bool {
	_, ok := r.handlers[name]

	return ok
}

// Names returns every registered function name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}

	return names
}

// Dispatch routes a task to the handler registered under name. An
// unregistered name yields ErrUnknownFunction; handler errors come back
// wrapped with function and task identifiers.
func (r *Registry) Dispatch(ctx context.Context, name string, execCtx *execution.Context, taskID string, input map[string]any) (protocol.Outcome, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return protocol.Outcome{}, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	outcome, err := handler.Execute(ctx, execCtx, taskID, input)
	if err != nil {
		return protocol.Outcome{}, &HandlerError{Function: name, TaskID: taskID, Err: err}
	}

	return outcome, nil
}
