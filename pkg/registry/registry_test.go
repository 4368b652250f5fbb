package registry

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(slog.Default())
	reg.Register("upper", protocol.HandlerFunc(func(_ context.Context, _ *execution.Context, taskID string, input map[string]any) (protocol.Outcome, error) {
		return protocol.Completed(map[string]any{"task": taskID, "echo": input["value"]}), nil
	}))

	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := reg.Dispatch(context.Background(), "upper", execCtx, "t1", map[string]any{"value": "hi"})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeCompleted, outcome.Status)
	assert.Equal(t, map[string]any{"task": "t1", "echo": "hi"}, outcome.Output)
}

func TestRegistryDispatchUnknownFunction(t *testing.T) {
	reg := NewRegistry(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	_, err := reg.Dispatch(context.Background(), "nope", execCtx, "t1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestRegistryDispatchWrapsHandlerError(t *testing.T) {
	sentinel := errors.New("boom")

	reg := NewRegistry(slog.Default())
	reg.Register("explode", protocol.HandlerFunc(func(_ context.Context, _ *execution.Context, _ string, _ map[string]any) (protocol.Outcome, error) {
		return protocol.Outcome{}, sentinel
	}))

	execCtx := execution.NewContext("exec-1", "wf-1")

	_, err := reg.Dispatch(context.Background(), "explode", execCtx, "t9", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)

	var handlerErr *HandlerError
	require.ErrorAs(t, err, &handlerErr)
	assert.Equal(t, "explode", handlerErr.Function)
	assert.Equal(t, "t9", handlerErr.TaskID)
}

func TestRegisterDefaultHandlers(t *testing.T) {
	reg := NewRegistry(slog.Default())
	reg.RegisterDefaultHandlers()

	assert.True(t, reg.Registered(models.FunctionCLICommand))
	assert.True(t, reg.Registered(models.FunctionUserInput))
	assert.True(t, reg.Registered("log"))
	assert.True(t, reg.Registered("http_request"))
}

func TestRegistriesAreIndependent(t *testing.T) {
	regA := NewRegistry(slog.Default())
	regB := NewRegistry(slog.Default())

	regA.Register("only-a", protocol.HandlerFunc(func(_ context.Context, _ *execution.Context, _ string, _ map[string]any) (protocol.Outcome, error) {
		return protocol.Completed(nil), nil
	}))

	assert.True(t, regA.Registered("only-a"))
	assert.False(t, regB.Registered("only-a"))
}
