package clicommand

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerEchoSucceeds(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "t1", map[string]any{
		"command": "echo",
		"args":    []any{"Hello World"},
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeCompleted, outcome.Status)

	output, ok := outcome.Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hello World", output["stdout"])
	assert.Equal(t, 0, output["exit_code"])

	assert.Contains(t, execCtx.Logs()["t1"], "stdout: Hello World")
}

func TestHandlerNonzeroExitFails(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "t1", map[string]any{
		"command": "sh",
		"args":    []any{"-c", "echo boom >&2; exit 3"},
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Err.Error(), "boom")
}

func TestHandlerMissingCommandFails(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "t1", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, protocol.OutcomeFailed, outcome.Status)
}

func TestHandlerUnknownBinaryFails(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "t1", map[string]any{
		"command": "definitely-not-a-binary-fermata",
	})
	require.NoError(t, err)
	assert.Equal(t, protocol.OutcomeFailed, outcome.Status)
}

func TestHandlerTemplatedArgs(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")
	execCtx.RecordOutput("fetch", map[string]any{"stdout": "world"})

	outcome, err := handler.Execute(context.Background(), execCtx, "t2", map[string]any{
		"command": "echo",
		"args":    []any{"hello {{.outputs.fetch.stdout}}"},
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeCompleted, outcome.Status)

	output := outcome.Output.(map[string]any)
	assert.Equal(t, "hello world", output["stdout"])
}
