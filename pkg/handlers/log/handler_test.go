package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRendersTemplate(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")
	execCtx.RecordOutput("build", map[string]any{"stdout": "ok"})

	outcome, err := handler.Execute(context.Background(), execCtx, "notify", map[string]any{
		"message": "build said {{.outputs.build.stdout}}",
		"level":   "warn",
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeCompleted, outcome.Status)

	output := outcome.Output.(map[string]any)
	assert.Equal(t, "build said ok", output["message"])
	assert.Equal(t, "warn", output["level"])
	assert.Equal(t, []string{"build said ok"}, execCtx.Logs()["notify"])
}

func TestHandlerMissingMessage(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "notify", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, protocol.OutcomeFailed, outcome.Status)
}

func TestHandlerBrokenTemplate(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "notify", map[string]any{
		"message": "{{.outputs.broken",
	})
	require.NoError(t, err)
	assert.Equal(t, protocol.OutcomeFailed, outcome.Status)
}
