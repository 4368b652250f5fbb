package template

import (
	"testing"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlainString(t *testing.T) {
	rendered, err := Render("hello world", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", rendered)
}

func TestRenderWithContextOutputs(t *testing.T) {
	execCtx := execution.NewContext("exec-1", "wf-1")
	execCtx.RecordOutput("fetch", map[string]any{"stdout": "Hello World"})

	rendered, err := RenderString("previous said: {{.outputs.fetch.stdout}}", execCtx)
	require.NoError(t, err)
	assert.Equal(t, "previous said: Hello World", rendered)
}

func TestRenderWithContextExecutionIdentity(t *testing.T) {
	execCtx := execution.NewContext("exec-42", "wf-7")

	rendered, err := RenderString("{{.execution.id}}/{{.execution.workflow_id}}", execCtx)
	require.NoError(t, err)
	assert.Equal(t, "exec-42/wf-7", rendered)
}

func TestRenderDecodesJSONResult(t *testing.T) {
	rendered, err := Render(`{"count": {{.n}}}`, map[string]any{"n": 3})
	require.NoError(t, err)

	decoded, ok := rendered.(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 3, decoded["count"], 0.001)
}

func TestRenderInvalidTemplate(t *testing.T) {
	_, err := Render("{{.broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestRenderNowFunc(t *testing.T) {
	rendered, err := Render("{{now}}", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, rendered)
}
