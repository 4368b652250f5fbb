package httprequest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "call", map[string]any{
		"url": server.URL,
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeCompleted, outcome.Status)

	output := outcome.Output.(map[string]any)
	assert.Equal(t, http.StatusOK, output["status_code"])
	assert.Equal(t, map[string]any{"ok": true}, output["body"])
}

func TestHandlerErrorStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "call", map[string]any{
		"url": server.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, protocol.OutcomeFailed, outcome.Status)
}

func TestHandlerTemplatedBody(t *testing.T) {
	var received string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(payload)
		received = string(payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")
	execCtx.RecordOutput("build", map[string]any{"stdout": "v1.2.3"})

	outcome, err := handler.Execute(context.Background(), execCtx, "notify", map[string]any{
		"url":    server.URL,
		"method": "POST",
		"body":   "released {{.outputs.build.stdout}}",
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeCompleted, outcome.Status)
	assert.Equal(t, "released v1.2.3", received)
}

func TestHandlerMissingURL(t *testing.T) {
	handler := NewHandler(slog.Default())
	execCtx := execution.NewContext("exec-1", "wf-1")

	outcome, err := handler.Execute(context.Background(), execCtx, "call", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, protocol.OutcomeFailed, outcome.Status)
}
