package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/persistence/file"
	"github.com/fermata-run/fermata/pkg/registry"
	"github.com/fermata-run/fermata/pkg/web"
	"github.com/fermata-run/fermata/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultHandlers()

	snapshots := file.NewRepository(t.TempDir())
	runner := workflow.NewRunner(logger, reg, snapshots)

	handlers := web.NewAPIHandlers(runner, snapshots, validator.New(validator.WithRequiredStructEnabled()), reg)

	app := fiber.New()

	e := app.Group("/executions")
	e.Post("/", handlers.RunWorkflow)
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/resume", handlers.ResumeExecution)

	app.Post("/workflows/validate", handlers.ValidateWorkflow)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body []byte) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeResult(t *testing.T, resp *http.Response) models.WorkflowResult {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result models.WorkflowResult
	require.NoError(t, json.Unmarshal(body, &result))

	return result
}

func echoDocument() []byte {
	return []byte(`{
		"id": "web-echo",
		"name": "web echo",
		"tasks": [
			{
				"id": "say",
				"function": {
					"name": "cli_command",
					"input": {"command": "echo", "args": ["hi"]}
				}
			}
		]
	}`)
}

func approvalDocument() []byte {
	return []byte(`{
		"id": "web-approval",
		"name": "web approval",
		"tasks": [
			{
				"id": "gate",
				"function": {
					"name": "user_input",
					"input": {"prompt": "Deploy?"}
				},
				"next_tasks": [
					{
						"id": "ship",
						"function": {
							"name": "cli_command",
							"input": {"command": "echo", "args": ["shipped"]}
						}
					}
				]
			}
		]
	}`)
}

func TestRunWorkflowCompletes(t *testing.T) {
	app := setupTestApp(t)

	resp := postJSON(t, app, "/executions/", echoDocument())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeResult(t, resp)
	assert.True(t, result.Success)
	assert.Equal(t, models.ExecutionStatusCompleted, result.Status)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, models.TaskStatusComplete, result.Tasks[0].Status)
}

func TestRunWorkflowInvalidDocument(t *testing.T) {
	app := setupTestApp(t)

	resp := postJSON(t, app, "/executions/", []byte(`{"id": "nope"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRunWorkflowEmptyBody(t *testing.T) {
	app := setupTestApp(t)

	resp := postJSON(t, app, "/executions/", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSuspendAndResumeOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	resp := postJSON(t, app, "/executions/", approvalDocument())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	suspended := decodeResult(t, resp)
	assert.Equal(t, models.ExecutionStatusWaitingForInput, suspended.Status)
	require.Len(t, suspended.Waiting, 1)
	assert.Equal(t, "gate", suspended.Waiting[0].TaskID)

	// The suspended execution shows up in the listing.
	req := httptest.NewRequest(http.MethodGet, "/executions/", nil)
	listResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)

	var listing struct {
		Executions []web.ExecutionSummary `json:"executions"`
		TotalCount int                    `json:"total_count"`
	}

	body, err := io.ReadAll(listResp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &listing))
	require.Equal(t, 1, listing.TotalCount)
	assert.Equal(t, suspended.ExecutionID, listing.Executions[0].ExecutionID)

	resumeBody, err := json.Marshal(web.ResumeRequest{
		TaskID:   "gate",
		Accepted: true,
		Response: "go",
	})
	require.NoError(t, err)

	resumeResp := postJSON(t, app, "/executions/"+suspended.ExecutionID+"/resume", resumeBody)
	assert.Equal(t, http.StatusOK, resumeResp.StatusCode)

	resumed := decodeResult(t, resumeResp)
	assert.True(t, resumed.Success)
	assert.Equal(t, models.ExecutionStatusCompleted, resumed.Status)

	// Once terminal, the execution is gone from the suspended set.
	req = httptest.NewRequest(http.MethodGet, "/executions/"+suspended.ExecutionID, nil)
	getResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestResumeUnknownExecution(t *testing.T) {
	app := setupTestApp(t)

	resumeBody, err := json.Marshal(web.ResumeRequest{TaskID: "gate", Accepted: true})
	require.NoError(t, err)

	resp := postJSON(t, app, "/executions/exec-missing/resume", resumeBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResumeTaskNotWaiting(t *testing.T) {
	app := setupTestApp(t)

	resp := postJSON(t, app, "/executions/", approvalDocument())
	suspended := decodeResult(t, resp)

	resumeBody, err := json.Marshal(web.ResumeRequest{TaskID: "ship", Accepted: true})
	require.NoError(t, err)

	resumeResp := postJSON(t, app, "/executions/"+suspended.ExecutionID+"/resume", resumeBody)
	assert.Equal(t, http.StatusConflict, resumeResp.StatusCode)
}

func TestValidateWorkflow(t *testing.T) {
	app := setupTestApp(t)

	resp := postJSON(t, app, "/workflows/validate", echoDocument())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var validated web.ValidateResponse
	require.NoError(t, json.Unmarshal(body, &validated))

	assert.True(t, validated.Valid)
	assert.Equal(t, "web-echo", validated.WorkflowID)
	assert.Equal(t, []string{"say"}, validated.TaskIDs)
}

func TestValidateWorkflowDuplicateIDs(t *testing.T) {
	app := setupTestApp(t)

	document := []byte(`{
		"id": "dupes",
		"name": "dupes",
		"tasks": [
			{"id": "twin", "function": {"name": "cli_command", "input": {"command": "true"}}},
			{"id": "twin", "function": {"name": "cli_command", "input": {"command": "true"}}}
		]
	}`)

	resp := postJSON(t, app, "/workflows/validate", document)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
