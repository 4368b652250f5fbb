package web

import (
	"net/http"
	"time"

	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/parser"
	"github.com/fermata-run/fermata/pkg/persistence"
	"github.com/fermata-run/fermata/pkg/registry"
	"github.com/fermata-run/fermata/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	runner    *workflow.Runner
	snapshots persistence.SnapshotRepository
	parser    *parser.Parser
	validator *validator.Validate
	registry  *registry.Registry
}

func NewAPIHandlers(
	runner *workflow.Runner,
	snapshots persistence.SnapshotRepository,
	validator *validator.Validate,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		runner:    runner,
		snapshots: snapshots,
		parser:    parser.NewParser(),
		validator: validator,
		registry:  reg,
	}
}

// RunWorkflow executes the workflow document in the request body. A run
// that suspends answers 202 with the waiting frontier; a terminal run
// answers 200 whether it completed or failed.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	document := c.Body()
	if len(document) == 0 {
		return badRequest(c, "Workflow document is required")
	}

	result, err := h.runner.Run(c.Context(), document)
	if err != nil {
		return handleEngineError(c, err)
	}

	status := fiber.StatusOK
	if result.Status == models.ExecutionStatusWaitingForInput {
		status = fiber.StatusAccepted
	}

	return c.Status(status).JSON(result)
}

// GetExecutions lists suspended executions.
func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	snapshots, err := h.snapshots.ListSnapshots(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	summaries := make([]ExecutionSummary, 0, len(snapshots))
	for _, snapshot := range snapshots {
		summaries = append(summaries, TransformExecutionSummary(snapshot))
	}

	return c.JSON(fiber.Map{
		"executions":  summaries,
		"total_count": len(summaries),
	})
}

// GetExecution returns one suspended execution.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	snapshot, err := h.snapshots.LoadSnapshot(c.Context(), id)
	if err != nil {
		if persistence.IsSnapshotNotFound(err) {
			return notFound(c, "execution not found or not suspended")
		}

		return internalError(c, err)
	}

	return c.JSON(TransformExecutionSummary(snapshot))
}

// ResumeExecution feeds an input response into a suspended execution.
func (h *APIHandlers) ResumeExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	var req ResumeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.runner.Resume(c.Context(), id, models.InputResponse{
		TaskID:   req.TaskID,
		Accepted: req.Accepted,
		Response: req.Response,
	})
	if err != nil {
		return handleEngineError(c, err)
	}

	status := fiber.StatusOK
	if result.Status == models.ExecutionStatusWaitingForInput {
		status = fiber.StatusAccepted
	}

	return c.Status(status).JSON(result)
}

// ValidateWorkflow checks a workflow document without executing it.
func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	document := c.Body()
	if len(document) == 0 {
		return badRequest(c, "Workflow document is required")
	}

	wf, err := h.parser.Parse(document)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(ValidateResponse{
		Valid:      true,
		WorkflowID: wf.ID,
		Name:       wf.Name,
		TaskIDs:    wf.TaskIDs(),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.snapshots.HealthCheck(c.Context())

	status := "healthy"
	message := "Fermata API is healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		message = "Fermata API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"snapshots": status,
			"handlers":  h.registry.Names(),
		},
		"timestamp": time.Now().UTC(),
	})
}
