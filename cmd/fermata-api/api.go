// Package main provides the Fermata API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/fermata-run/fermata/pkg/persistence"
	"github.com/fermata-run/fermata/pkg/registry"
	"github.com/fermata-run/fermata/pkg/web"
	"github.com/fermata-run/fermata/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger    *slog.Logger
	runner    *workflow.Runner
	snapshots persistence.SnapshotRepository
	registry  *registry.Registry
	validate  *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	runner *workflow.Runner,
	snapshots persistence.SnapshotRepository,
	reg *registry.Registry,
) *API {
	return &API{
		logger:    logger,
		runner:    runner,
		snapshots: snapshots,
		registry:  reg,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.runner, a.snapshots, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Fermata API")
	})

	e := app.Group("/executions")
	e.Post("/", handlers.RunWorkflow)
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/resume", handlers.ResumeExecution)

	app.Post("/workflows/validate", handlers.ValidateWorkflow)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
