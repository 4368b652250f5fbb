package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fermata-run/fermata/pkg/cmd"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/otelhelper"
	"github.com/fermata-run/fermata/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

// buildRunner wires the engine from CLI flags. The returned cleanup
// releases the snapshot store and the event bus.
func buildRunner(ctx context.Context, command *cli.Command, logger *slog.Logger) (*workflow.Runner, func(), error) {
	reg := cmd.NewRegistry(logger, command.String("plugins-path"))

	snapshots, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create persistence: %w", err)
	}

	runner := workflow.NewRunner(logger, reg, snapshots)

	closers := []func(){
		func() {
			if err := snapshots.Close(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
			}
		},
	}

	if provider := command.String("event-bus"); provider != "" && provider != "none" {
		eventBus := cmd.NewEventBus(provider, logger)
		runner.WithEventPublisher(eventBus)

		closers = append(closers, func() {
			if err := eventBus.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
			}
		})
	}

	if command.Bool("tracing") {
		tracer, err := otelhelper.NewTracer(ctx, "fermata")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
		}

		runner.WithTracer(tracer)
	}

	cleanup := func() {
		for _, closer := range closers {
			closer()
		}
	}

	return runner, cleanup, nil
}

// printResult renders the assembled result as indented JSON on stdout.
func printResult(result *models.WorkflowResult) error {
	rendered, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(rendered))

	return nil
}
