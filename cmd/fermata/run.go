package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fermata-run/fermata/pkg/log"
	"github.com/fermata-run/fermata/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a workflow document",
		ArgsUsage: "<workflow.json>",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("fermata")

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("workflow document path is required")
			}

			document, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read workflow document: %w", err)
			}

			runner, cleanup, err := buildRunner(ctx, command, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := runner.Run(ctx, document)
			if err != nil {
				return err
			}

			if err := printResult(result); err != nil {
				return err
			}

			if result.Status == models.ExecutionStatusWaitingForInput {
				logger.InfoContext(ctx, "Execution suspended",
					"execution_id", result.ExecutionID,
					"waiting_tasks", len(result.Waiting),
				)
			}

			if result.Status == models.ExecutionStatusFailed {
				return fmt.Errorf("execution %s failed", result.ExecutionID)
			}

			return nil
		},
	}
}
