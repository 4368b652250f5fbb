package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fermata-run/fermata/pkg/log"
	"github.com/fermata-run/fermata/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func resumeCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:     "task-id",
			Usage:    "Waiting task to answer",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "response",
			Usage: "Response value (JSON or plain string)",
		},
		&cli.BoolFlag{
			Name:  "reject",
			Usage: "Reject the input request, cancelling the task and its subtree",
		},
	)

	return &cli.Command{
		Name:      "resume",
		Usage:     "Resume a suspended execution",
		ArgsUsage: "<execution-id>",
		Flags:     flags,
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("fermata")

			executionID := command.Args().First()
			if executionID == "" {
				return fmt.Errorf("execution id is required")
			}

			runner, cleanup, err := buildRunner(ctx, command, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			response := models.InputResponse{
				TaskID:   command.String("task-id"),
				Accepted: !command.Bool("reject"),
				Response: decodeResponse(command.String("response")),
			}

			result, err := runner.Resume(ctx, executionID, response)
			if err != nil {
				return err
			}

			if err := printResult(result); err != nil {
				return err
			}

			if result.Status == models.ExecutionStatusFailed {
				return fmt.Errorf("execution %s failed", result.ExecutionID)
			}

			return nil
		},
	}
}

// decodeResponse accepts either a JSON value or a bare string.
func decodeResponse(raw string) any {
	if raw == "" {
		return nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}

	return raw
}
