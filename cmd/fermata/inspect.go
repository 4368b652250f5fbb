package main

import (
	"context"
	"encoding/json"
	"fmt"

	"time"

	"github.com/fermata-run/fermata/pkg/cmd"
	"github.com/fermata-run/fermata/pkg/log"
	"github.com/fermata-run/fermata/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "List suspended executions, or show one by id",
		ArgsUsage: "[execution-id]",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("fermata")

			snapshots, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to create persistence: %w", err)
			}
			defer func() {
				if err := snapshots.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			if executionID := command.Args().First(); executionID != "" {
				snapshot, err := snapshots.LoadSnapshot(ctx, executionID)
				if err != nil {
					return err
				}

				return printJSON(inspectDetail(snapshot))
			}

			stored, err := snapshots.ListSnapshots(ctx)
			if err != nil {
				return err
			}

			summaries := make([]inspectSummary, 0, len(stored))
			for _, snapshot := range stored {
				summaries = append(summaries, inspectSummarize(snapshot))
			}

			return printJSON(summaries)
		},
	}
}

type inspectSummary struct {
	ExecutionID  string   `json:"execution_id"`
	WaitingTasks []string `json:"waiting_tasks"`
	SuspendedAt  string   `json:"suspended_at"`
}

func inspectSummarize(snapshot *models.Snapshot) inspectSummary {
	waiting := make([]string, 0, len(snapshot.Frontier))
	for _, entry := range snapshot.Frontier {
		waiting = append(waiting, entry.TaskID)
	}

	return inspectSummary{
		ExecutionID:  snapshot.ExecutionID,
		WaitingTasks: waiting,
		SuspendedAt:  snapshot.CreatedAt.Format(time.RFC3339),
	}
}

func inspectDetail(snapshot *models.Snapshot) map[string]any {
	return map[string]any{
		"execution_id": snapshot.ExecutionID,
		"suspended_at": snapshot.CreatedAt,
		"frontier":     snapshot.Frontier,
		"context":      snapshot.Context,
	}
}

func printJSON(value any) error {
	rendered, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(rendered))

	return nil
}
