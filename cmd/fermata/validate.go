package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fermata-run/fermata/pkg/log"
	"github.com/fermata-run/fermata/pkg/parser"
	cli "github.com/urfave/cli/v3"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a workflow document without executing it",
		ArgsUsage: "<workflow.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("workflow document path is required")
			}

			document, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read workflow document: %w", err)
			}

			workflow, err := parser.NewParser().Parse(document)
			if err != nil {
				return err
			}

			fmt.Printf("workflow %q (%s) is valid: %d tasks\n",
				workflow.Name, workflow.ID, len(workflow.TaskIDs()))

			return nil
		},
	}
}
