// Package clicommand implements the cli_command task handler: it spawns a
// subprocess and maps its exit code to a task outcome.
package clicommand

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/fermata-run/fermata/pkg/template"
)

// Handler runs one subprocess per dispatch. The engine imposes no timeout
// of its own; the process runs until it exits or the context is cancelled.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger.With("handler", models.FunctionCLICommand),
	}
}

func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, taskID string, input map[string]any) (protocol.Outcome, error) {
	decoded, err := models.DecodeCLICommandInput(input)
	if err != nil {
		return protocol.Failed(err), nil
	}

	command, err := template.RenderString(decoded.Command, execCtx)
	if err != nil {
		return protocol.Failed(err), nil
	}

	args := make([]string, 0, len(decoded.Args))

	for _, arg := range decoded.Args {
		rendered, err := template.RenderString(arg, execCtx)
		if err != nil {
			return protocol.Failed(err), nil
		}

		args = append(args, rendered)
	}

	h.logger.DebugContext(ctx, "Spawning command", "task_id", taskID, "command", command, "args", args)

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	outText := strings.TrimRight(stdout.String(), "\n")
	errText := strings.TrimRight(stderr.String(), "\n")

	if outText != "" {
		execCtx.AppendLog(taskID, "stdout: "+outText)
	}

	if errText != "" {
		execCtx.AppendLog(taskID, "stderr: "+errText)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			message := errText
			if message == "" {
				message = runErr.Error()
			}

			return protocol.Failed(errors.New(message)), nil
		}

		// Spawn failures (command not found, permission) are handler
		// errors too, recovered by the scheduler as task failures.
		return protocol.Failed(runErr), nil
	}

	return protocol.Completed(map[string]any{
		"stdout":    outText,
		"stderr":    errText,
		"exit_code": 0,
	}), nil
}
