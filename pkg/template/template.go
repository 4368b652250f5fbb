// Package template renders dynamic handler inputs against the execution
// context.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/fermata-run/fermata/pkg/execution"
)

// RenderWithContext renders input with the execution context exposed as
// template data: prior task outputs under .outputs, the execution identity
// under .execution and process env under .env.
func RenderWithContext(input string, execCtx *execution.Context) (any, error) {
	data := map[string]any{
		"outputs": execCtx.Outputs(),
		"env":     getEnvVars(),
		"execution": map[string]any{
			"id":          execCtx.ID(),
			"workflow_id": execCtx.WorkflowID(),
		},
	}

	return Render(input, data)
}

// Render executes a single template string against arbitrary data. When
// the rendered value looks like JSON it is decoded so downstream handlers
// receive structured data instead of a string.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("render").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}

				num := make([]byte, 1)
				if _, err := rand.Read(num); err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	rendered := buf.String()

	trimmed := strings.TrimSpace(rendered)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded, nil
		}
	}

	return rendered, nil
}

// RenderString is Render constrained to a string result.
func RenderString(templateStr string, execCtx *execution.Context) (string, error) {
	rendered, err := RenderWithContext(templateStr, execCtx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%v", rendered), nil
}

func getEnvVars() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		if key, value, found := strings.Cut(kv, "="); found {
			env[key] = value
		}
	}

	return env
}
