// Package httprequest implements a custom handler that performs an HTTP
// call with templated URL, headers and body.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fermata-run/fermata/pkg/execution"
	"github.com/fermata-run/fermata/pkg/protocol"
	"github.com/fermata-run/fermata/pkg/template"
)

// Name is the registry key for this custom handler.
const Name = "http_request"

const defaultTimeoutSeconds = 30

var errURLRequired = errors.New("http_request input requires a 'url' string")

type Handler struct {
	logger *slog.Logger
	client *http.Client
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger.With("handler", Name),
		client: &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
	}
}

func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, taskID string, input map[string]any) (protocol.Outcome, error) {
	rawURL, ok := input["url"].(string)
	if !ok || rawURL == "" {
		return protocol.Failed(errURLRequired), nil
	}

	url, err := template.RenderString(rawURL, execCtx)
	if err != nil {
		return protocol.Failed(err), nil
	}

	method := http.MethodGet
	if m, ok := input["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	var body io.Reader

	if rawBody, ok := input["body"].(string); ok && rawBody != "" {
		rendered, err := template.RenderString(rawBody, execCtx)
		if err != nil {
			return protocol.Failed(err), nil
		}

		body = strings.NewReader(rendered)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return protocol.Failed(err), nil
	}

	if headers, ok := input["headers"].(map[string]any); ok {
		for key, value := range headers {
			if text, ok := value.(string); ok {
				rendered, err := template.RenderString(text, execCtx)
				if err != nil {
					return protocol.Failed(err), nil
				}

				req.Header.Set(key, rendered)
			}
		}
	}

	h.logger.DebugContext(ctx, "Performing HTTP request", "task_id", taskID, "method", method, "url", url)

	resp, err := h.client.Do(req)
	if err != nil {
		return protocol.Failed(err), nil
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.Failed(err), nil
	}

	execCtx.AppendLog(taskID, fmt.Sprintf("%s %s -> %d", method, url, resp.StatusCode))

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		decoded = string(payload)
	}

	output := map[string]any{
		"status_code": resp.StatusCode,
		"body":        decoded,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return protocol.Failed(fmt.Errorf("http request returned status %d", resp.StatusCode)), nil
	}

	return protocol.Completed(output), nil
}
