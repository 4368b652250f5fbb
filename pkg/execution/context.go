// Package execution holds the shared per-run state mutated by concurrently
// executing tasks.
package execution

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/fermata-run/fermata/pkg/models"
)

// Context is the single resource shared across the concurrently running
// tasks of one execution. Every mutation goes through its narrow API and
// is serialized by one internal lock; tasks only ever write their own
// id-keyed slots, so contention is limited to the lock itself.
type Context struct {
	id         string
	workflowID string

	mu       sync.Mutex
	outputs  map[string]any
	logs     map[string][]string
	audit    []models.AuditEvent
	statuses map[string]models.TaskStatus
	waiting  map[string]models.InputRequest
	errors   []string
}

// NewContext creates an empty context for a fresh execution.
func NewContext(executionID, workflowID string) *Context {
	return &Context{
		id:         executionID,
		workflowID: workflowID,
		outputs:    make(map[string]any),
		logs:       make(map[string][]string),
		audit:      make([]models.AuditEvent, 0),
		statuses:   make(map[string]models.TaskStatus),
		waiting:    make(map[string]models.InputRequest),
		errors:     make([]string, 0),
	}
}

// FromState rebuilds a context from its serialized snapshot form. The
// restored context is logically the same run crossing a process boundary.
func FromState(state models.ContextState) *Context {
	restored := NewContext(state.ID, state.WorkflowID)

	maps.Copy(restored.outputs, state.Outputs)

	for taskID, lines := range state.Logs {
		restored.logs[taskID] = slices.Clone(lines)
	}

	restored.audit = append(restored.audit, state.AuditTrail...)
	maps.Copy(restored.statuses, state.Statuses)
	maps.Copy(restored.waiting, state.Waiting)
	restored.errors = append(restored.errors, state.Errors...)

	return restored
}

func (c *Context) ID() string {
	return c.id
}

func (c *Context) WorkflowID() string {
	return c.workflowID
}

// RecordOutput stores a task's result. One output per task id; a resumed
// user_input task overwrites its slot with the caller's response.
func (c *Context) RecordOutput(taskID string, output any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.outputs[taskID] = output
}

// Output returns the stored output for a task, if any.
func (c *Context) Output(taskID string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	output, ok := c.outputs[taskID]

	return output, ok
}

// Outputs returns a copy of all recorded outputs.
func (c *Context) Outputs() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.outputs)
}

// AppendLog adds a line to a task's log. Logs are append-only.
func (c *Context) AppendLog(taskID, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs[taskID] = append(c.logs[taskID], line)
}

// Logs returns a copy of every task's log lines.
func (c *Context) Logs() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	logs := make(map[string][]string, len(c.logs))
	for taskID, lines := range c.logs {
		logs[taskID] = slices.Clone(lines)
	}

	return logs
}

// AppendAudit records a status transition. The trail is append-only and
// its order is chronological by append time, never reordered.
func (c *Context) AppendAudit(event models.AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.audit = append(c.audit, event)
}

// AuditTrail returns a copy of the audit trail.
func (c *Context) AuditTrail() []models.AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.audit)
}

// SetStatus records a task's current lifecycle state.
func (c *Context) SetStatus(taskID string, status models.TaskStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.statuses[taskID] = status
}

// Status returns a task's recorded state; tasks never reached report
// pending.
func (c *Context) Status(taskID string) models.TaskStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	if status, ok := c.statuses[taskID]; ok {
		return status
	}

	return models.TaskStatusPending
}

// MarkWaiting parks a task in the suspended set together with the input
// request it is waiting on.
func (c *Context) MarkWaiting(taskID string, request models.InputRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.waiting[taskID] = request
}

// ClearWaiting removes a task from the suspended set.
func (c *Context) ClearWaiting(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.waiting, taskID)
}

// Waiting returns a copy of the suspended set.
func (c *Context) Waiting() map[string]models.InputRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.waiting)
}

// HasWaiting reports whether any task is suspended.
func (c *Context) HasWaiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.waiting) > 0
}

// AppendError accumulates a human-readable failure message.
func (c *Context) AppendError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = append(c.errors, message)
}

// Errors returns a copy of the accumulated failure messages.
func (c *Context) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.errors)
}

// HasErrors reports whether any task failed during the run.
func (c *Context) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.errors) > 0
}

// State captures the full context in its serializable form for snapshots.
func (c *Context) State() models.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()

	logs := make(map[string][]string, len(c.logs))
	for taskID, lines := range c.logs {
		logs[taskID] = slices.Clone(lines)
	}

	return models.ContextState{
		ID:         c.id,
		WorkflowID: c.workflowID,
		Outputs:    maps.Clone(c.outputs),
		Logs:       logs,
		AuditTrail: slices.Clone(c.audit),
		Statuses:   maps.Clone(c.statuses),
		Waiting:    maps.Clone(c.waiting),
		Errors:     slices.Clone(c.errors),
	}
}
