package models

import "time"

// AuditEvent records one task status transition. Events are immutable once
// appended and the trail's order is chronological by completion, which for
// concurrent siblings may differ from declaration order.
type AuditEvent struct {
	TaskID       string     `json:"task_id"`
	Status       TaskStatus `json:"status"`
	Timestamp    time.Time  `json:"timestamp"`
	Message      string     `json:"message,omitempty"`
	ChangesCount int        `json:"changes_count"`
}
