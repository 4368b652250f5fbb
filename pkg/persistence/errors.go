// Package persistence provides standardized error types for snapshot
// storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// ErrSnapshotNotFound indicates no snapshot exists for the given
// execution id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotError wraps snapshot storage failures with operation context.
type SnapshotError struct {
	Op          string // Operation being performed ("Save", "Load", "Delete")
	ExecutionID string
	Err         error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("%s operation failed for execution %s: %v", e.Op, e.ExecutionID, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

func (e *SnapshotError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSnapshotError creates a snapshot error with context.
func NewSnapshotError(op, executionID string, err error) *SnapshotError {
	return &SnapshotError{
		Op:          op,
		ExecutionID: executionID,
		Err:         err,
	}
}

// IsSnapshotNotFound checks whether an error indicates a missing snapshot.
func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}
