// Package parser turns workflow JSON into a validated in-memory task tree.
package parser

import (
	"errors"
	"fmt"
)

// Sentinel parse errors. All of them fail fast, before any execution id
// exists.
var (
	// ErrMalformedJSON indicates the document is not valid JSON or does
	// not match the workflow schema.
	ErrMalformedJSON = errors.New("malformed workflow json")

	// ErrDuplicateTaskID indicates a task id appears more than once in
	// the tree.
	ErrDuplicateTaskID = errors.New("duplicate task id")

	// ErrUnknownFunction indicates a function tag outside the closed
	// variant set. Distinct from dispatch-time unknown handlers: a
	// custom function may name a handler registered only at run time.
	ErrUnknownFunction = errors.New("unknown function")
)

// ParseError wraps a sentinel with the location it was detected at.
type ParseError struct {
	Op     string
	TaskID string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s: task %s: %s (%v)", e.Op, e.TaskID, e.Detail, e.Err)
	}

	return fmt.Sprintf("%s: %s (%v)", e.Op, e.Detail, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsDuplicateTaskID checks whether an error is a duplicate id rejection.
func IsDuplicateTaskID(err error) bool {
	return errors.Is(err, ErrDuplicateTaskID)
}

// IsUnknownFunction checks whether an error is an unknown function tag.
func IsUnknownFunction(err error) bool {
	return errors.Is(err, ErrUnknownFunction)
}

// IsMalformedJSON checks whether an error is a document shape rejection.
func IsMalformedJSON(err error) bool {
	return errors.Is(err, ErrMalformedJSON)
}
