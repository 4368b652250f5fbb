package protocol

import "github.com/fermata-run/fermata/pkg/models"

// OutcomeStatus enumerates the three ways a dispatch can end. Suspension
// is a first-class outcome, not an error: threading it through the error
// channel confuses two unrelated failure hierarchies.
type OutcomeStatus string

const (
	OutcomeCompleted OutcomeStatus = "completed"
	OutcomeSuspended OutcomeStatus = "suspended"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome is the result of dispatching one task to its handler.
type Outcome struct {
	Status  OutcomeStatus
	Output  any
	Request *models.InputRequest
	Err     error
}

// Completed builds a terminal successful outcome carrying the task output.
func Completed(output any) Outcome {
	return Outcome{Status: OutcomeCompleted, Output: output}
}

// Suspended builds an outcome that parks the task until external input
// arrives.
func Suspended(request models.InputRequest) Outcome {
	return Outcome{Status: OutcomeSuspended, Request: &request}
}

// Failed builds a terminal failing outcome. The scheduler isolates the
// failure to the task's own subtree.
func Failed(err error) Outcome {
	return Outcome{Status: OutcomeFailed, Err: err}
}
