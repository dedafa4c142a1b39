package domain

import (
	"fmt"
	"strings"
)

// StepError describes an external step that exited unsuccessfully.
// It matches ErrStepFailed with errors.Is and carries the exit code so the
// caller can propagate it unchanged.
type StepError struct {
	Command  string
	Index    int
	Argv     []string
	ExitCode int
	Err      error
}

// Error implements the error interface. A step that never produced an exit
// code reports its cause, since no tool output explains the failure.
func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s: step %d (%s) failed", e.Command, e.Index+1, strings.Join(e.Argv, " "))
	if e.ExitCode > 0 {
		return msg + fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Message returns the error text. It lets the logger treat a StepError as a
// single link instead of walking into the process error again.
func (e *StepError) Message() string {
	return e.Error()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStepFailed}
	}
	return []error{ErrStepFailed, e.Err}
}
