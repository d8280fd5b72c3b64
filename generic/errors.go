/*
errors.go - Centralized error types for the leave ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  The store wraps them with context; the API maps them to status codes
  with errors.Is, never by string matching.

ERROR CATEGORIES:
  1. Not found  - Employee or request does not exist
  2. Validation - Bad dates, bad clock text, unknown leave type
  3. Conflict   - Status transitions, double check-in, held locks

USAGE:
    if errors.Is(err, generic.ErrNotPending) {
        // 409
    }

SEE ALSO:
  - timeoff/service.go: Raises TransitionError
  - api/handlers.go: writeError maps these to HTTP codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound is returned when a referenced leave request doesn't exist.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrNotPending is returned when a request's status no longer allows the action.
	ErrNotPending = errors.New("leave request is not pending")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidClock is returned for time-of-day text that is not HH:MM[:SS].
	ErrInvalidClock = errors.New("invalid time of day")

	// ErrInvalidLeaveType is returned for unknown or malformed leave types.
	ErrInvalidLeaveType = errors.New("invalid leave type")

	// ErrInvalidRequest is returned when a leave request violates a business rule.
	ErrInvalidRequest = errors.New("invalid leave request")

	// ErrAlreadyCheckedIn is returned when checking in while a session is open.
	ErrAlreadyCheckedIn = errors.New("already checked in")

	// ErrNoOpenSession is returned when checking out without an open session.
	ErrNoOpenSession = errors.New("no open session")

	// ErrLocked is returned when another approval for the same employee is in flight.
	ErrLocked = errors.New("resource is locked")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError reports a status change the request's current status forbids.
type TransitionError struct {
	RequestID string
	From      string
	Action    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s leave request %s: status is %s", e.Action, e.RequestID, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrNotPending
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidRequest
	}
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidClock) ||
		errors.Is(err, ErrInvalidLeaveType) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

// IsConflict returns true if the error is a state conflict rather than bad input.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrAlreadyCheckedIn) ||
		errors.Is(err, ErrNoOpenSession)
}
