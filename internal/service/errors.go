package service

import (
	"fmt"
	"time"
)

// ValidationError represents malformed or insufficient request input.
// Raised before any network or storage work is performed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UnauthenticatedError is returned when login is required and the request
// carries no resolved caller.
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string {
	return e.Message
}

// QuotaExceededError is returned when the caller has exhausted the monthly
// generation ceiling. ResetDate is the first day of the month after the
// caller's last reset.
type QuotaExceededError struct {
	GenerationsUsed int
	Limit           int
	ResetDate       time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly generation limit reached (%d/%d), resets %s",
		e.GenerationsUsed, e.Limit, e.ResetDate.Format("2006-01-02"))
}

// ProcessingError represents an unexpected failure inside the pipeline.
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
