package timesheet

import (
	"errors"
	"fmt"
)

var (
	// ErrPeriodNotLoaded is returned when an operation targets a period
	// that has not been materialized via LoadPeriod.
	ErrPeriodNotLoaded = errors.New("timesheet period not loaded")

	// ErrDailyCapExceeded is returned when a write would push the sum of
	// all hour entries for one day past the daily ceiling.
	ErrDailyCapExceeded = errors.New("daily hour cap exceeded")

	// ErrProtectedProject is returned on an attempt to delete the default
	// project.
	ErrProtectedProject = errors.New("default project cannot be deleted")

	// ErrProjectNotFound is returned when a project id does not exist in
	// the period.
	ErrProjectNotFound = errors.New("project not found")
)

// ValidationError reports a rejected input value. The mutation it belongs to
// leaves the period unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
