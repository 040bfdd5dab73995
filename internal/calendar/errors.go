package calendar

import "fmt"

// ValidationError reports a save request that violates one of the form
// rules. The message names the violated rule and is safe to show to the
// user. No write is attempted once validation fails.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	errEndBeforeStart          = &ValidationError{Message: "end date cannot be before start date"}
	errNoWeekdays              = &ValidationError{Message: "select at least one day for recurring events"}
	errNoRecurrenceEnd         = &ValidationError{Message: "select an end date for recurring events"}
	errRecurrenceEndTooEarly   = &ValidationError{Message: "recurrence end date must be after start date"}
	errInvalidDuration         = &ValidationError{Message: "duration must be a positive number of minutes"}
	errMissingStartDate        = &ValidationError{Message: "start date is required"}
	errSubjectNameRequired     = &ValidationError{Message: "subject name is required"}
	errEventRequiredFieldsMiss = &ValidationError{Message: "missing required fields: title, start, end"}
)

// PartialSaveError reports a recurring save where some occurrences were
// persisted before a write failed. The written occurrences are not rolled
// back; there is no series linkage or transaction to undo them with.
type PartialSaveError struct {
	Written int
	Total   int
	Err     error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("saved %d of %d occurrences: %v", e.Written, e.Total, e.Err)
}

func (e *PartialSaveError) Unwrap() error { return e.Err }
