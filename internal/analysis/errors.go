// Package analysis implements the seven analytic routines over a patient's
// blood pressure, medication and lifestyle history, memoized through the
// shared artifact cache.
package analysis

import "fmt"

// Error codes returned by the analysis layer.
const (
	CodePatientNotFound  = "PATIENT_NOT_FOUND"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeAnalysisFailed   = "ANALYSIS_FAILED"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Error represents an analysis layer error
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new Error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithDetails creates a new Error with details
func NewErrorWithDetails(code, message string, details map[string]interface{}) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ErrPatientNotFound reports an unresolved patient id.
func ErrPatientNotFound(patientID string) *Error {
	return NewErrorWithDetails(
		CodePatientNotFound,
		fmt.Sprintf("Patient with ID %s not found", patientID),
		map[string]interface{}{"patient_id": patientID},
	)
}

// ErrInsufficientReadings reports a reading count below the configured
// minimum, carrying actual vs required counts.
func ErrInsufficientReadings(message string, have, need int) *Error {
	return NewErrorWithDetails(
		CodeInsufficientData,
		message,
		map[string]interface{}{"readings_count": have, "minimum_required": need},
	)
}

// ErrInsufficientDays reports too few distinct days with data, carrying
// actual vs required day counts.
func ErrInsufficientDays(message string, have, need int) *Error {
	return NewErrorWithDetails(
		CodeInsufficientData,
		message,
		map[string]interface{}{"days_with_data": have, "minimum_required": need},
	)
}

// ErrDatabase wraps a store failure.
func ErrDatabase(err error) *Error {
	return NewErrorWithDetails(
		CodeDatabaseError,
		"Database operation failed",
		map[string]interface{}{"error": err.Error()},
	)
}
