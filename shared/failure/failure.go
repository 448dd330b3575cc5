package failure

import (
	"errors"
	"net/http"
)

const (
	KindAppointmentOverlap = "appointment_overlap"
)

// ConflictWindow describes the time window of an already-booked appointment,
// formatted for human display.
type ConflictWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code     int             `json:"code"`
	Kind     string          `json:"error,omitempty"`
	Message  string          `json:"message"`
	Conflict *ConflictWindow `json:"conflicting_appointment,omitempty"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Message: "You don't have permission to access this resource"}

// Error returns the error message.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Validation returns a new Failure for semantically invalid input.
func Validation(msg string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// Overlap returns the structured double-booking rejection. The window carries the
// conflicting appointment's start and end formatted for display.
func Overlap(message string, window ConflictWindow) error {
	return &Failure{
		Code:     http.StatusUnprocessableEntity,
		Kind:     KindAppointmentOverlap,
		Message:  message,
		Conflict: &window,
	}
}

// Busy returns a new Failure for lock acquisition timeouts. Distinct from Overlap:
// the caller may retry the same window after backing off.
func Busy(message string) error {
	return &Failure{
		Code:    http.StatusServiceUnavailable,
		Message: message,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// IsOverlap reports whether err is the double-booking rejection.
func IsOverlap(err error) bool {
	var fail *Failure

	return errors.As(err, &fail) && fail.Kind == KindAppointmentOverlap
}
