package response

import (
	"clinicbook/shared/constant"
	"clinicbook/shared/failure"
	"clinicbook/shared/logger"
	"encoding/json"
	"errors"
	"net/http"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

// Error is the error envelope. Overlap conflicts additionally carry the error
// kind and the winning appointment's window so clients can re-render the
// picker without another roundtrip.
type Error struct {
	Success  bool                    `json:"success"`
	Kind     string                  `json:"error,omitempty"`
	Message  string                  `json:"message"`
	Conflict *failure.ConflictWindow `json:"conflicting_appointment,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload interface{}) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError sends a response with an error message
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)

	var fail *failure.Failure
	if errors.As(err, &fail) {
		response(writer, code, Error{
			Kind:     fail.Kind,
			Message:  fail.Message,
			Conflict: fail.Conflict,
		})

		return
	}

	response(writer, code, Error{Message: err.Error()})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
