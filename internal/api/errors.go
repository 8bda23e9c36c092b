package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	ErrTypeValidation = "validation_error"
	ErrTypeNotFound   = "not_found"
	ErrTypeTimeout    = "timeout"
	ErrTypeInternal   = "internal_error"
)

// APIError is the JSON error envelope.
type APIError struct {
	Message   string         `json:"error"`
	Type      string         `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

func (e APIError) Error() string { return e.Message }

// ErrorBuilder helps construct structured errors with context.
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

// NewError creates a new error builder.
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{errType: errType, message: message}
}

// WithContext adds a context field.
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// WithRequestID adds the request ID.
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// Build creates the final APIError.
func (eb *ErrorBuilder) Build() APIError {
	return APIError{
		Message:   eb.message,
		Type:      eb.errType,
		RequestID: eb.requestID,
		Context:   eb.context,
	}
}

// ErrorHandler logs errors and writes the envelope.
type ErrorHandler struct {
	logger *log.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError reports err with the given type and status. Internal details
// are logged, not returned.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, errType string, err error, status int) {
	msg := http.StatusText(status)
	apiErr := NewError(errType, msg).
		WithRequestID(middleware.GetReqID(r.Context())).
		Build()
	eh.logger.Printf("error_occurred type=%s status=%d request_id=%s path=%s cause=%q",
		errType, status, apiErr.RequestID, r.URL.Path, err.Error())
	eh.write(w, status, apiErr)
}

// HandleValidationError writes a 400 naming the offending field.
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	apiErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("field", field).
		Build()
	eh.logger.Printf("validation_failed field=%s request_id=%s path=%s message=%q",
		field, apiErr.RequestID, r.URL.Path, message)
	eh.write(w, http.StatusBadRequest, apiErr)
}

// HandleNotFound writes a 404 with message as the error text.
func (eh *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request, message string) {
	apiErr := NewError(ErrTypeNotFound, message).
		WithRequestID(middleware.GetReqID(r.Context())).
		Build()
	eh.write(w, http.StatusNotFound, apiErr)
}

// RecoveryHandler turns panics into 500 responses.
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())
				eh.logger.Printf("panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr)
				eh.write(w, http.StatusInternalServerError,
					NewError(ErrTypeInternal, "Internal server error").WithRequestID(requestID).Build())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (eh *ErrorHandler) write(w http.ResponseWriter, status int, apiErr APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Type", apiErr.Type)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		eh.logger.Printf("encode_failed err=%v", err)
	}
}
