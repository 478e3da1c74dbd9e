// Package errors provides the standardized error model shared by the HTTP API
// and the BPMN workflow workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input validation
	ErrCodeTripRequestInvalid ErrorCode = "TRIP_REQUEST_INVALID"
	ErrCodeItineraryInvalid   ErrorCode = "ITINERARY_INVALID"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"

	// Generation
	ErrCodeModelUnavailable ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeMalformedOutput  ErrorCode = "MALFORMED_OUTPUT"
	ErrCodeSchemaViolation  ErrorCode = "SCHEMA_VIOLATION"

	// Persistence
	ErrCodeItineraryNotFound        ErrorCode = "ITINERARY_NOT_FOUND"
	ErrCodeUserNotFound             ErrorCode = "USER_NOT_FOUND"
	ErrCodeDuplicateUser            ErrorCode = "DUPLICATE_USER"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"

	// Accounts
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAuthenticationError ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"

	// Delivery
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeExportFailed           ErrorCode = "EXPORT_FAILED"

	// Workflow engine
	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowCommandRejected   ErrorCode = "WORKFLOW_COMMAND_REJECTED"

	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// FieldViolation is one field-level problem attached to a validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Violations []FieldViolation       `json:"violations,omitempty"`
	Retryable  bool                   `json:"retryable"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Converter is implemented by domain errors that know their standard form.
type Converter interface {
	StandardError() *StandardError
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewTripRequestInvalidError reports a rejected trip request with its field violations.
func NewTripRequestInvalidError(violations []FieldViolation) *StandardError {
	e := newError(ErrCodeTripRequestInvalid, "Invalid trip request", "", false)
	e.Violations = violations
	return e
}

// NewItineraryInvalidError reports a caller supplied itinerary that fails the schema.
func NewItineraryInvalidError(violations []FieldViolation) *StandardError {
	e := newError(ErrCodeItineraryInvalid, "Invalid itinerary document", "", false)
	e.Violations = violations
	return e
}

// NewInvalidInputError reports any other rejected request body, e.g. signup.
func NewInvalidInputError(violations []FieldViolation) *StandardError {
	e := newError(ErrCodeInvalidInput, "Invalid request", "", false)
	e.Violations = violations
	return e
}

func NewModelUnavailableError(err error) *StandardError {
	return newError(ErrCodeModelUnavailable, "Itinerary model is unavailable, try again later", errString(err), true)
}

func NewMalformedOutputError(err error) *StandardError {
	return newError(ErrCodeMalformedOutput, "AI produced an unreadable itinerary", errString(err), false)
}

// NewSchemaViolationError carries the violations of the last rejected model output.
func NewSchemaViolationError(violations []FieldViolation, err error) *StandardError {
	e := newError(ErrCodeSchemaViolation, "AI produced an incomplete itinerary", errString(err), false)
	e.Violations = violations
	return e
}

func NewItineraryNotFoundError(id string) *StandardError {
	return newError(ErrCodeItineraryNotFound, "Itinerary not found", fmt.Sprintf("itinerary %q does not exist", id), false)
}

func NewUserNotFoundError(details string) *StandardError {
	return newError(ErrCodeUserNotFound, "User not found", details, false)
}

func NewDuplicateUserError(details string) *StandardError {
	return newError(ErrCodeDuplicateUser, "Email or username already registered", details, false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", errString(err), true)
}

func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, fmt.Sprintf("Query failed: %s", operation), errString(err), true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to insert record", errString(err), true)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search query failed", errString(err), true)
}

func NewInvalidCredentialsError() *StandardError {
	return newError(ErrCodeInvalidCredentials, "Invalid email or password", "", false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthenticationError, "Authentication failed", details, false)
}

func NewForbiddenError(details string) *StandardError {
	return newError(ErrCodeForbidden, "Access denied", details, false)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to send %s notification", channel), errString(err), true)
}

func NewExportFailedError(err error) *StandardError {
	return newError(ErrCodeExportFailed, "Failed to export itinerary", errString(err), false)
}

func NewWorkflowEngineUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowEngineUnavailable, fmt.Sprintf("Workflow engine unavailable during %s", operation), errString(err), true)
}

func NewWorkflowCommandRejectedError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowCommandRejected, fmt.Sprintf("Workflow engine rejected %s", operation), errString(err), false)
}

func NewRateLimitedError() *StandardError {
	return newError(ErrCodeRateLimited, "Too many requests, slow down", "", true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternalError, "Unexpected error", errString(err), false)
}

// FromError normalizes any error into a StandardError. Domain errors that
// implement Converter supply their own mapping; anything else is internal.
func FromError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	var conv Converter
	if stderrors.As(err, &conv) {
		if mapped := conv.StandardError(); mapped != nil {
			return mapped
		}
	}
	return NewInternalError(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeWorkflowEngineUnavailable:
		return 3

	case ErrCodeModelUnavailable:
		return 2

	case ErrCodeRateLimited:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"errorCategory": GetErrorCategory(stdErr.Code),
		"timestamp":     stdErr.Timestamp.Format(time.RFC3339),
	}
	if len(stdErr.Violations) > 0 {
		vars["violations"] = stdErr.Violations
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes into the three outcomes a user can act on,
// plus the infrastructure buckets.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTripRequestInvalid, ErrCodeItineraryInvalid, ErrCodeInvalidInput:
		return "VALIDATION"
	case ErrCodeModelUnavailable:
		return "UNAVAILABLE"
	case ErrCodeMalformedOutput, ErrCodeSchemaViolation:
		return "AI_OUTPUT"
	case ErrCodeItineraryNotFound, ErrCodeUserNotFound:
		return "NOT_FOUND"
	case ErrCodeDuplicateUser:
		return "CONFLICT"
	case ErrCodeInvalidCredentials, ErrCodeAuthenticationError, ErrCodeForbidden:
		return "AUTH"
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeDatabaseInsertFailed:
		return "DATABASE"
	case ErrCodeSearchQueryFailed:
		return "SEARCH"
	case ErrCodeNotificationSendFailed:
		return "NOTIFICATION"
	case ErrCodeWorkflowEngineUnavailable, ErrCodeWorkflowCommandRejected:
		return "WORKFLOW"
	case ErrCodeRateLimited:
		return "RATE_LIMIT"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps a code to the response status used by the API server.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeTripRequestInvalid, ErrCodeItineraryInvalid, ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeModelUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeMalformedOutput, ErrCodeSchemaViolation:
		return http.StatusBadGateway
	case ErrCodeItineraryNotFound, ErrCodeUserNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateUser:
		return http.StatusConflict
	case ErrCodeInvalidCredentials, ErrCodeAuthenticationError:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeWorkflowEngineUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
