// Package errors provides the standardized error taxonomy shared by the
// questionnaire, quoting and scoring components and its mapping to BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Request-level errors
const (
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStateInvalid ErrorCode = "SESSION_STATE_INVALID"
	ErrCodeSessionConflict     ErrorCode = "SESSION_CONFLICT"
)

// Degradation errors, recovered locally
const (
	ErrCodeQuoteProviderFailed   ErrorCode = "QUOTE_PROVIDER_FAILED"
	ErrCodeScoringDegraded       ErrorCode = "SCORING_DEGRADED"
	ErrCodeSuggestionUnavailable ErrorCode = "SUGGESTION_UNAVAILABLE"
	ErrCodeNarrativeUnavailable  ErrorCode = "NARRATIVE_UNAVAILABLE"
)

// Infrastructure errors
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeStoreFailed              ErrorCode = "STORE_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
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

// NewValidationError reports an answer whose type, range or option is wrong.
func NewValidationError(questionID, details string) *StandardError {
	return newError(ErrCodeValidation, "Answer failed validation", details, false).
		WithMetadata("questionId", questionID)
}

// NewSessionNotFoundError reports an unknown session id.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Session not found",
		fmt.Sprintf("sessionId: %s", sessionID), false).
		WithMetadata("sessionId", sessionID)
}

// NewSessionStateError reports an operation that the session's state does not allow.
func NewSessionStateError(sessionID, state, operation string) *StandardError {
	return newError(ErrCodeSessionStateInvalid, "Operation not allowed in current session state",
		fmt.Sprintf("sessionId: %s, state: %s, operation: %s", sessionID, state, operation), false).
		WithMetadata("sessionId", sessionID).
		WithMetadata("state", state)
}

// NewSessionConflictError reports a lost optimistic-concurrency race on a session.
func NewSessionConflictError(sessionID string, expected, actual int64) *StandardError {
	return newError(ErrCodeSessionConflict, "Session was modified concurrently",
		fmt.Sprintf("sessionId: %s, expectedVersion: %d, storedVersion: %d", sessionID, expected, actual), true).
		WithMetadata("sessionId", sessionID)
}

// NewQuoteProviderError wraps a single provider failure.
func NewQuoteProviderError(providerID, reason string, err error) *StandardError {
	details := reason
	if err != nil {
		details = fmt.Sprintf("%s: %s", reason, err.Error())
	}
	e := newError(ErrCodeQuoteProviderFailed, "Quote provider unavailable", details, true).
		WithMetadata("providerId", providerID).
		WithMetadata("reason", reason)
	e.cause = err
	return e
}

// NewScoringError reports a metric that could not be computed from the profile.
func NewScoringError(metric, details string) *StandardError {
	return newError(ErrCodeScoringDegraded, "Scoring metric degraded", details, false).
		WithMetadata("metric", metric)
}

// NewSuggestionUnavailableError wraps a suggestion service failure.
func NewSuggestionUnavailableError(err error) *StandardError {
	e := newError(ErrCodeSuggestionUnavailable, "Suggestion service unavailable", err.Error(), true)
	e.cause = err
	return e
}

// NewNarrativeUnavailableError wraps a narrative service failure.
func NewNarrativeUnavailableError(err error) *StandardError {
	e := newError(ErrCodeNarrativeUnavailable, "Narrative service unavailable", err.Error(), true)
	e.cause = err
	return e
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	e := newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
	e.cause = err
	return e
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	e := newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
	e.cause = err
	return e
}

// NewStoreFailedError wraps a session or result store failure.
func NewStoreFailedError(operation string, err error) *StandardError {
	e := newError(ErrCodeStoreFailed, "Store operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
	e.cause = err
	return e
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	e := newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
	e.cause = err
	return e
}

// ==========================
// 4. Error Mapping
// ==========================

// BPMNErrorMapping maps internal codes to the error codes modelled in BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidation:               "ANSWER_INVALID",
	ErrCodeSessionNotFound:          "SESSION_NOT_FOUND",
	ErrCodeSessionStateInvalid:      "SESSION_STATE_INVALID",
	ErrCodeSessionConflict:          "SESSION_CONFLICT",
	ErrCodeDatabaseConnectionFailed: "DATABASE_ERROR",
	ErrCodeQueryExecutionFailed:     "DATABASE_ERROR",
	ErrCodeStoreFailed:              "STORE_ERROR",
	ErrCodeInternal:                 "INTERNAL_ERROR",
}

// GetRetryCount returns the number of job retries a code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeStoreFailed:
		return 3
	case ErrCodeQueryExecutionFailed, ErrCodeSessionConflict:
		return 2
	case ErrCodeQuoteProviderFailed, ErrCodeSuggestionUnavailable, ErrCodeNarrativeUnavailable:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError into a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
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

// AsStandardError extracts a StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsRequestLevel reports whether err should fail the whole request
// rather than degrade a single result.
func IsRequestLevel(err error) bool {
	stdErr, ok := AsStandardError(err)
	if !ok {
		return false
	}
	switch stdErr.Code {
	case ErrCodeSessionNotFound, ErrCodeSessionStateInvalid, ErrCodeSessionConflict:
		return true
	}
	return false
}

// IsRetryableErrorCode reports whether a code is retried by the job handler.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidation:
		return "VALIDATION"
	case ErrCodeSessionNotFound, ErrCodeSessionStateInvalid, ErrCodeSessionConflict:
		return "SESSION"
	case ErrCodeQuoteProviderFailed, ErrCodeSuggestionUnavailable, ErrCodeNarrativeUnavailable:
		return "EXTERNAL_SERVICE"
	case ErrCodeScoringDegraded:
		return "SCORING"
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeStoreFailed:
		return "PERSISTENCE"
	default:
		return "INTERNAL"
	}
}
