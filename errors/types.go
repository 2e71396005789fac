// Package errors provides structured error types with fix suggestions for
// Wardkeep. These error types wrap underlying failures with stable error
// codes and actionable guidance for resolving common access-control and
// storage problems.
package errors

// WardError provides additional context for error handling.
// It wraps underlying errors with error codes and actionable suggestions.
type WardError interface {
	error
	Unwrap() error              // Original error
	Code() string               // Error code (e.g., "PERMISSION_DENIED")
	Suggestion() string         // Actionable fix suggestion
	Context() map[string]string // Additional context (username, table, etc.)
}

// Identity and credential error codes
const (
	ErrCodeIdentityDuplicate = "IDENTITY_DUPLICATE"
	ErrCodeIdentityNotFound  = "IDENTITY_NOT_FOUND"
	ErrCodePasswordWeak      = "PASSWORD_WEAK"
	ErrCodeCredentialsBad    = "CREDENTIALS_INVALID"
	ErrCodeSessionNotActive  = "SESSION_NOT_ACTIVE"
)

// Authorization error codes
const (
	ErrCodePermissionDenied   = "PERMISSION_DENIED"
	ErrCodeAccessLevelUnknown = "ACCESS_LEVEL_UNKNOWN"
	ErrCodeResourceUnknown    = "RESOURCE_UNKNOWN"
)

// Storage error codes
const (
	ErrCodeDynamoDBAccessDenied    = "DYNAMODB_ACCESS_DENIED"
	ErrCodeDynamoDBTableNotFound   = "DYNAMODB_TABLE_NOT_FOUND"
	ErrCodeDynamoDBThrottled       = "DYNAMODB_THROTTLED"
	ErrCodeDynamoDBConditionFailed = "DYNAMODB_CONDITION_FAILED"
)

// wardError implements the WardError interface.
type wardError struct {
	code       string
	message    string
	suggestion string
	context    map[string]string
	cause      error
}

// Error implements the error interface.
func (e *wardError) Error() string {
	return e.message
}

// Unwrap returns the underlying cause error.
func (e *wardError) Unwrap() error {
	return e.cause
}

// Code returns the error code.
func (e *wardError) Code() string {
	return e.code
}

// Suggestion returns the actionable fix suggestion.
func (e *wardError) Suggestion() string {
	return e.suggestion
}

// Context returns additional context about the error.
func (e *wardError) Context() map[string]string {
	return e.context
}

// New creates a new WardError with the given code, message, suggestion, and cause.
func New(code, message, suggestion string, cause error) WardError {
	return &wardError{
		code:       code,
		message:    message,
		suggestion: suggestion,
		context:    make(map[string]string),
		cause:      cause,
	}
}

// WithContext adds context to an error and returns a new WardError.
// The original error is not modified.
func WithContext(err WardError, key, value string) WardError {
	existingCtx := err.Context()
	newCtx := make(map[string]string, len(existingCtx)+1)
	for k, v := range existingCtx {
		newCtx[k] = v
	}
	newCtx[key] = value

	return &wardError{
		code:       err.Code(),
		message:    err.Error(),
		suggestion: err.Suggestion(),
		context:    newCtx,
		cause:      err.Unwrap(),
	}
}

// IsWardError checks if err is a WardError and returns it.
// If err is nil or not a WardError, returns (nil, false).
func IsWardError(err error) (WardError, bool) {
	if err == nil {
		return nil, false
	}
	if we, ok := err.(WardError); ok {
		return we, true
	}
	return nil, false
}

// GetCode extracts the error code from an error.
// Returns empty string if err is not a WardError.
func GetCode(err error) string {
	if we, ok := IsWardError(err); ok {
		return we.Code()
	}
	return ""
}
