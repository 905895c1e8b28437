package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrTokenMissing       = errors.New("no token provided")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrRequestTooLarge  = errors.New("request too large")

	// Infrastructure errors
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTooManyRequests    = errors.New("too many requests")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewRequestTooLargeError rejects a body over the route's size limit.
func NewRequestTooLargeError(message string) error {
	return &CustomError{
		Err:     ErrRequestTooLarge,
		Message: message,
	}
}

// NewValidationError creates a validation failure. fields maps a request field to
// the reason it was rejected and may be nil.
func NewValidationError(message string, fields map[string]string) error {
	e := &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
	if len(fields) > 0 {
		e.Details = map[string]interface{}{"fields": fields}
	}
	return e
}

// NewUnauthenticatedError tags a 401 with the reason it happened (missing, expired,
// invalid token or unknown user).
func NewUnauthenticatedError(reason error, message string) error {
	return &CustomError{
		Err:     reason,
		Message: message,
	}
}

// NewServiceUnavailableError wraps a store failure that should surface as 503.
func NewServiceUnavailableError(message string, cause error) error {
	return &CustomError{
		Err:     ErrServiceUnavailable,
		Message: message,
		Cause:   cause,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
	// Cause is the lower-level failure, kept for logs. It is never shown to callers.
	Cause error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithCause records the underlying failure.
func (e *CustomError) WithCause(cause error) *CustomError {
	e.Cause = cause
	return e
}

// Message returns the user-facing message carried by err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

// Details returns the structured details carried by err, if any.
func Details(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}
