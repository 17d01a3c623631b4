package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Upstream errors
	ErrUpstream            = errors.New("scheduling API request failed")
	ErrUpstreamUnavailable = errors.New("scheduling API is unreachable")
)

// Category groups errors by how the UI reacts to them
type Category int

const (
	// CategoryUnknown is anything not classified below
	CategoryUnknown Category = iota
	// CategoryAuth clears the identity and shows the sign-in page
	CategoryAuth
	// CategoryFetch is shown as a dismissible banner on the page
	CategoryFetch
	// CategoryMutation is shown as a flash notification
	CategoryMutation
	// CategoryValidation is shown inline and blocks the network call
	CategoryValidation
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

// NewValidationError creates a validation error carrying per-field messages
func NewValidationError(message string, fields map[string]interface{}) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: fields,
	}
}

// NewFetchError marks err as a failed read of page data
func NewFetchError(err error, message string) error {
	return &CustomError{
		Err:      err,
		Message:  message,
		Category: CategoryFetch,
	}
}

// NewMutationError marks err as a failed user action
func NewMutationError(err error, message string) error {
	return &CustomError{
		Err:      err,
		Message:  message,
		Category: CategoryMutation,
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

// CategoryOf classifies err. An explicit category on a CustomError wins,
// otherwise sentinel errors decide.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	var ce *CustomError
	if errors.As(err, &ce) && ce.Category != CategoryUnknown {
		return ce.Category
	}
	switch {
	case Is(err, ErrUnauthenticated, ErrInvalidCredentials, ErrTokenExpired, ErrTokenInvalid, ErrSessionNotFound):
		return CategoryAuth
	case Is(err, ErrValidationFailed, ErrBadRequest, ErrPasswordMismatch):
		return CategoryValidation
	}
	return CategoryUnknown
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Category  Category
	Details   map[string]interface{}
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

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
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

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}

// WithCategory sets how the UI reacts to the error
func (e *CustomError) WithCategory(c Category) *CustomError {
	e.Category = c
	return e
}
