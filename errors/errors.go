package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError carrying the same code, so that
// stderrors.Is(err, &AppError{Code: ErrCodeCyclicDependencies}) works.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Component graph constructors ---

// IllegalComponent creates an AppError for a component whose shape or bind
// call cannot produce a valid binding.
func IllegalComponent(component any, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeIllegalComponent,
		Message: fmt.Sprintf("illegal component %v: %s", component, reason),
		Details: map[string]any{"component": component, "reason": reason},
	}
}

// DependencyNotFound creates an AppError for a declared dependency that has no binding.
func DependencyNotFound(component, dependency any) *AppError {
	return &AppError{
		Code:    ErrCodeDependencyNotFound,
		Message: fmt.Sprintf("%v depends on %v, which is not bound", component, dependency),
		Details: map[string]any{"component": component, "dependency": dependency},
	}
}

// CyclicDependencies creates an AppError for a dependency cycle. The path
// lists every component on the cycle and ends with the repeated component.
func CyclicDependencies[T fmt.Stringer](path []T) *AppError {
	names := make([]string, len(path))
	for i, p := range path {
		names[i] = p.String()
	}
	return &AppError{
		Code:    ErrCodeCyclicDependencies,
		Message: "cyclic dependencies found: " + strings.Join(names, " -> "),
		Details: map[string]any{"path": path},
	}
}

// ConstructionFailed creates an AppError for a failure while building an
// instance of an already validated graph.
func ConstructionFailed(component any, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeConstructionFailed,
		Message: fmt.Sprintf("failed to construct %v", component),
		Details: map[string]any{"component": component},
		Cause:   cause,
	}
}

// NotFound creates an AppError for a component that was not bound.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("the requested %s was not found", resource),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// --- Inspection helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is, or wraps, an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Wrap converts any error to an AppError. AppErrors anywhere in the chain are
// returned as-is; other errors become INTERNAL_ERROR with the original as cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
