package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Component graph errors
const (
	// ErrCodeIllegalComponent indicates a type or bind call that cannot yield a valid binding.
	ErrCodeIllegalComponent ErrorCode = "ILLEGAL_COMPONENT"
	// ErrCodeDependencyNotFound indicates a declared dependency has no binding.
	ErrCodeDependencyNotFound ErrorCode = "DEPENDENCY_NOT_FOUND"
	// ErrCodeCyclicDependencies indicates the dependency graph contains a cycle.
	ErrCodeCyclicDependencies ErrorCode = "CYCLIC_DEPENDENCIES"
	// ErrCodeConstructionFailed indicates building an instance of a validated graph failed.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
)

// Lookup and input errors
const (
	// ErrCodeNotFound indicates the requested component was not bound.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var validationCodes = map[ErrorCode]bool{
	ErrCodeIllegalComponent:   true,
	ErrCodeDependencyNotFound: true,
	ErrCodeCyclicDependencies: true,
}

// IsValidationCode returns true for codes raised while binding or freezing a
// registry, as opposed to codes raised while resolving.
func IsValidationCode(code ErrorCode) bool {
	return validationCodes[code]
}
