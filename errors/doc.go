// Package errors provides the unified error type used across the module.
// It implements structured errors with machine-readable codes so callers can
// tell bind-time, freeze-time and resolution-time failures apart.
package errors
