package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
	ErrNotReady   = errors.New("not ready")
)

// NotFoundError indicates a resource was not found
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string   { return e.Message }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError indicates invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (repository, message)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotReadyError indicates an operation was requested against a repository
// whose analysis has not completed yet.
type NotReadyError struct {
	Message string
}

func (e *NotReadyError) Error() string   { return e.Message }
func (e *NotReadyError) StatusCode() int { return http.StatusBadRequest }

func (e *NotReadyError) Is(target error) bool { return target == ErrNotReady }
