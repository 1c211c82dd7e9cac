package contracts

import "errors"

// Sentinel errors shared across devflow packages.
var (
	// Pipeline errors
	ErrPipelineNotFound = errors.New("pipeline not found")
	ErrNilRunner        = errors.New("task has no runner")

	// Context store errors
	ErrContextNotFound = errors.New("context not found")
	ErrStoreClosed     = errors.New("context store closed")

	// Input validation errors
	ErrInvalidInput = errors.New("invalid input: empty or malformed")
)
