package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory does not exist.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidConfig indicates that construction-time configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates that the embedder failed or returned malformed output.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the store's fixed dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageOperation indicates that a journal operation failed.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrLLMOperation indicates that an LLM operation failed or no LLM is configured.
	ErrLLMOperation = errors.New("llm operation failed")
)

// MemoryError wraps an error with the name of the operation that failed.
//
// Error messages are formatted "llamakeeper: <Op>: <Err>". The wrapped
// error is reachable through errors.Is and errors.As.
type MemoryError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns the formatted error message.
func (e *MemoryError) Error() string {
	return fmt.Sprintf("llamakeeper: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *MemoryError) Unwrap() error {
	return e.Err
}

// NewMemoryError wraps err with operation context.
//
// Returns nil if err is nil, so it can wrap return values directly:
//
//	return NewMemoryError("Store", err)
func NewMemoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &MemoryError{
		Op:  op,
		Err: err,
	}
}
