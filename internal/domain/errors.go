// Package domain defines core types, interfaces, and errors for the pipeline.
package domain

import "fmt"

// StorageNotFoundError indicates a dataset path holds no committed data.
type StorageNotFoundError struct {
	Message string
}

func (e *StorageNotFoundError) Error() string { return e.Message }

// FetchError indicates a network or API failure during pagination.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string { return e.Message }

// QualityBlockedError indicates the quality gate refused a partition replace.
type QualityBlockedError struct {
	Message string
}

func (e *QualityBlockedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrStorageNotFound creates a StorageNotFoundError with a formatted message.
func ErrStorageNotFound(format string, args ...interface{}) *StorageNotFoundError {
	return &StorageNotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrFetch creates a FetchError with a formatted message.
func ErrFetch(format string, args ...interface{}) *FetchError {
	return &FetchError{Message: fmt.Sprintf(format, args...)}
}

// ErrQualityBlocked creates a QualityBlockedError with a formatted message.
func ErrQualityBlocked(format string, args ...interface{}) *QualityBlockedError {
	return &QualityBlockedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
