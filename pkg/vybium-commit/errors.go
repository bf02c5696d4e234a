package vybiumcommit

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-commit/internal/vybium-commit/core"
	"github.com/vybium/vybium-commit/internal/vybium-commit/protocols"
	"github.com/vybium/vybium-commit/internal/vybium-commit/utils"
)

// ErrorCode represents a vybium-commit error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrNotFound represents a missing or unreadable input resource
	ErrNotFound

	// ErrMalformedInput represents a payload that is not a valid record
	ErrMalformedInput

	// ErrFieldRange represents a value outside the canonical field range.
	// Lifting always reduces modulo p, so this signals a broken invariant.
	ErrFieldRange

	// ErrWriteFailure represents an output resource that could not be created or fully written
	ErrWriteFailure

	// ErrInvalidInput represents raw data the preparation stage cannot use
	ErrInvalidInput
)

// String returns the name of the error code
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrNotFound:
		return "NotFound"
	case ErrMalformedInput:
		return "MalformedInput"
	case ErrFieldRange:
		return "FieldRangeError"
	case ErrWriteFailure:
		return "WriteFailure"
	case ErrInvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// CommitError represents a vybium-commit error
type CommitError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *CommitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-commit error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-commit error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *CommitError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *CommitError) Is(target error) bool {
	t, ok := target.(*CommitError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the code of the first CommitError in err's chain
func CodeOf(err error) ErrorCode {
	var ce *CommitError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrUnknown
}

// classify wraps an internal error into a CommitError
func classify(message string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CommitError
	if errors.As(err, &ce) {
		return err
	}

	code := ErrUnknown
	switch {
	case errors.Is(err, utils.ErrNotFound):
		code = ErrNotFound
	case errors.Is(err, utils.ErrWriteFailure):
		code = ErrWriteFailure
	case errors.Is(err, utils.ErrInvalidConfig):
		code = ErrInvalidConfig
	case errors.Is(err, core.ErrFieldRange):
		code = ErrFieldRange
	case errors.Is(err, protocols.ErrInvalidDataset):
		code = ErrInvalidInput
	case errors.Is(err, protocols.ErrMalformedInput),
		errors.Is(err, protocols.ErrCommitmentMismatch),
		errors.Is(err, core.ErrInvalidInput):
		code = ErrMalformedInput
	}

	return &CommitError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
