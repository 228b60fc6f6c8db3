package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no binding exists for a code, alias or (user, long URL) pair.
	ErrNotFound = errors.New("url not found")

	// ErrAlreadyExists indicates a store-level uniqueness violation on insert.
	ErrAlreadyExists = errors.New("url already exists")

	// ErrInvalidURL indicates the store rejected the record as malformed.
	ErrInvalidURL = errors.New("invalid url")

	// ErrConflict is matched by the policy conflicts raised while shortening.
	ErrConflict = errors.New("url conflict")

	// ErrTransient indicates a coordination, store or cache I/O failure.
	// Callers may retry; nothing in this package does.
	ErrTransient = errors.New("transient backend failure")

	// ErrInternal indicates an encoding, parsing or invariant failure. Never retryable.
	ErrInternal = errors.New("internal error")

	// ErrRangeExhausted indicates the shard owned by this process has no ids left.
	ErrRangeExhausted = errors.New("id range exhausted")
)

// AliasTakenError is returned when the alias is bound to a different alias record.
type AliasTakenError struct {
	Alias string
}

func (e *AliasTakenError) Error() string {
	return fmt.Sprintf("alias already taken: %s", e.Alias)
}

func (e *AliasTakenError) Is(target error) bool {
	return target == ErrConflict
}

// URLExistsWithAliasError is returned when the alias is already bound to another long URL.
type URLExistsWithAliasError struct {
	Alias string
}

func (e *URLExistsWithAliasError) Error() string {
	return fmt.Sprintf("url already existed with alias: %s", e.Alias)
}

func (e *URLExistsWithAliasError) Is(target error) bool {
	return target == ErrConflict
}

// BackendError tags a lower-layer failure with its class while keeping the cause.
type BackendError struct {
	Kind  error
	Op    string
	Cause error
}

func (e *BackendError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Cause)
}

func (e *BackendError) Is(target error) bool {
	return target == e.Kind
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Transient wraps cause as a retryable backend failure of op.
func Transient(op string, cause error) error {
	return &BackendError{Kind: ErrTransient, Op: op, Cause: cause}
}

// Duplicate wraps a uniqueness violation reported by a store driver.
func Duplicate(op string, cause error) error {
	return &BackendError{Kind: ErrAlreadyExists, Op: op, Cause: cause}
}

// Internal wraps cause as a non-retryable failure of op.
func Internal(op string, cause error) error {
	return &BackendError{Kind: ErrInternal, Op: op, Cause: cause}
}
