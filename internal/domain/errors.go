package domain

import (
	"errors"
	"fmt"
)

// Caller-distinguishable failures.
var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrInvalidInput    = errors.New("title and url are required")
	ErrNotFound        = errors.New("bookmark not found")
	ErrForbidden       = errors.New("bookmark belongs to another user")
	ErrOperationFailed = errors.New("operation failed")
)

// Operation names carried by OperationError.
const (
	OpAdd    = "add"
	OpDelete = "delete"
	OpList   = "list"
)

// OperationError is what callers see when the store failed.
// Its message never contains the underlying cause; the cause stays
// reachable through Unwrap for server-side logging.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	if e.Op == OpList {
		return "failed to list bookmarks"
	}
	return fmt.Sprintf("failed to %s bookmark", e.Op)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrOperationFailed) true for every OperationError.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

// StoreError reports an infrastructure failure inside a gateway.
// It is internal and always wrapped in an OperationError before leaving the service.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err, or returns nil when err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
