package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/listsync/internal/collection"
)

// ErrStopped is returned when a mutation is submitted after Stop.
var ErrStopped = errors.New("engine: machine stopped")

// ErrorCode categorizes mutation failures.
type ErrorCode string

const (
	// ErrCodeIndexOutOfRange mirrors collection.CodeIndexOutOfRange.
	ErrCodeIndexOutOfRange ErrorCode = ErrorCode(collection.CodeIndexOutOfRange)

	// ErrCodeItemNotFound mirrors collection.CodeItemNotFound.
	ErrCodeItemNotFound ErrorCode = ErrorCode(collection.CodeItemNotFound)

	// ErrCodeCallbackPanic indicates a sink or completion callback panicked.
	ErrCodeCallbackPanic ErrorCode = "CALLBACK_PANIC"

	// ErrCodeDispatcherClosed indicates the notification context refused work.
	ErrCodeDispatcherClosed ErrorCode = "DISPATCHER_CLOSED"
)

// MutationError is reported when a queued mutation could not be applied.
//
// Mutation errors are never fatal: the store is left unchanged, no
// notification is emitted, the completion callback is skipped and the worker
// moves on to the next mutation.
type MutationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the mutation kind.
	Op Op

	// MutationID identifies the failed mutation.
	MutationID string

	// Seq is the logical clock value assigned when the mutation was applied.
	// Zero if the mutation never reached the store.
	Seq int64

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *MutationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (mutation=%s, seq=%d): %v", e.Code, e.Op, e.MutationID, e.Seq, e.Err)
	}
	return fmt.Sprintf("%s: %s (mutation=%s, seq=%d)", e.Code, e.Op, e.MutationID, e.Seq)
}

// Unwrap returns the underlying cause, so errors.Is(err,
// collection.ErrItemNotFound) works on reported errors.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the error code from err, or "" if err is not a
// MutationError.
func CodeOf(err error) ErrorCode {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

func newMutationError(code ErrorCode, m mutationInfo, err error) *MutationError {
	return &MutationError{
		Code:       code,
		Op:         m.op,
		MutationID: m.id,
		Seq:        m.seq,
		Err:        err,
	}
}

// storeError wraps a collection error, keeping its code.
func storeError(m mutationInfo, err error) *MutationError {
	return newMutationError(ErrorCode(collection.CodeOf(err)), m, err)
}
