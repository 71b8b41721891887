package collection

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// CodeIndexOutOfRange indicates an index outside the legal range for the
	// operation.
	CodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// CodeItemNotFound indicates a lookup-based operation found no equal item.
	CodeItemNotFound ErrorCode = "ITEM_NOT_FOUND"
)

// Sentinel errors matched by errors.Is against any *Error of the same code.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrItemNotFound    = errors.New("item not found")
)

// Error is returned by store operations that fail validation.
// A failed operation never mutates the store.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed (e.g. "insert", "remove_item").
	Op string

	// Index is the offending index. Unused for CodeItemNotFound.
	Index int

	// Len is the store length at the time of the failure.
	Len int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code == CodeItemNotFound {
		return fmt.Sprintf("%s: %s: item not found (len=%d)", e.Code, e.Op, e.Len)
	}
	return fmt.Sprintf("%s: %s: index %d out of range (len=%d)", e.Code, e.Op, e.Index, e.Len)
}

// Unwrap maps the error code onto its sentinel so errors.Is works.
func (e *Error) Unwrap() error {
	switch e.Code {
	case CodeIndexOutOfRange:
		return ErrIndexOutOfRange
	case CodeItemNotFound:
		return ErrItemNotFound
	default:
		return nil
	}
}

// IsIndexOutOfRange returns true if err is, or wraps, an index error.
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

// IsItemNotFound returns true if err is, or wraps, a failed lookup.
func IsItemNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// CodeOf extracts the error code from err, or "" if err is not a store error.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func outOfRange(op string, index, n int) *Error {
	return &Error{Code: CodeIndexOutOfRange, Op: op, Index: index, Len: n}
}

func notFound(op string, n int) *Error {
	return &Error{Code: CodeItemNotFound, Op: op, Index: -1, Len: n}
}
