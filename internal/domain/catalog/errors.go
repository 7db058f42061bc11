package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies catalog failures.
type ErrorCode string

const (
	CodeNotFound            ErrorCode = "not_found"
	CodeConstraintViolation ErrorCode = "constraint_violation"
	CodeSyncError           ErrorCode = "sync_error"
	CodeParseError          ErrorCode = "parse_error"
	CodeInternal            ErrorCode = "internal"
)

// Error is the canonical catalog error.
//
// For CodeSyncError, Committed reports whether the store mutation behind the
// failed cache write was committed. When true the store is authoritative and
// the cache stays stale until the next reseed or reconciliation.
type Error struct {
	Code      ErrorCode
	Op        string
	Message   string
	Cause     error
	Committed bool
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with a catalog code. A nil err stays nil.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func NotFound(op, message string) error {
	return NewError(CodeNotFound, op, message, nil)
}

func ConstraintViolation(op, message string, cause error) error {
	return NewError(CodeConstraintViolation, op, message, cause)
}

func ParseError(op, message string) error {
	return NewError(CodeParseError, op, message, nil)
}

// SyncError reports a cache write that failed around a store mutation.
func SyncError(op string, committed bool, cause error) error {
	msg := "tree cache write failed"
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	return &Error{Code: CodeSyncError, Op: strings.TrimSpace(op), Message: msg, Cause: cause, Committed: committed}
}

func IsCode(err error, code ErrorCode) bool {
	var catErr *Error
	if !errors.As(err, &catErr) {
		return false
	}
	return catErr.Code == code
}

func CodeOf(err error) ErrorCode {
	var catErr *Error
	if !errors.As(err, &catErr) {
		return ""
	}
	return catErr.Code
}
