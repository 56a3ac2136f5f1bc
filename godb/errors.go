package godb

// Error kinds per spec.md §7. TransactionAborted and DbException are the
// only error kinds any caller outside this package should branch on;
// IllegalState/IllegalArgument are programmer errors and panic instead
// (spec.md §7: "these are bugs, not recoverable conditions; the system may
// terminate").

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a GoDBError.
type ErrorCode int

const (
	// TransactionAborted is raised by the LockManager when a request is
	// wounded, or a transaction previously marked shouldAbort attempts any
	// further lock acquisition.
	TransactionAborted ErrorCode = iota
	// DbException covers semantic errors: schema mismatch on insert, no
	// empty slot available, deleting a tuple with no RecordID, reading a
	// page from the wrong file, and I/O failures wrapped at the operator
	// boundary.
	DbException
	// IoException is an underlying file I/O failure. Operators must wrap
	// it as DbException before it crosses the operator boundary (§7).
	IoException
)

func (c ErrorCode) String() string {
	switch c {
	case TransactionAborted:
		return "TransactionAborted"
	case DbException:
		return "DbException"
	case IoException:
		return "IoException"
	default:
		return "UnknownError"
	}
}

// GoDBError is the single result-carrying error type for the recoverable
// failure kinds in spec.md §7.
type GoDBError struct {
	Code ErrorCode
	Msg  string
}

func (e GoDBError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// IsTransactionAborted reports whether err is (or wraps) a GoDBError with
// Code == TransactionAborted.
func IsTransactionAborted(err error) bool {
	var gerr GoDBError
	if errors.As(err, &gerr) {
		return gerr.Code == TransactionAborted
	}
	return false
}

// asOperatorError translates err into a DbException-coded GoDBError before
// it crosses an operator boundary, per spec.md §7/§154's "operators never
// swallow TransactionAborted": a TransactionAborted error passes through
// unwrapped so IsTransactionAborted still recognizes it, but any other
// error (in particular IoException from the buffer pool/heap file) is
// translated to DbException.
func asOperatorError(err error) error {
	if err == nil || IsTransactionAborted(err) {
		return err
	}
	var gerr GoDBError
	if errors.As(err, &gerr) {
		return GoDBError{DbException, gerr.Msg}
	}
	return GoDBError{DbException, err.Error()}
}

func illegalState(format string, args ...any) {
	panic("godb: illegal state: " + fmt.Sprintf(format, args...))
}

func illegalArgument(format string, args ...any) {
	panic("godb: illegal argument: " + fmt.Sprintf(format, args...))
}
