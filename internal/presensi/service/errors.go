package service

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrAlreadyCheckedIn = errors.New("already checked in")
	ErrNoOpenSession    = errors.New("no open session")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrStorageFailure   = errors.New("storage failure")
)

// ArgumentError is a missing or malformed input. It matches
// ErrInvalidArgument with errors.Is; Error returns only the message so it can
// be shown to the caller as is.
type ArgumentError struct {
	Field string
	Msg   string
}

func (e *ArgumentError) Error() string { return e.Msg }

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func invalid(field, msg string) error {
	return &ArgumentError{Field: field, Msg: msg}
}

// StorageError wraps a persistence fault. It matches ErrStorageFailure with
// errors.Is and unwraps to the underlying cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }

func storageFailure(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
