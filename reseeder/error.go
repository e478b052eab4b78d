// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reseeder

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrCoordinatorFailed indicates the coordinator stopped after an
	// unrecoverable error and will not reseed anything again.  A new
	// coordinator must be created.
	ErrCoordinatorFailed = ErrorKind("ErrCoordinatorFailed")

	// ErrNilSource indicates a coordinator was configured without a seed
	// source.
	ErrNilSource = ErrorKind("ErrNilSource")

	// ErrInvalidRef indicates a nil target reference was provided.
	ErrInvalidRef = ErrorKind("ErrInvalidRef")

	// ErrSeedFailed indicates the seed source failed during a reseed pass.
	ErrSeedFailed = ErrorKind("ErrSeedFailed")

	// ErrTargetFailed indicates a target rejected the seed it was given.
	ErrTargetFailed = ErrorKind("ErrTargetFailed")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to reseed coordination.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
