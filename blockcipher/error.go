// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockcipher

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidKeySize indicates a key was provided whose length is not one
	// of the sizes supported by the cipher.
	ErrInvalidKeySize = ErrorKind("ErrInvalidKeySize")

	// ErrNoKey indicates an attempt to encrypt before a key was set.
	ErrNoKey = ErrorKind("ErrNoKey")

	// ErrBlockSize indicates the counter or destination buffer does not have
	// the size required by the cipher.
	ErrBlockSize = ErrorKind("ErrBlockSize")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to keying or invoking a block cipher.  It
// has full support for errors.Is and errors.As, so the caller can ascertain the
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
