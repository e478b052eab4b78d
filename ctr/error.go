// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctr

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidSeedLength indicates a seed or reseed material whose length
	// is outside the range accepted by the algorithm.
	ErrInvalidSeedLength = ErrorKind("ErrInvalidSeedLength")

	// ErrGeneratorFault indicates the block cipher failed while producing
	// output.  A generator that observed this error is permanently faulted.
	ErrGeneratorFault = ErrorKind("ErrGeneratorFault")

	// ErrOutOfEntropy indicates a blocking generator could not obtain fresh
	// seed material from its coordinator or fallback source.
	ErrOutOfEntropy = ErrorKind("ErrOutOfEntropy")

	// ErrInvalidConfig indicates an invalid algorithm or generator
	// configuration.
	ErrInvalidConfig = ErrorKind("ErrInvalidConfig")

	// ErrInvalidState indicates a malformed serialized generator state.
	ErrInvalidState = ErrorKind("ErrInvalidState")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to counter mode generation.  It has full
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
