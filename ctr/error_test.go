// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctr

import (
	"errors"
	"io"
	"testing"
)

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrInvalidSeedLength, "ErrInvalidSeedLength"},
		{ErrGeneratorFault, "ErrGeneratorFault"},
		{ErrOutOfEntropy, "ErrOutOfEntropy"},
		{ErrInvalidConfig, "ErrInvalidConfig"},
		{ErrInvalidState, "ErrInvalidState"},
	}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestErrorKindIsAs ensures both ErrorKind and Error can be identified as being
// a specific error kind via errors.Is and unwrapped via errors.As.
func TestErrorKindIsAs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
		wantAs    ErrorKind
	}{{
		name:      "ErrInvalidConfig == ErrInvalidConfig",
		err:       ErrInvalidConfig,
		target:    ErrInvalidConfig,
		wantMatch: true,
		wantAs:    ErrInvalidConfig,
	}, {
		name:      "Error.ErrOutOfEntropy == ErrOutOfEntropy",
		err:       makeError(ErrOutOfEntropy, ""),
		target:    ErrOutOfEntropy,
		wantMatch: true,
		wantAs:    ErrOutOfEntropy,
	}, {
		name:      "Error.ErrInvalidSeedLength == Error.ErrInvalidSeedLength",
		err:       makeError(ErrInvalidSeedLength, ""),
		target:    makeError(ErrInvalidSeedLength, ""),
		wantMatch: true,
		wantAs:    ErrInvalidSeedLength,
	}, {
		name:      "ErrInvalidState != ErrGeneratorFault",
		err:       ErrInvalidState,
		target:    ErrGeneratorFault,
		wantMatch: false,
		wantAs:    ErrInvalidState,
	}, {
		name:      "Error.ErrGeneratorFault != io.EOF",
		err:       makeError(ErrGeneratorFault, ""),
		target:    io.EOF,
		wantMatch: false,
		wantAs:    ErrGeneratorFault,
	}}

	for _, test := range tests {
		// Ensure the error matches or not depending on the expected result.
		result := errors.Is(test.err, test.target)
		if result != test.wantMatch {
			t.Errorf("%s: incorrect error identification -- got %v, want %v",
				test.name, result, test.wantMatch)
			continue
		}

		// Ensure the underlying error kind can be unwrapped and is the
		// expected kind.
		var kind ErrorKind
		if !errors.As(test.err, &kind) {
			t.Errorf("%s: unable to unwrap to error kind", test.name)
			continue
		}
		if kind != test.wantAs {
			t.Errorf("%s: unexpected unwrapped error kind -- got %v, want %v",
				test.name, kind, test.wantAs)
			continue
		}
	}
}
