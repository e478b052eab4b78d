// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seedsource

import (
	"fmt"

	"github.com/decred/dcrd/crypto/rand"
)

// prngSource is a Source backed by the userspace CSPRNG of the dcrd
// crypto/rand package, which is itself periodically reseeded from the
// operating system.  It never fails, which makes it suitable as a
// same-goroutine fallback when a reseed coordinator is unavailable.
type prngSource struct{}

// Generate returns n bytes from the userspace CSPRNG.
func (prngSource) Generate(n int) ([]byte, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	rand.Read(b)
	return b, nil
}

// IsWorthTrying always returns true.
func (prngSource) IsWorthTrying() bool {
	return true
}

// String returns the name of the source.
func (prngSource) String() string {
	return "prng"
}

// PRNG is a Source backed by a fast userspace CSPRNG.  It is safe for
// concurrent access.
var PRNG Source = prngSource{}

// NewPRNG returns a Source backed by a dedicated userspace CSPRNG instance
// rather than the shared global one.
func NewPRNG() (Source, error) {
	p, err := rand.NewPRNG()
	if err != nil {
		str := fmt.Sprintf("prng: unable to seed: %v", err)
		return nil, makeError(ErrSeedUnavailable, str)
	}
	return FromReader("prng", &lockedReader{r: p}), nil
}
