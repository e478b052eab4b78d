// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package seedsource provides sources of seed material for reseeding
// generators.
//
// A Source produces unpredictable bytes on demand and reports whether it is
// currently worth asking.  The latter lets a source that just failed, such as
// an unreadable device, tell callers not to retry for a while without the
// caller having to poll it.
//
// The package provides the operating system CSPRNG, entropy device files, a
// fast userspace CSPRNG intended as a same-goroutine fallback, an ordered
// chain that moves on to the next source on failure and a throttle that rate
// limits retries of a failing source.
package seedsource

import (
	cryptorand "crypto/rand"
	"fmt"
	"io"
	"sync"
)

// Source is a provider of seed material.  Implementations must be safe for
// concurrent access.
type Source interface {
	// Generate returns n bytes of seed material.
	Generate(n int) ([]byte, error)

	// IsWorthTrying returns false when the source recently failed and a call
	// to Generate is expected to fail as well.  It must not block.
	IsWorthTrying() bool
}

// checkLength returns an error for negative lengths.
func checkLength(n int) error {
	if n < 0 {
		str := fmt.Sprintf("invalid seed length %d", n)
		return makeError(ErrInvalidLength, str)
	}
	return nil
}

// readerSource is a Source backed by an io.Reader that is never expected to
// fail.
type readerSource struct {
	name string
	r    io.Reader
}

// Generate returns n bytes read from the underlying reader.
func (s *readerSource) Generate(n int) ([]byte, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(s.r, b); err != nil {
		str := fmt.Sprintf("%s: unable to read %d bytes: %v", s.name, n, err)
		return nil, makeError(ErrSeedUnavailable, str)
	}
	return b, nil
}

// IsWorthTrying always returns true since the operating system CSPRNG does
// not fail transiently.
func (s *readerSource) IsWorthTrying() bool {
	return true
}

// String returns the name of the source.
func (s *readerSource) String() string {
	return s.name
}

// OS is the operating system CSPRNG as exposed by crypto/rand.
var OS Source = &readerSource{name: "os", r: cryptorand.Reader}

// FromReader returns a Source that reads seed material from r.  The reader must
// be safe for concurrent access.
func FromReader(name string, r io.Reader) Source {
	return &readerSource{name: name, r: r}
}

// lockedReader serializes reads of a reader that is not safe for concurrent
// access.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (lr *lockedReader) Read(p []byte) (int, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.r.Read(p)
}
