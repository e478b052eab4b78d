// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctr

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/decred/ctrrand/blockcipher"
	"github.com/decred/dcrd/crypto/blake256"
	"lukechampine.com/blake3"
)

// Algorithm describes a concrete counter mode generator: the block cipher it
// encrypts the counter with, the digest used to fold reseed material into the
// key, and how output is batched.
type Algorithm struct {
	// Name is a short human-readable name.
	Name string

	// NewCipher returns a new unkeyed instance of the block cipher.
	NewCipher func() blockcipher.Cipher

	// NewHash returns the digest used to derive keys on partial reseeds.
	// Its output must be at least as long as the largest key size.
	NewHash func() hash.Hash

	// BlocksAtOnce is the number of cipher blocks encrypted per buffer
	// refill.
	BlocksAtOnce int

	// MinSeedLength is the shortest seed accepted by Init.
	MinSeedLength int
}

// The shipped algorithms.
var (
	// AES encrypts the counter with AES and derives reseed keys with
	// SHA-256.
	AES = &Algorithm{
		Name:          "AES",
		NewCipher:     blockcipher.NewAES,
		NewHash:       sha256.New,
		BlocksAtOnce:  16,
		MinSeedLength: 16,
	}

	// Twofish encrypts the counter with Twofish and derives reseed keys
	// with BLAKE-256.
	Twofish = &Algorithm{
		Name:          "Twofish",
		NewCipher:     blockcipher.NewTwofish,
		NewHash:       blake256.New,
		BlocksAtOnce:  16,
		MinSeedLength: 16,
	}

	// ChaCha20 runs the ChaCha20 block function keyed by the counter and
	// derives reseed keys with BLAKE3.
	ChaCha20 = &Algorithm{
		Name:      "ChaCha20",
		NewCipher: blockcipher.NewChaCha20,
		NewHash: func() hash.Hash {
			return blake3.New(32, nil)
		},
		BlocksAtOnce:  4,
		MinSeedLength: 32,
	}
)

// Algorithms returns the shipped algorithms keyed by lowercase name.
func Algorithms() map[string]*Algorithm {
	return map[string]*Algorithm{
		"aes":      AES,
		"twofish":  Twofish,
		"chacha20": ChaCha20,
	}
}

// String returns the name of the algorithm.
func (a *Algorithm) String() string {
	return a.Name
}

// validate returns an error when the algorithm cannot back an engine.
func (a *Algorithm) validate() error {
	if a == nil || a.NewCipher == nil || a.NewHash == nil {
		return makeError(ErrInvalidConfig, "algorithm requires a cipher "+
			"and a hash")
	}
	if a.BlocksAtOnce <= 0 {
		str := fmt.Sprintf("%s: blocks at once must be positive, got %d",
			a.Name, a.BlocksAtOnce)
		return makeError(ErrInvalidConfig, str)
	}
	return nil
}
