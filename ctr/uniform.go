// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
//
// Uniform random algorithms modified from the Go math/rand/v2 package with
// the following license:
//
// Copyright (c) 2009 The Go Authors. All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are
// met:
//
//    * Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//    * Redistributions in binary form must reproduce the above
// copyright notice, this list of conditions and the following disclaimer
// in the documentation and/or other materials provided with the
// distribution.
//    * Neither the name of Google Inc. nor the names of its
// contributors may be used to endorse or promote products derived from
// this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
// "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
// LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
// A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
// OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
// LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
// DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
// THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package ctr

import (
	"encoding/binary"
	"math/bits"
	"time"
)

// The number of entropy bits debited by each kind of draw.  These are
// bookkeeping conventions rather than measured quantities.
const (
	boolBits    = 1
	float32Bits = 24
	float64Bits = 53
	uint32Bits  = 32
	uint64Bits  = 64
)

// uint64Debit draws 8 bytes while debiting the given number of bits.
func (g *Generator) uint64Debit(bits int64) (uint64, error) {
	var b [8]byte
	g.mu.Lock()
	err := g.takeLocked(b[:], bits)
	g.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// uint32Debit draws 4 bytes while debiting the given number of bits.
func (g *Generator) uint32Debit(bits int64) (uint32, error) {
	var b [4]byte
	g.mu.Lock()
	err := g.takeLocked(b[:], bits)
	g.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Uint32 returns a uniform random uint32.
func (g *Generator) Uint32() (uint32, error) {
	return g.uint32Debit(uint32Bits)
}

// Uint64 returns a uniform random uint64.
func (g *Generator) Uint64() (uint64, error) {
	return g.uint64Debit(uint64Bits)
}

// Int32 returns a random 31-bit non-negative integer as an int32 without
// modulo bias.
func (g *Generator) Int32() (int32, error) {
	v, err := g.uint32Debit(uint32Bits)
	return int32(v & 0x7FFFFFFF), err
}

// Int64 returns a random 63-bit non-negative integer as an int64 without
// modulo bias.
func (g *Generator) Int64() (int64, error) {
	v, err := g.uint64Debit(uint64Bits)
	return int64(v & 0x7FFFFFFF_FFFFFFFF), err
}

// Int returns a non-negative integer without bias.
func (g *Generator) Int() (int, error) {
	v, err := g.uint64Debit(uint64Bits)
	return int(uint(v) << 1 >> 1), err
}

// uint64N returns a random uint64 in range [0,n) without modulo bias.  Only
// the accepted draw is debited, with the number of bits needed to represent
// n-1.
func (g *Generator) uint64N(n uint64) (uint64, error) {
	debit := int64(bits.Len64(n - 1))
	if n&(n-1) == 0 { // n is power of two, can mask
		v, err := g.uint64Debit(debit)
		return v & (n - 1), err
	}

	// See the math/rand/v2 package for the derivation of this nearly
	// divisionless rejection method.
	x, err := g.uint64Debit(debit)
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(x, n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			x, err = g.uint64Debit(0)
			if err != nil {
				return 0, err
			}
			hi, lo = bits.Mul64(x, n)
		}
	}
	return hi, nil
}

// Uint32N returns a random uint32 in range [0,n) without modulo bias.
func (g *Generator) Uint32N(n uint32) (uint32, error) {
	v, err := g.uint64N(uint64(n))
	return uint32(v), err
}

// Uint64N returns a random uint64 in range [0,n) without modulo bias.
func (g *Generator) Uint64N(n uint64) (uint64, error) {
	return g.uint64N(n)
}

// Int32N returns, as an int32, a random 31-bit non-negative integer in [0,n)
// without modulo bias.
// Panics if n <= 0.
func (g *Generator) Int32N(n int32) (int32, error) {
	if n <= 0 {
		panic("ctr: invalid argument to Int32N")
	}
	v, err := g.uint64N(uint64(n))
	return int32(v), err
}

// Int64N returns, as an int64, a random 63-bit non-negative integer in [0,n)
// without modulo bias.
// Panics if n <= 0.
func (g *Generator) Int64N(n int64) (int64, error) {
	if n <= 0 {
		panic("ctr: invalid argument to Int64N")
	}
	v, err := g.uint64N(uint64(n))
	return int64(v), err
}

// IntN returns, as an int, a random non-negative integer in [0,n) without
// modulo bias.
// Panics if n <= 0.
func (g *Generator) IntN(n int) (int, error) {
	if n <= 0 {
		panic("ctr: invalid argument to IntN")
	}
	v, err := g.uint64N(uint64(n))
	return int(v), err
}

// Duration returns a random duration in [0,n) without modulo bias.
// Panics if n <= 0.
func (g *Generator) Duration(n time.Duration) (time.Duration, error) {
	if n <= 0 {
		panic("ctr: invalid argument to Duration")
	}
	v, err := g.uint64N(uint64(n))
	return time.Duration(v), err
}

// Bool returns a uniform random boolean, debiting a single bit.
func (g *Generator) Bool() (bool, error) {
	var b [1]byte
	g.mu.Lock()
	err := g.takeLocked(b[:], boolBits)
	g.mu.Unlock()
	return b[0]&1 == 1, err
}

// Float32 returns a uniform random float32 in [0.0,1.0).
func (g *Generator) Float32() (float32, error) {
	v, err := g.uint32Debit(float32Bits)
	return float32(v<<8>>8) / (1 << 24), err
}

// Float64 returns a uniform random float64 in [0.0,1.0).
func (g *Generator) Float64() (float64, error) {
	v, err := g.uint64Debit(float64Bits)
	return float64(v<<11>>11) / (1 << 53), err
}

// Shuffle randomizes the order of n elements by swapping the elements at
// indexes i and j.
// Panics if n < 0.
func (g *Generator) Shuffle(n int, swap func(i, j int)) error {
	if n < 0 {
		panic("ctr: invalid argument to Shuffle")
	}

	// Fisher-Yates shuffle: https://en.wikipedia.org/wiki/Fisher%E2%80%93Yates_shuffle
	for i := n - 1; i > 0; i-- {
		j, err := g.uint64N(uint64(i + 1))
		if err != nil {
			return err
		}
		swap(i, int(j))
	}
	return nil
}
