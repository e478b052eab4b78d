// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package uint128 implements fixed precision unsigned 128-bit integer
// arithmetic suitable for block cipher counters.
//
// All operations are performed modulo 2^128, so callers may rely on "wrap
// around" semantics.  The canonical serialized form is 16 big-endian bytes.
package uint128

import (
	"encoding/binary"
	"math/bits"
)

// Uint128 implements zero-allocation, unsigned 128-bit fixed-precision
// arithmetic.  The zero value is 0.
type Uint128 struct {
	// The uint128 is represented as 2 unsigned 64-bit integers in base 2^64.
	//
	//  ---------------------------------
	// |      n[1]      |      n[0]      |
	// | 64 bits        | 64 bits        |
	// | Mult: 2^64     | Mult: 2^0      |
	//  ---------------------------------
	n [2]uint64
}

// Size is the number of bytes in the serialized form of a Uint128.
const Size = 16

// Set sets the uint128 equal to the same value as the passed one.
//
// The uint128 is returned to support chaining.  This enables syntax like:
// n := new(Uint128).Set(n2).AddUint64(1) so that n = n2 + 1 where n2 is not
// modified.
func (n *Uint128) Set(n2 *Uint128) *Uint128 {
	*n = *n2
	return n
}

// SetUint64 sets the uint128 to the passed unsigned 64-bit integer.
//
// The uint128 is returned to support chaining.
func (n *Uint128) SetUint64(n2 uint64) *Uint128 {
	n.n[0] = n2
	n.n[1] = 0
	return n
}

// SetInt64 sets the uint128 to the two's complement representation of the
// passed signed 64-bit integer, so negative values are stored as 2^128 - |v|.
//
// The uint128 is returned to support chaining.
func (n *Uint128) SetInt64(v int64) *Uint128 {
	n.n[0] = uint64(v)
	n.n[1] = uint64(v >> 63)
	return n
}

// SetBytes interprets the provided array as a 128-bit big-endian unsigned
// integer and sets the uint128 to the result.
//
// The uint128 is returned to support chaining.
func (n *Uint128) SetBytes(b *[Size]byte) *Uint128 {
	n.n[1] = binary.BigEndian.Uint64(b[0:8])
	n.n[0] = binary.BigEndian.Uint64(b[8:16])
	return n
}

// SetByteSlice interprets the provided slice as a big-endian unsigned integer
// (meaning it is only padded on the left when shorter than 16 bytes), sets the
// uint128 to the result modulo 2^128 and returns whether or not the value was
// truncated.
func (n *Uint128) SetByteSlice(b []byte) bool {
	truncated := false
	if len(b) > Size {
		truncated = true
		b = b[len(b)-Size:]
	}
	var padded [Size]byte
	copy(padded[Size-len(b):], b)
	n.SetBytes(&padded)
	return truncated
}

// PutBytes packs the uint128 to the passed array as a 128-bit big-endian
// unsigned integer.
func (n *Uint128) PutBytes(b *[Size]byte) {
	binary.BigEndian.PutUint64(b[0:8], n.n[1])
	binary.BigEndian.PutUint64(b[8:16], n.n[0])
}

// Bytes returns the uint128 as a 128-bit big-endian unsigned integer.
func (n *Uint128) Bytes() [Size]byte {
	var b [Size]byte
	n.PutBytes(&b)
	return b
}

// Uint64 returns the least significant 64 bits of the uint128.
func (n *Uint128) Uint64() uint64 {
	return n.n[0]
}

// IsZero returns whether or not the uint128 is equal to zero.
func (n *Uint128) IsZero() bool {
	return n.n[0]|n.n[1] == 0
}

// Eq returns whether or not the two uint128s represent the same value.
func (n *Uint128) Eq(n2 *Uint128) bool {
	return n.n[0] == n2.n[0] && n.n[1] == n2.n[1]
}

// Cmp compares the two uint128s and returns -1, 0, or 1 when n is less than,
// equal to, or greater than n2, respectively.
func (n *Uint128) Cmp(n2 *Uint128) int {
	switch {
	case n.n[1] < n2.n[1]:
		return -1
	case n.n[1] > n2.n[1]:
		return 1
	case n.n[0] < n2.n[0]:
		return -1
	case n.n[0] > n2.n[0]:
		return 1
	}
	return 0
}

// Add adds the passed uint128 to the existing one modulo 2^128 and stores the
// result in n.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Add(n2 *Uint128) *Uint128 {
	var c uint64
	n.n[0], c = bits.Add64(n.n[0], n2.n[0], 0)
	n.n[1], _ = bits.Add64(n.n[1], n2.n[1], c)
	return n
}

// AddUint64 adds the passed unsigned 64-bit integer to the existing uint128
// modulo 2^128.
//
// The uint128 is returned to support chaining.
func (n *Uint128) AddUint64(n2 uint64) *Uint128 {
	var c uint64
	n.n[0], c = bits.Add64(n.n[0], n2, 0)
	n.n[1] += c
	return n
}

// AddInt64 adds the passed signed 64-bit integer to the existing uint128
// modulo 2^128.  Negative values subtract.
//
// The uint128 is returned to support chaining.
func (n *Uint128) AddInt64(v int64) *Uint128 {
	var delta Uint128
	return n.Add(delta.SetInt64(v))
}

// Inc increments the uint128 by one modulo 2^128.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Inc() *Uint128 {
	return n.AddUint64(1)
}

// Sub subtracts the passed uint128 from the existing one modulo 2^128.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Sub(n2 *Uint128) *Uint128 {
	var borrow uint64
	n.n[0], borrow = bits.Sub64(n.n[0], n2.n[0], 0)
	n.n[1], _ = bits.Sub64(n.n[1], n2.n[1], borrow)
	return n
}

// Negate negates the uint128 modulo 2^128.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Negate() *Uint128 {
	var zero Uint128
	*n = *zero.Sub(n)
	return n
}

// Mul multiplies the passed uint128 by the existing one modulo 2^128.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Mul(n2 *Uint128) *Uint128 {
	// The cross terms only affect the upper word and the product of the upper
	// words is entirely beyond 2^128, so it is dropped.
	hi, lo := bits.Mul64(n.n[0], n2.n[0])
	hi += n.n[1]*n2.n[0] + n.n[0]*n2.n[1]
	n.n[0], n.n[1] = lo, hi
	return n
}

// Lsh shifts the uint128 to the left by the given number of bits.  Shifts of
// 128 bits or more result in zero.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Lsh(bits uint32) *Uint128 {
	switch {
	case bits >= 128:
		n.n[0], n.n[1] = 0, 0
	case bits >= 64:
		n.n[1] = n.n[0] << (bits - 64)
		n.n[0] = 0
	case bits > 0:
		n.n[1] = n.n[1]<<bits | n.n[0]>>(64-bits)
		n.n[0] <<= bits
	}
	return n
}

// Rsh shifts the uint128 to the right by the given number of bits.  Shifts of
// 128 bits or more result in zero.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Rsh(bits uint32) *Uint128 {
	switch {
	case bits >= 128:
		n.n[0], n.n[1] = 0, 0
	case bits >= 64:
		n.n[0] = n.n[1] >> (bits - 64)
		n.n[1] = 0
	case bits > 0:
		n.n[0] = n.n[0]>>bits | n.n[1]<<(64-bits)
		n.n[1] >>= bits
	}
	return n
}

// RotateLeft rotates the uint128 to the left by k bits.  To rotate to the
// right, call RotateLeft with a negative k.
//
// The uint128 is returned to support chaining.
func (n *Uint128) RotateLeft(k int) *Uint128 {
	s := uint32(k & 127)
	if s == 0 {
		return n
	}
	lo := *n
	n.Lsh(s)
	lo.Rsh(128 - s)
	n.n[0] |= lo.n[0]
	n.n[1] |= lo.n[1]
	return n
}

// Xor computes the bitwise exclusive or of the uint128 and the passed one.
//
// The uint128 is returned to support chaining.
func (n *Uint128) Xor(n2 *Uint128) *Uint128 {
	n.n[0] ^= n2.n[0]
	n.n[1] ^= n2.n[1]
	return n
}

// AdvanceAffine returns the state reached after applying the recurrence
// x = a*x + c (mod 2^128) steps times starting from x, in O(log steps)
// multiplications.
//
// When a is odd the recurrence is a bijection whose period divides 2^128, so
// a rewind by k steps is an advance by 2^128 - k, which is what the two's
// complement of a negative count produces.  An even a loses state on every
// step and can not be rewound; with a = 0 every advance of at least one step
// yields c.
func AdvanceAffine(x, a, c, steps Uint128) Uint128 {
	accMul := *new(Uint128).SetUint64(1)
	var accAdd Uint128
	curMul, curAdd := a, c
	for !steps.IsZero() {
		if steps.n[0]&1 == 1 {
			accMul.Mul(&curMul)
			accAdd.Mul(&curMul).Add(&curAdd)
		}

		// Doubling: applying (m, p) twice is (m*m, (m+1)*p).
		mulPlusOne := curMul
		mulPlusOne.AddUint64(1)
		curAdd.Mul(&mulPlusOne)
		curMul.Mul(&curMul)
		steps.Rsh(1)
	}
	return *accMul.Mul(&x).Add(&accAdd)
}
