// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctr

import (
	"encoding/binary"
	"fmt"
	"hash"
	"slices"

	"github.com/decred/ctrrand/blockcipher"
	"github.com/decred/ctrrand/internal/uint128"
)

const (
	// CounterSize is the width in bytes of the counter of every engine.
	CounterSize = uint128.Size

	// wordSize is the minimum number of unread buffered bytes required to
	// serve a read without refilling the buffer first.
	wordSize = 8
)

// Engine produces pseudorandom bytes by encrypting successive values of a
// 128-bit counter with a block cipher.  It performs no entropy accounting.
//
// Engine methods are not safe for concurrent access.
type Engine struct {
	alg      *Algorithm
	cipher   blockcipher.Cipher
	hasher   hash.Hash
	keySizes []int
	maxKey   int

	// seed is the material the current key was derived from.  After Init it
	// is the full initial seed including any counter prefix, after Reseed it
	// is exactly the key.
	seed   []byte
	keyLen int

	counter    uint128.Uint128
	counterBuf [CounterSize]byte

	// buf holds BlocksAtOnce encrypted blocks consumed from index.  An index
	// equal to len(buf) means the buffer holds nothing usable.
	buf   []byte
	index int
}

// NewEngine returns an engine for the algorithm initialized with the seed.
func NewEngine(alg *Algorithm, seed []byte) (*Engine, error) {
	if err := alg.validate(); err != nil {
		return nil, err
	}

	c := alg.NewCipher()
	keySizes := slices.Clone(c.KeySizes())
	slices.Sort(keySizes)
	if len(keySizes) == 0 || keySizes[0] <= 0 {
		str := fmt.Sprintf("%s: cipher reports no usable key sizes", alg.Name)
		return nil, makeError(ErrInvalidConfig, str)
	}
	maxKey := keySizes[len(keySizes)-1]
	if c.BlockSize() <= 0 {
		str := fmt.Sprintf("%s: invalid cipher block size %d", alg.Name,
			c.BlockSize())
		return nil, makeError(ErrInvalidConfig, str)
	}
	if alg.MinSeedLength < keySizes[0] || alg.MinSeedLength > maxKey+CounterSize {
		str := fmt.Sprintf("%s: minimum seed length %d is outside [%d, %d]",
			alg.Name, alg.MinSeedLength, keySizes[0], maxKey+CounterSize)
		return nil, makeError(ErrInvalidConfig, str)
	}
	hasher := alg.NewHash()
	if hasher.Size() < maxKey {
		str := fmt.Sprintf("%s: %d byte digest is shorter than the %d byte "+
			"key", alg.Name, hasher.Size(), maxKey)
		return nil, makeError(ErrInvalidConfig, str)
	}

	e := &Engine{
		alg:      alg,
		cipher:   c,
		hasher:   hasher,
		keySizes: keySizes,
		maxKey:   maxKey,
		buf:      make([]byte, alg.BlocksAtOnce*c.BlockSize()),
	}
	e.index = len(e.buf)
	if err := e.Init(seed); err != nil {
		return nil, err
	}
	return e, nil
}

// Algorithm returns the algorithm of the engine.
func (e *Engine) Algorithm() *Algorithm {
	return e.alg
}

// MinSeedLength returns the shortest seed accepted by Init.
func (e *Engine) MinSeedLength() int {
	return e.alg.MinSeedLength
}

// MaxKeyLength returns the largest key size of the cipher.
func (e *Engine) MaxKeyLength() int {
	return e.maxKey
}

// MaxSeedLength returns the longest seed accepted by Init, which is the
// largest key followed by a full counter.
func (e *Engine) MaxSeedLength() int {
	return e.maxKey + CounterSize
}

// KeyLength returns the length of the current key.
func (e *Engine) KeyLength() int {
	return e.keyLen
}

// BlockSize returns the number of bytes produced per counter value.
func (e *Engine) BlockSize() int {
	return e.cipher.BlockSize()
}

// keyLengthFor returns the largest supported key size that is not longer than
// n bytes, or 0 when there is none.
func (e *Engine) keyLengthFor(n int) int {
	n = min(n, e.maxKey)
	keyLen := 0
	for _, size := range e.keySizes {
		if size <= n {
			keyLen = size
		}
	}
	return keyLen
}

// setKey keys the cipher.  A cipher rejecting a key of a size it advertises is
// a fault.
func (e *Engine) setKey(key []byte) error {
	if err := e.cipher.SetKey(key); err != nil {
		str := fmt.Sprintf("%s: unable to set %d byte key: %v", e.alg.Name,
			len(key), err)
		return makeError(ErrGeneratorFault, str)
	}
	e.keyLen = len(key)
	return nil
}

// invalidate discards the buffered output so the next read encrypts fresh
// blocks.
func (e *Engine) invalidate() {
	clear(e.buf)
	e.index = len(e.buf)
}

// Init replaces the state of the engine with the seed.  The longest supported
// key that fits the seed is taken from its front and any remaining bytes
// initialize the front of the counter, zero padded.
func (e *Engine) Init(seed []byte) error {
	if len(seed) < e.MinSeedLength() || len(seed) > e.MaxSeedLength() {
		str := fmt.Sprintf("%s: seed length %d is outside [%d, %d]",
			e.alg.Name, len(seed), e.MinSeedLength(), e.MaxSeedLength())
		return makeError(ErrInvalidSeedLength, str)
	}

	keyLen := e.keyLengthFor(len(seed))
	if err := e.setKey(seed[:keyLen]); err != nil {
		return err
	}
	var counter [CounterSize]byte
	copy(counter[:], seed[keyLen:])
	e.counter.SetBytes(&counter)

	clear(e.seed)
	e.seed = slices.Clone(seed)
	e.invalidate()
	return nil
}

// nextBlock refills the buffer by incrementing the counter and encrypting it
// once per block.
func (e *Engine) nextBlock() error {
	bs := e.cipher.BlockSize()
	for i := 0; i < e.alg.BlocksAtOnce; i++ {
		e.counter.Inc()
		e.counter.PutBytes(&e.counterBuf)
		if err := e.cipher.Encrypt(e.buf[i*bs:], e.counterBuf[:]); err != nil {
			e.invalidate()
			str := fmt.Sprintf("%s: unable to encrypt counter block: %v",
				e.alg.Name, err)
			return makeError(ErrGeneratorFault, str)
		}
	}
	e.index = 0
	return nil
}

// Take fills p with pseudorandom bytes.
func (e *Engine) Take(p []byte) error {
	for len(p) > 0 {
		if len(e.buf)-e.index < wordSize {
			if err := e.nextBlock(); err != nil {
				return err
			}
		}
		n := copy(p, e.buf[e.index:])
		e.index += n
		p = p[n:]
	}
	return nil
}

// Reseed rekeys the engine with new material and returns the number of bits
// of it that survive in the new key.
//
// Material of exactly MaxKeyLength bytes replaces the key outright.  Otherwise
// the material is appended to the current seed and, when the result is not a
// supported key size, the digest of the result truncated to MaxKeyLength
// becomes the key.  The counter is retained and buffered output is discarded.
func (e *Engine) Reseed(material []byte) (int64, error) {
	if len(material) == 0 || len(material) > e.MaxSeedLength() {
		str := fmt.Sprintf("%s: reseed length %d is outside [1, %d]",
			e.alg.Name, len(material), e.MaxSeedLength())
		return 0, makeError(ErrInvalidSeedLength, str)
	}

	var key []byte
	if len(material) == e.maxKey {
		key = slices.Clone(material)
	} else {
		combined := make([]byte, 0, len(e.seed)+len(material))
		combined = append(combined, e.seed...)
		combined = append(combined, material...)
		if len(combined) > e.maxKey || e.keyLengthFor(len(combined)) != len(combined) {
			e.hasher.Reset()
			e.hasher.Write(combined)
			key = e.hasher.Sum(nil)[:e.maxKey]
			clear(combined)
		} else {
			key = combined
		}
	}

	if err := e.setKey(key); err != nil {
		clear(key)
		return 0, err
	}
	clear(e.seed)
	e.seed = key
	e.invalidate()
	return 8 * int64(min(len(material), len(key))), nil
}

// Seek moves the output position by delta cipher blocks in either direction.
// The layout of the buffer is kept, so reads after a seek refill at the same
// offsets as they would have without it.  Counter arithmetic wraps modulo
// 2^128.
func (e *Engine) Seek(delta int64) error {
	if delta == 0 {
		return nil
	}

	// Nothing is buffered, so the next refill starts delta blocks later.
	if e.index >= len(e.buf) {
		e.counter.AddInt64(delta)
		return nil
	}

	// Re-encrypt the buffer delta blocks away and resume at the same
	// offset within it.
	index := e.index
	e.counter.AddInt64(delta - int64(e.alg.BlocksAtOnce))
	if err := e.nextBlock(); err != nil {
		return err
	}
	e.index = index
	return nil
}

// Seed returns a copy of the material the current key was derived from.
func (e *Engine) Seed() []byte {
	return slices.Clone(e.seed)
}

// Counter returns the big-endian counter value of the last encrypted block.
func (e *Engine) Counter() [CounterSize]byte {
	return e.counter.Bytes()
}

// State returns an opaque snapshot of the seed and output position from which
// Restore reproduces the exact same output.
func (e *Engine) State() []byte {
	state := make([]byte, 0, 1+len(e.seed)+CounterSize+2)
	state = append(state, byte(len(e.seed)))
	state = append(state, e.seed...)
	counter := e.counter.Bytes()
	state = append(state, counter[:]...)
	return binary.BigEndian.AppendUint16(state, uint16(e.index))
}

// Restore replaces the state of the engine with a snapshot returned by State
// from an engine of the same algorithm.
func (e *Engine) Restore(state []byte) error {
	if len(state) < 1 {
		return makeError(ErrInvalidState, "empty state")
	}
	seedLen := int(state[0])
	if seedLen == 0 || seedLen > e.MaxSeedLength() ||
		len(state) != 1+seedLen+CounterSize+2 {

		str := fmt.Sprintf("%s: malformed %d byte state", e.alg.Name,
			len(state))
		return makeError(ErrInvalidState, str)
	}
	seed := state[1 : 1+seedLen]
	counter := (*[CounterSize]byte)(state[1+seedLen : 1+seedLen+CounterSize])
	index := int(binary.BigEndian.Uint16(state[1+seedLen+CounterSize:]))
	keyLen := e.keyLengthFor(seedLen)
	if keyLen == 0 || index > len(e.buf) {
		str := fmt.Sprintf("%s: state with %d byte seed and buffer offset "+
			"%d does not match the algorithm", e.alg.Name, seedLen, index)
		return makeError(ErrInvalidState, str)
	}

	if err := e.setKey(seed[:keyLen]); err != nil {
		return err
	}
	clear(e.seed)
	e.seed = slices.Clone(seed)
	e.counter.SetBytes(counter)
	e.invalidate()
	if index == len(e.buf) {
		return nil
	}

	// Re-encrypt the buffer the snapshot was taken from.
	e.counter.AddInt64(-int64(e.alg.BlocksAtOnce))
	if err := e.nextBlock(); err != nil {
		return err
	}
	e.index = index
	return nil
}
