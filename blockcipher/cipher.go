// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockcipher adapts block ciphers to the minimal capability a counter
// mode generator needs: accept a key, then encrypt one counter block at a
// time.
//
// The adapters do not define or validate the primitives themselves.  They
// only translate between the fixed 16-byte counter used by the generators and
// the native interface of each cipher.
package blockcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/twofish"
)

// CounterSize is the size in bytes of the counter block passed to Encrypt.
const CounterSize = 16

// Cipher is the capability a counter mode generator consumes.  Implementations
// are not required to be safe for concurrent access.
type Cipher interface {
	// Name returns a short human-readable name of the cipher.
	Name() string

	// KeySizes returns the supported key sizes in bytes in ascending order.
	KeySizes() []int

	// BlockSize returns the number of output bytes produced for each
	// counter block.
	BlockSize() int

	// SetKey replaces the key used by subsequent calls to Encrypt.
	SetKey(key []byte) error

	// Encrypt writes the encryption of the CounterSize byte counter block to
	// the first BlockSize bytes of dst.
	Encrypt(dst, counter []byte) error
}

// checkKeySize returns an error when n is not one of sizes.
func checkKeySize(name string, sizes []int, n int) error {
	for _, size := range sizes {
		if n == size {
			return nil
		}
	}
	str := fmt.Sprintf("%s: invalid key size %d (supported: %v)", name, n,
		sizes)
	return makeError(ErrInvalidKeySize, str)
}

// checkBlock returns an error when the counter or destination are not suitable
// for a cipher with the given block size.
func checkBlock(name string, blockSize int, dst, counter []byte) error {
	if len(counter) != CounterSize {
		str := fmt.Sprintf("%s: counter block is %d bytes instead of %d",
			name, len(counter), CounterSize)
		return makeError(ErrBlockSize, str)
	}
	if len(dst) < blockSize {
		str := fmt.Sprintf("%s: destination is %d bytes which is smaller "+
			"than the %d byte block", name, len(dst), blockSize)
		return makeError(ErrBlockSize, str)
	}
	return nil
}

// nativeBlock adapts a crypto/cipher.Block with a 16-byte block size.
type nativeBlock struct {
	name     string
	keySizes []int
	newBlock func(key []byte) (cipher.Block, error)
	block    cipher.Block
}

func (c *nativeBlock) Name() string    { return c.name }
func (c *nativeBlock) KeySizes() []int { return c.keySizes }
func (c *nativeBlock) BlockSize() int  { return CounterSize }

// SetKey replaces the key used by subsequent calls to Encrypt.
func (c *nativeBlock) SetKey(key []byte) error {
	if err := checkKeySize(c.name, c.keySizes, len(key)); err != nil {
		return err
	}
	block, err := c.newBlock(key)
	if err != nil {
		str := fmt.Sprintf("%s: unable to create cipher: %v", c.name, err)
		return makeError(ErrInvalidKeySize, str)
	}
	c.block = block
	return nil
}

// Encrypt writes the encryption of the counter block to dst.
func (c *nativeBlock) Encrypt(dst, counter []byte) error {
	if c.block == nil {
		return makeError(ErrNoKey, c.name+": no key set")
	}
	if err := checkBlock(c.name, CounterSize, dst, counter); err != nil {
		return err
	}
	c.block.Encrypt(dst[:CounterSize], counter)
	return nil
}

// NewAES returns an unkeyed AES cipher accepting 128, 192 and 256-bit keys.
func NewAES() Cipher {
	return &nativeBlock{
		name:     "AES",
		keySizes: []int{16, 24, 32},
		newBlock: aes.NewCipher,
	}
}

// NewTwofish returns an unkeyed Twofish cipher accepting 128, 192 and 256-bit
// keys.
func NewTwofish() Cipher {
	return &nativeBlock{
		name:     "Twofish",
		keySizes: []int{16, 24, 32},
		newBlock: func(key []byte) (cipher.Block, error) {
			return twofish.NewCipher(key)
		},
	}
}

// chaChaBlockSize is the number of keystream bytes produced by one invocation
// of the ChaCha20 block function.
const chaChaBlockSize = 64

// chaCha20 exposes the ChaCha20 block function as a block cipher whose input
// is the 16-byte counter: the first 12 bytes form the nonce and the last 4
// bytes form the big-endian block counter.
type chaCha20 struct {
	key []byte
}

func (c *chaCha20) Name() string    { return "ChaCha20" }
func (c *chaCha20) KeySizes() []int { return []int{chacha20.KeySize} }
func (c *chaCha20) BlockSize() int  { return chaChaBlockSize }

// SetKey replaces the key used by subsequent calls to Encrypt.
func (c *chaCha20) SetKey(key []byte) error {
	if err := checkKeySize(c.Name(), c.KeySizes(), len(key)); err != nil {
		return err
	}
	c.key = append(c.key[:0], key...)
	return nil
}

// Encrypt writes the 64-byte ChaCha20 block for the counter block to dst.
func (c *chaCha20) Encrypt(dst, counter []byte) error {
	if c.key == nil {
		return makeError(ErrNoKey, "ChaCha20: no key set")
	}
	if err := checkBlock(c.Name(), chaChaBlockSize, dst, counter); err != nil {
		return err
	}
	nonce := counter[:chacha20.NonceSize]
	blockCounter := binary.BigEndian.Uint32(counter[chacha20.NonceSize:])
	s, err := chacha20.NewUnauthenticatedCipher(c.key, nonce)
	if err != nil {
		str := fmt.Sprintf("ChaCha20: unable to create cipher: %v", err)
		return makeError(ErrInvalidKeySize, str)
	}
	s.SetCounter(blockCounter)
	out := dst[:chaChaBlockSize]
	clear(out)
	s.XORKeyStream(out, out)
	return nil
}

// NewChaCha20 returns an unkeyed ChaCha20 block function accepting 256-bit
// keys and producing 64-byte blocks.
func NewChaCha20() Cipher {
	return new(chaCha20)
}
