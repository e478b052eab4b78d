// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctr

import (
	"bytes"
	"crypto/aes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"hash/fnv"
	"sync/atomic"
	"testing"

	"github.com/decred/ctrrand/blockcipher"
)

// hexToBytes converts the passed hex string into bytes and will panic if there
// is an error.  This is only provided for the hard-coded constants so errors in
// the source code can be detected.  It will only (and must only) be called with
// hard-coded values.
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// seqBytes returns n bytes counting up from start.
func seqBytes(start byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

// faultyCipher wraps AES and fails to encrypt while fail is set.
type faultyCipher struct {
	blockcipher.Cipher
	fail *atomic.Bool
}

func (c *faultyCipher) Encrypt(dst, counter []byte) error {
	if c.fail.Load() {
		return errors.New("injected cipher failure")
	}
	return c.Cipher.Encrypt(dst, counter)
}

// faultyAlgorithm returns an AES based algorithm whose cipher fails while fail
// is set.
func faultyAlgorithm(fail *atomic.Bool) *Algorithm {
	return &Algorithm{
		Name: "faulty",
		NewCipher: func() blockcipher.Cipher {
			return &faultyCipher{Cipher: blockcipher.NewAES(), fail: fail}
		},
		NewHash:       sha256.New,
		BlocksAtOnce:  16,
		MinSeedLength: 16,
	}
}

// mustEngine returns a new engine and fails the test on error.
func mustEngine(t *testing.T, alg *Algorithm, seed []byte) *Engine {
	t.Helper()
	e, err := NewEngine(alg, seed)
	if err != nil {
		t.Fatalf("NewEngine(%v, %d bytes): unexpected error: %v", alg,
			len(seed), err)
	}
	return e
}

// mustTake returns n bytes from the engine and fails the test on error.
func mustTake(t *testing.T, e *Engine, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if err := e.Take(b); err != nil {
		t.Fatalf("Take(%d): unexpected error: %v", n, err)
	}
	return b
}

var allAlgorithms = []*Algorithm{AES, Twofish, ChaCha20}

// TestEngineInit ensures seeds are split into the longest fitting key and a
// zero padded counter prefix and that out of range seeds are rejected.
func TestEngineInit(t *testing.T) {
	tests := []struct {
		name       string
		alg        *Algorithm
		seedLen    int
		wantKeyLen int
		err        error
	}{
		{"aes min", AES, 16, 16, nil},
		{"aes between key sizes", AES, 20, 16, nil},
		{"aes 192", AES, 24, 24, nil},
		{"aes key and partial counter", AES, 40, 32, nil},
		{"aes key and full counter", AES, 48, 32, nil},
		{"aes too short", AES, 15, 0, ErrInvalidSeedLength},
		{"aes too long", AES, 49, 0, ErrInvalidSeedLength},
		{"twofish min", Twofish, 16, 16, nil},
		{"chacha min", ChaCha20, 32, 32, nil},
		{"chacha one counter byte", ChaCha20, 33, 32, nil},
		{"chacha too short", ChaCha20, 31, 0, ErrInvalidSeedLength},
		{"chacha too long", ChaCha20, 49, 0, ErrInvalidSeedLength},
	}

	for _, test := range tests {
		seed := seqBytes(1, test.seedLen)
		e, err := NewEngine(test.alg, seed)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: mismatched err -- got %v, want %v", test.name, err,
				test.err)
			continue
		}
		if err != nil {
			continue
		}
		if e.KeyLength() != test.wantKeyLen {
			t.Errorf("%s: key length: got %d, want %d", test.name,
				e.KeyLength(), test.wantKeyLen)
			continue
		}
		var wantCounter [CounterSize]byte
		copy(wantCounter[:], seed[test.wantKeyLen:])
		if got := e.Counter(); got != wantCounter {
			t.Errorf("%s: counter: got %x, want %x", test.name, got,
				wantCounter)
			continue
		}
		if !bytes.Equal(e.Seed(), seed) {
			t.Errorf("%s: seed: got %x, want %x", test.name, e.Seed(), seed)
		}
	}
}

// TestEngineLengths ensures the length accessors report the algorithm limits.
func TestEngineLengths(t *testing.T) {
	tests := []struct {
		alg       *Algorithm
		min       int
		maxKey    int
		maxSeed   int
		blockSize int
	}{
		{AES, 16, 32, 48, 16},
		{Twofish, 16, 32, 48, 16},
		{ChaCha20, 32, 32, 48, 64},
	}

	for _, test := range tests {
		e := mustEngine(t, test.alg, seqBytes(0, test.min))
		if e.MinSeedLength() != test.min || e.MaxKeyLength() != test.maxKey ||
			e.MaxSeedLength() != test.maxSeed || e.BlockSize() != test.blockSize {

			t.Errorf("%v: got min %d, max key %d, max seed %d, block %d", test.alg,
				e.MinSeedLength(), e.MaxKeyLength(), e.MaxSeedLength(),
				e.BlockSize())
		}
	}
}

// TestEngineFirstBlock ensures the first output block is the encryption of
// the initial counter plus one.
func TestEngineFirstBlock(t *testing.T) {
	seed := seqBytes(0, 16)
	e := mustEngine(t, AES, seed)
	got := mustTake(t, e, 32)

	block, err := aes.NewCipher(seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := make([]byte, 32)
	block.Encrypt(want[:16], hexToBytes("00000000000000000000000000000001"))
	block.Encrypt(want[16:], hexToBytes("00000000000000000000000000000002"))
	if !bytes.Equal(got, want) {
		t.Fatalf("output: got %x, want %x", got, want)
	}

	// The whole buffer was encrypted on the first read.
	wantCounter := hexToBytes("00000000000000000000000000000010")
	if counter := e.Counter(); !bytes.Equal(counter[:], wantCounter) {
		t.Fatalf("counter: got %x, want %x", counter, wantCounter)
	}
}

// TestEngineDeterminism ensures engines with the same seed produce the same
// output regardless of how the reads are split.
func TestEngineDeterminism(t *testing.T) {
	for _, alg := range allAlgorithms {
		seed := seqBytes(7, 40)
		e1 := mustEngine(t, alg, seed)
		e2 := mustEngine(t, alg, seed)

		want := mustTake(t, e1, 1000)
		var got []byte
		for _, n := range []int{1, 16, 100, 257, 500, 126} {
			got = append(got, mustTake(t, e2, n)...)
		}
		if !bytes.Equal(got[:1000], want) {
			t.Errorf("%v: split reads diverge from a single read", alg)
		}
	}
}

// TestEngineReseedScenario ensures the output of two engines seeded with
// 0x00..0x0f matches and that reseeding with 0x10..0x1f changes it.
func TestEngineReseedScenario(t *testing.T) {
	seed := seqBytes(0x00, 16)
	e1 := mustEngine(t, AES, seed)
	e2 := mustEngine(t, AES, seed)

	a, b := mustTake(t, e1, 16), mustTake(t, e2, 16)
	if !bytes.Equal(a, b) {
		t.Fatalf("identical seeds diverge: %x != %x", a, b)
	}

	bits, err := e1.Reseed(seqBytes(0x10, 16))
	if err != nil {
		t.Fatalf("Reseed: unexpected error: %v", err)
	}
	if bits != 128 {
		t.Fatalf("reseed bits: got %d, want 128", bits)
	}
	if a, b := mustTake(t, e1, 16), mustTake(t, e2, 16); bytes.Equal(a, b) {
		t.Fatalf("reseeded output matches the unreseeded output %x", a)
	}
}

// TestEngineReseed ensures reseed material of the maximum key length replaces
// the key, shorter material is combined with the existing seed and hashed when
// the result is not a key size, and the net new bits are reported.
func TestEngineReseed(t *testing.T) {
	seed := seqBytes(0x00, 16)
	sha := func(b ...[]byte) []byte {
		h := sha256.New()
		for _, p := range b {
			h.Write(p)
		}
		return h.Sum(nil)
	}

	tests := []struct {
		name     string
		material []byte
		wantSeed []byte
		wantBits int64
		err      error
	}{{
		name:     "max key length replaces",
		material: seqBytes(0x40, 32),
		wantSeed: seqBytes(0x40, 32),
		wantBits: 256,
	}, {
		name:     "combined is a key size",
		material: seqBytes(0x40, 8),
		wantSeed: append(seqBytes(0x00, 16), seqBytes(0x40, 8)...),
		wantBits: 64,
	}, {
		name:     "combined is not a key size",
		material: seqBytes(0x40, 4),
		wantSeed: sha(seqBytes(0x00, 16), seqBytes(0x40, 4)),
		wantBits: 32,
	}, {
		name:     "combined is longer than the max key",
		material: seqBytes(0x40, 20),
		wantSeed: sha(seqBytes(0x00, 16), seqBytes(0x40, 20)),
		wantBits: 160,
	}, {
		name:     "longer than the max key",
		material: seqBytes(0x40, 48),
		wantSeed: sha(seqBytes(0x00, 16), seqBytes(0x40, 48)),
		wantBits: 256,
	}, {
		name:     "empty",
		material: nil,
		err:      ErrInvalidSeedLength,
	}, {
		name:     "too long",
		material: seqBytes(0x40, 49),
		err:      ErrInvalidSeedLength,
	}}

	for _, test := range tests {
		e := mustEngine(t, AES, seed)
		mustTake(t, e, 40)
		counter := e.Counter()

		bits, err := e.Reseed(test.material)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: mismatched err -- got %v, want %v", test.name, err,
				test.err)
			continue
		}
		if err != nil {
			continue
		}
		if bits != test.wantBits {
			t.Errorf("%s: bits: got %d, want %d", test.name, bits,
				test.wantBits)
			continue
		}
		if !bytes.Equal(e.Seed(), test.wantSeed) {
			t.Errorf("%s: seed: got %x, want %x", test.name, e.Seed(),
				test.wantSeed)
			continue
		}
		if e.Counter() != counter {
			t.Errorf("%s: counter changed by reseed", test.name)
			continue
		}

		// The output continues from the retained counter, which is 16 after
		// the first buffer, with the new key.
		if counter != [CounterSize]byte{15: 0x10} {
			t.Fatalf("%s: unexpected counter %x", test.name, counter)
		}
		want := mustEngine(t, AES, test.wantSeed)
		if err := want.Seek(16); err != nil {
			t.Fatalf("%s: Seek: unexpected error: %v", test.name, err)
		}
		if got, want := mustTake(t, e, 64), mustTake(t, want, 64); !bytes.Equal(got, want) {
			t.Errorf("%s: output after reseed: got %x, want %x", test.name,
				got, want)
		}
	}
}

// TestEngineReseedDeterministic ensures partial reseeds are deterministic for
// every algorithm.
func TestEngineReseedDeterministic(t *testing.T) {
	for _, alg := range allAlgorithms {
		seed := seqBytes(3, alg.MinSeedLength)
		e1, e2 := mustEngine(t, alg, seed), mustEngine(t, alg, seed)
		for _, e := range []*Engine{e1, e2} {
			if _, err := e.Reseed(seqBytes(0x90, 5)); err != nil {
				t.Fatalf("%v: Reseed: unexpected error: %v", alg, err)
			}
		}
		if !bytes.Equal(mustTake(t, e1, 100), mustTake(t, e2, 100)) {
			t.Errorf("%v: partial reseed is not deterministic", alg)
		}
		if e1.KeyLength() != e1.MaxKeyLength() {
			t.Errorf("%v: hashed key length: got %d, want %d", alg,
				e1.KeyLength(), e1.MaxKeyLength())
		}
	}
}

// TestEngineSeek ensures seeking moves the output position by whole blocks in
// both directions and that seeking back undoes seeking forward.
func TestEngineSeek(t *testing.T) {
	for _, alg := range allAlgorithms {
		seed := seqBytes(9, alg.MinSeedLength)
		ref := mustTake(t, mustEngine(t, alg, seed), 4096)
		bs := mustEngine(t, alg, seed).BlockSize()

		// Seeking a fresh engine skips whole blocks.
		e := mustEngine(t, alg, seed)
		if err := e.Seek(5); err != nil {
			t.Fatalf("%v: Seek: unexpected error: %v", alg, err)
		}
		if got := mustTake(t, e, 50); !bytes.Equal(got, ref[5*bs:5*bs+50]) {
			t.Errorf("%v: seek from start: got %x, want %x", alg, got,
				ref[5*bs:5*bs+50])
		}

		// Seeking mid block keeps the offset within the block.
		e = mustEngine(t, alg, seed)
		mustTake(t, e, 21)
		if err := e.Seek(2); err != nil {
			t.Fatalf("%v: Seek: unexpected error: %v", alg, err)
		}
		start := 21 + 2*bs
		if got := mustTake(t, e, 10); !bytes.Equal(got, ref[start:start+10]) {
			t.Errorf("%v: seek mid block: got %x, want %x", alg, got,
				ref[start:start+10])
		}

		// Seeking back returns to the same position.
		for _, k := range []int64{1, 3, 17, 40, -2} {
			e = mustEngine(t, alg, seed)
			mustTake(t, e, 3*bs+5)
			if err := e.Seek(k); err != nil {
				t.Fatalf("%v: Seek(%d): unexpected error: %v", alg, k, err)
			}
			if err := e.Seek(-k); err != nil {
				t.Fatalf("%v: Seek(%d): unexpected error: %v", alg, -k, err)
			}
			start := 3*bs + 5
			if got := mustTake(t, e, 100); !bytes.Equal(got, ref[start:start+100]) {
				t.Errorf("%v: seek %d and back: got %x, want %x", alg, k, got,
					ref[start:start+100])
			}
		}

		// Seeking by zero does nothing.
		e = mustEngine(t, alg, seed)
		mustTake(t, e, 7)
		if err := e.Seek(0); err != nil {
			t.Fatalf("%v: Seek(0): unexpected error: %v", alg, err)
		}
		if got := mustTake(t, e, 9); !bytes.Equal(got, ref[7:16]) {
			t.Errorf("%v: seek 0: got %x, want %x", alg, got, ref[7:16])
		}
	}
}

// TestEngineSeekBufferTail ensures bytes a read would skip at the tail of the
// buffer are still skipped after seeking forward and back.
func TestEngineSeekBufferTail(t *testing.T) {
	seed := seqBytes(0, 16)
	e1 := mustEngine(t, AES, seed)
	e2 := mustEngine(t, AES, seed)

	// The buffer is 256 bytes, so 6 bytes remain after reading 250.
	mustTake(t, e1, 250)
	mustTake(t, e2, 250)
	if err := e1.Seek(1); err != nil {
		t.Fatalf("Seek: unexpected error: %v", err)
	}
	if err := e1.Seek(-1); err != nil {
		t.Fatalf("Seek: unexpected error: %v", err)
	}
	if got, want := mustTake(t, e1, 40), mustTake(t, e2, 40); !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

// TestEngineSeekOddDraws ensures seeking forward and back leaves the output
// unchanged for draws that do not line up with the buffer, where reads skip
// its tail.
func TestEngineSeekOddDraws(t *testing.T) {
	const draw = 5

	for _, alg := range allAlgorithms {
		for _, k := range []int64{1, 3, 16, -7} {
			seed := seqBytes(0, alg.MinSeedLength)
			e1 := mustEngine(t, alg, seed)
			e2 := mustEngine(t, alg, seed)

			// 245 of the 256 buffered bytes are read, so the second
			// draw below refills with 6 bytes left unread.
			for i := 0; i < 49; i++ {
				mustTake(t, e1, draw)
				mustTake(t, e2, draw)
			}
			if err := e1.Seek(k); err != nil {
				t.Fatalf("%v: Seek(%d): unexpected error: %v", alg, k, err)
			}
			if err := e1.Seek(-k); err != nil {
				t.Fatalf("%v: Seek(%d): unexpected error: %v", alg, -k, err)
			}
			for i := 0; i < 60; i++ {
				got, want := mustTake(t, e1, draw), mustTake(t, e2, draw)
				if !bytes.Equal(got, want) {
					t.Fatalf("%v: draw %d after seek %d and back: got %x, "+
						"want %x", alg, i, k, got, want)
				}
			}
		}
	}
}

// TestEngineSeekWrap ensures seeking wraps around modulo 2^128.
func TestEngineSeekWrap(t *testing.T) {
	key := seqBytes(0x20, 32)
	zero := append(bytes.Clone(key), make([]byte, CounterSize)...)
	top := append(bytes.Clone(key),
		hexToBytes("fffffffffffffffffffffffffffffffd")...)

	e := mustEngine(t, AES, zero)
	if err := e.Seek(-3); err != nil {
		t.Fatalf("Seek: unexpected error: %v", err)
	}
	want := mustTake(t, mustEngine(t, AES, top), 64)
	if got := mustTake(t, e, 64); !bytes.Equal(got, want) {
		t.Fatalf("seek below zero: got %x, want %x", got, want)
	}

	// Reading across the top of the counter range continues from zero.
	wrapped := mustTake(t, mustEngine(t, AES, top), 16*4)
	fromZero := mustTake(t, mustEngine(t, AES, zero), 16)
	if !bytes.Equal(wrapped[48:64], fromZero) {
		t.Fatalf("counter did not wrap: got %x, want %x", wrapped[48:64],
			fromZero)
	}
}

// TestEngineState ensures a restored snapshot reproduces the exact same
// output and that malformed snapshots are rejected.
func TestEngineState(t *testing.T) {
	for _, alg := range allAlgorithms {
		e := mustEngine(t, alg, seqBytes(5, 40))
		fresh := e.State()
		mustTake(t, e, 37)
		mid := e.State()
		want := mustTake(t, e, 300)

		other := mustEngine(t, alg, seqBytes(99, 32))
		if err := other.Restore(mid); err != nil {
			t.Fatalf("%v: Restore: unexpected error: %v", alg, err)
		}
		if got := mustTake(t, other, 300); !bytes.Equal(got, want) {
			t.Errorf("%v: restored output diverges", alg)
		}

		if err := other.Restore(fresh); err != nil {
			t.Fatalf("%v: Restore: unexpected error: %v", alg, err)
		}
		wantFresh := mustTake(t, mustEngine(t, alg, seqBytes(5, 40)), 64)
		if got := mustTake(t, other, 64); !bytes.Equal(got, wantFresh) {
			t.Errorf("%v: restored fresh output diverges", alg)
		}
	}

	e := mustEngine(t, AES, seqBytes(0, 16))
	state := e.State()
	bad := [][]byte{
		nil,
		{0},
		state[:len(state)-1],
		append(bytes.Clone(state), 0),
		append([]byte{8}, state[1:]...),
	}
	for i, s := range bad {
		if err := e.Restore(s); !errors.Is(err, ErrInvalidState) {
			t.Errorf("#%d: mismatched err -- got %v, want %v", i, err,
				ErrInvalidState)
		}
	}
}

// fnvAlgorithm returns an algorithm whose digest is too short for its key.
func fnvAlgorithm() *Algorithm {
	return &Algorithm{
		Name:          "short digest",
		NewCipher:     blockcipher.NewAES,
		NewHash:       func() hash.Hash { return fnv.New64a() },
		BlocksAtOnce:  16,
		MinSeedLength: 16,
	}
}

// TestEngineInvalidAlgorithm ensures algorithms that cannot back an engine are
// rejected.
func TestEngineInvalidAlgorithm(t *testing.T) {
	withBlocks := *AES
	withBlocks.BlocksAtOnce = 0
	shortMin := *AES
	shortMin.MinSeedLength = 8
	longMin := *AES
	longMin.MinSeedLength = 49
	noHash := *AES
	noHash.NewHash = nil

	tests := []struct {
		name string
		alg  *Algorithm
	}{
		{"nil", nil},
		{"no hash", &noHash},
		{"no blocks", &withBlocks},
		{"min below smallest key", &shortMin},
		{"min above max seed", &longMin},
		{"short digest", fnvAlgorithm()},
	}

	for _, test := range tests {
		_, err := NewEngine(test.alg, seqBytes(0, 32))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: mismatched err -- got %v, want %v", test.name, err,
				ErrInvalidConfig)
		}
	}
}

// TestEngineFault ensures cipher failures are reported as generator faults.
func TestEngineFault(t *testing.T) {
	var fail atomic.Bool
	e := mustEngine(t, faultyAlgorithm(&fail), seqBytes(0, 16))
	mustTake(t, e, 10)

	fail.Store(true)
	if err := e.Take(make([]byte, 300)); !errors.Is(err, ErrGeneratorFault) {
		t.Fatalf("Take: got %v, want %v", err, ErrGeneratorFault)
	}
	if err := e.Seek(3); !errors.Is(err, ErrGeneratorFault) {
		t.Fatalf("Seek: got %v, want %v", err, ErrGeneratorFault)
	}
}
