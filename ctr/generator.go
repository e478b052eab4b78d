// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctr

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/decred/ctrrand/ledger"
	"github.com/decred/ctrrand/reseeder"
	"github.com/decred/ctrrand/seedsource"
)

// Config holds the configuration options of a generator.
type Config struct {
	// Seed is the initial seed.  When nil, a seed of NewSeedLength bytes is
	// generated from Fallback, the source of Coordinator, or the default
	// seed source chain, in that order.
	Seed []byte

	// Coordinator, when set, is attached on creation and reseeds the
	// generator in the background.
	Coordinator *reseeder.Coordinator

	// Fallback is a seed source used to reseed inline when a blocking
	// generator has no working coordinator.
	Fallback seedsource.Source

	// Blocking enables the blocking reseed protocol: draws that would take
	// the entropy balance below MinimumEntropy wait for a reseed instead of
	// proceeding.
	Blocking bool

	// MinimumEntropy is the floor of the entropy balance when Blocking is
	// set.  It must not be positive.
	MinimumEntropy int64

	// ReseedTimeout bounds the total time a draw waits on the coordinator.
	// Zero waits until reseeded.
	ReseedTimeout time.Duration
}

// attachment identifies a registry entry so the cleanup of a collected
// generator can remove it without referencing the generator.
type attachment struct {
	coord  *reseeder.Coordinator
	handle reseeder.Handle
}

// detach removes the registry entry.
func (a attachment) detach() {
	a.coord.Detach(a.handle)
}

// Generator is a counter mode generator that tracks the entropy it has spent
// and obtains fresh seed material from a coordinator or fallback source.  It
// is safe for concurrent access.
type Generator struct {
	// The following fields are set at creation and treated as immutable.
	seedLen  int
	blocking bool
	floor    int64
	timeout  time.Duration
	fallback seedsource.Source
	ledger   *ledger.Ledger

	// faulted mirrors fault for lock-free checks by the coordinator.
	faulted atomic.Bool

	// waiters and needBits describe draws currently blocked on a reseed
	// so the coordinator reseeds even when the balance is still positive.
	waiters  atomic.Int32
	needBits atomic.Int64

	// The following fields are protected by mu.  cond is signaled whenever
	// the entropy balance or the seeding arrangement changes.
	mu      sync.Mutex
	cond    *sync.Cond
	engine  *Engine
	fault   error
	coord   *reseeder.Coordinator
	handle  reseeder.Handle
	cleanup runtime.Cleanup
}

// Ensure Generator implements the reseeder.Target interface.
var _ reseeder.Target = (*Generator)(nil)

// newSeedLength returns the number of seed bytes that fully rekey an engine
// of the algorithm.
func newSeedLength(alg *Algorithm) int {
	return slices.Max(alg.NewCipher().KeySizes())
}

// New returns a generator for the algorithm.
func New(alg *Algorithm, cfg *Config) (*Generator, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	if err := alg.validate(); err != nil {
		return nil, err
	}
	if cfg.MinimumEntropy > 0 {
		str := fmt.Sprintf("minimum entropy must not be positive, got %d",
			cfg.MinimumEntropy)
		return nil, makeError(ErrInvalidConfig, str)
	}
	if cfg.ReseedTimeout < 0 {
		str := fmt.Sprintf("reseed timeout must not be negative, got %v",
			cfg.ReseedTimeout)
		return nil, makeError(ErrInvalidConfig, str)
	}

	seed := cfg.Seed
	if seed == nil {
		src := cfg.Fallback
		if src == nil && cfg.Coordinator != nil {
			src = cfg.Coordinator.Source()
		}
		if src == nil {
			src = seedsource.Default()
		}
		n := max(newSeedLength(alg), alg.MinSeedLength)
		var err error
		seed, err = src.Generate(n)
		if err != nil {
			str := fmt.Sprintf("unable to generate initial %d byte seed: %v",
				n, err)
			return nil, makeError(ErrOutOfEntropy, str)
		}
		defer clear(seed)
	}

	engine, err := NewEngine(alg, seed)
	if err != nil {
		return nil, err
	}
	maxBits := 8 * int64(engine.MaxSeedLength())
	g := &Generator{
		seedLen:  engine.MaxKeyLength(),
		blocking: cfg.Blocking,
		floor:    cfg.MinimumEntropy,
		timeout:  cfg.ReseedTimeout,
		fallback: cfg.Fallback,
		ledger:   ledger.New(8*int64(len(seed)), maxBits),
		engine:   engine,
	}
	g.cond = sync.NewCond(&g.mu)
	if cfg.Coordinator != nil {
		if err := g.AttachCoordinator(cfg.Coordinator); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// NewAES returns a generator backed by AES.
func NewAES(cfg *Config) (*Generator, error) {
	return New(AES, cfg)
}

// NewTwofish returns a generator backed by Twofish.
func NewTwofish(cfg *Config) (*Generator, error) {
	return New(Twofish, cfg)
}

// NewChaCha20 returns a generator backed by the ChaCha20 block function.
func NewChaCha20(cfg *Config) (*Generator, error) {
	return New(ChaCha20, cfg)
}

// String returns a human-readable description of the generator.
func (g *Generator) String() string {
	return fmt.Sprintf("ctr generator (%v)", g.engine.Algorithm())
}

// Algorithm returns the algorithm of the generator.
func (g *Generator) Algorithm() *Algorithm {
	return g.engine.Algorithm()
}

// EntropyBits returns the current entropy balance in bits.
func (g *Generator) EntropyBits() int64 {
	return g.ledger.Current()
}

// MaxEntropyBits returns the largest entropy balance the generator records.
func (g *Generator) MaxEntropyBits() int64 {
	return g.ledger.Max()
}

// NewSeedLength returns the number of seed bytes that fully rekey the
// generator.
func (g *Generator) NewSeedLength() int {
	return g.seedLen
}

// NeedsReseed returns whether the generator has spent its entropy or a blocked
// draw is waiting for more.
func (g *Generator) NeedsReseed() bool {
	if g.faulted.Load() {
		return false
	}
	cur := g.ledger.Current()
	if cur <= 0 {
		return true
	}
	return g.waiters.Load() > 0 && cur-g.needBits.Load() < g.floor
}

// SeedingChanged wakes draws blocked on a reseed so they re-evaluate.
func (g *Generator) SeedingChanged() {
	g.mu.Lock()
	g.cond.Broadcast()
	g.mu.Unlock()
}

// setFaultLocked records a cipher failure.  The generator never produces
// output again.
//
// This function MUST be called with the mutex held.
func (g *Generator) setFaultLocked(err error) error {
	if g.fault == nil {
		log.Errorf("Generator %v faulted: %v", g.engine.Algorithm(), err)
		g.fault = err
		g.faulted.Store(true)
		g.cond.Broadcast()
	}
	return g.fault
}

// reseedLocked rekeys the engine and credits the ledger.
//
// This function MUST be called with the mutex held.
func (g *Generator) reseedLocked(seed []byte) error {
	if g.fault != nil {
		return g.fault
	}
	bits, err := g.engine.Reseed(seed)
	if err != nil {
		if errors.Is(err, ErrGeneratorFault) {
			return g.setFaultLocked(err)
		}
		return err
	}
	cur := g.ledger.CreditIfHigher(bits)
	log.Tracef("Reseeded %v with %d bytes, entropy now %d bits",
		g.engine.Algorithm(), len(seed), cur)
	g.cond.Broadcast()
	return nil
}

// Reseed rekeys the generator with the seed material and credits the entropy
// balance with the bits that survive in the new key.
func (g *Generator) Reseed(seed []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reseedLocked(seed)
}

// reseedFromLocked reseeds inline from the seed source.
//
// This function MUST be called with the mutex held.
func (g *Generator) reseedFromLocked(src seedsource.Source) error {
	seed, err := src.Generate(g.seedLen)
	if err != nil {
		return err
	}
	defer clear(seed)
	if len(seed) != g.seedLen {
		str := fmt.Sprintf("fallback source returned %d bytes instead of "+
			"%d", len(seed), g.seedLen)
		return makeError(ErrOutOfEntropy, str)
	}
	return g.reseedLocked(seed)
}

// Coordinator returns the attached coordinator or nil.
func (g *Generator) Coordinator() *reseeder.Coordinator {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.coord
}

// AttachCoordinator registers the generator with the coordinator, replacing
// any previously attached one.  The coordinator only holds a weak reference,
// and the registration is removed once the generator is collected.
func (g *Generator) AttachCoordinator(c *reseeder.Coordinator) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c == g.coord {
		return nil
	}
	g.detachLocked()
	if c == nil {
		return nil
	}

	wp := weak.Make(g)
	ref := func() reseeder.Target {
		if t := wp.Value(); t != nil {
			return t
		}
		return nil
	}
	h, err := c.Attach(ref)
	if err != nil {
		return err
	}
	g.coord = c
	g.handle = h
	g.cleanup = runtime.AddCleanup(g, attachment.detach, attachment{c, h})
	return nil
}

// DetachCoordinator removes the generator from its coordinator, if any.
func (g *Generator) DetachCoordinator() {
	g.mu.Lock()
	g.detachLocked()
	g.mu.Unlock()
}

// detachLocked removes the registration with the current coordinator.
//
// This function MUST be called with the mutex held.
func (g *Generator) detachLocked() {
	if g.coord == nil {
		return
	}
	g.cleanup.Stop()
	g.coord.Detach(g.handle)
	g.coord = nil
	g.handle = reseeder.Handle{}
	g.cond.Broadcast()
}

// wakeLocked asks the coordinator for a reseed without waiting.  A failed
// coordinator is detached.
//
// This function MUST be called with the mutex held.
func (g *Generator) wakeLocked() {
	if g.coord == nil {
		return
	}
	if err := g.coord.RequestReseed(); err != nil {
		log.Warnf("Detaching %v from coordinator: %v", g.engine.Algorithm(),
			err)
		g.detachLocked()
	}
}

// hasEntropyLocked returns whether spending bits keeps the balance at or above
// the floor.
func (g *Generator) hasEntropyLocked(bits int64) bool {
	return g.ledger.Current()-bits >= g.floor
}

// awaitEntropyLocked blocks until spending bits keeps the entropy balance at
// or above the floor.  It first waits on the attached coordinator, then
// reseeds inline from the fallback source, and reports ErrOutOfEntropy when
// neither provides the entropy.
//
// This function MUST be called with the mutex held.
func (g *Generator) awaitEntropyLocked(bits int64) error {
	if !g.blocking || g.hasEntropyLocked(bits) {
		return nil
	}

	// timedOut is only accessed with the mutex held.
	var timedOut bool
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for !g.hasEntropyLocked(bits) {
		if g.fault != nil {
			return g.fault
		}
		if g.coord == nil || timedOut {
			break
		}
		// Publish the wait before signaling so the coordinator already
		// sees it on the pass the signal triggers.
		g.needBits.Store(bits)
		g.waiters.Add(1)
		if err := g.coord.RequestReseed(); err != nil {
			g.waiters.Add(-1)
			log.Warnf("Detaching %v from coordinator: %v",
				g.engine.Algorithm(), err)
			g.detachLocked()
			continue
		}
		if timer == nil && g.timeout > 0 {
			timer = time.AfterFunc(g.timeout, func() {
				g.mu.Lock()
				timedOut = true
				g.cond.Broadcast()
				g.mu.Unlock()
			})
		}
		g.cond.Wait()
		g.waiters.Add(-1)
	}
	if g.hasEntropyLocked(bits) {
		return nil
	}

	reason := "no coordinator attached"
	if timedOut {
		reason = fmt.Sprintf("no reseed within %v", g.timeout)
	}
	if g.fallback != nil {
		err := g.reseedFromLocked(g.fallback)
		if g.fault != nil {
			return g.fault
		}
		if err == nil && g.hasEntropyLocked(bits) {
			return nil
		}
		if err != nil {
			reason = fmt.Sprintf("%s and fallback source failed: %v", reason,
				err)
		}
	}
	str := fmt.Sprintf("%v is out of entropy for a %d bit draw: %s",
		g.engine.Algorithm(), bits, reason)
	return makeError(ErrOutOfEntropy, str)
}

// takeLocked fills p and debits bits from the entropy balance.
//
// This function MUST be called with the mutex held.
func (g *Generator) takeLocked(p []byte, bits int64) error {
	if g.fault != nil {
		return g.fault
	}
	if err := g.awaitEntropyLocked(bits); err != nil {
		return err
	}
	if err := g.engine.Take(p); err != nil {
		return g.setFaultLocked(err)
	}
	if g.ledger.Debit(bits) <= 0 {
		g.wakeLocked()
	}
	return nil
}

// Read fills p with pseudorandom bytes, debiting 8 bits per byte.  It
// satisfies io.Reader.  In blocking mode large reads are debited in chunks of
// at most NewSeedLength bytes, so a read may block several times.
func (g *Generator) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var n int
	for len(p) > 0 {
		chunk := len(p)
		if g.blocking {
			chunk = min(chunk, g.seedLen)
		}
		if err := g.takeLocked(p[:chunk], 8*int64(chunk)); err != nil {
			return n, err
		}
		n += chunk
		p = p[chunk:]
	}
	return n, nil
}

// Take returns n pseudorandom bytes.
func (g *Generator) Take(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := g.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Seek moves the output position by delta cipher blocks in either direction.
// It does not change the entropy balance.
func (g *Generator) Seek(delta int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fault != nil {
		return g.fault
	}
	if err := g.engine.Seek(delta); err != nil {
		return g.setFaultLocked(err)
	}
	return nil
}

// Seed returns a copy of the material the current key was derived from.
func (g *Generator) Seed() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.Seed()
}

// State returns an opaque snapshot of the seed and output position.
func (g *Generator) State() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.State()
}

// Restore replaces the seed and output position with a snapshot returned by
// State and resets the entropy balance to the bits of the restored seed.
func (g *Generator) Restore(state []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fault != nil {
		return g.fault
	}
	if err := g.engine.Restore(state); err != nil {
		if errors.Is(err, ErrGeneratorFault) {
			return g.setFaultLocked(err)
		}
		return err
	}
	g.ledger.Reset(8 * int64(len(g.engine.seed)))
	g.cond.Broadcast()
	return nil
}
