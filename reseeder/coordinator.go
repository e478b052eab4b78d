// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reseeder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/decred/ctrrand/seedsource"
)

var (
	// defaultIdleTimeout is the default duration the worker keeps running
	// with an empty registry before it exits.
	defaultIdleTimeout = time.Minute

	// defaultPollInterval is the default maximum duration between passes
	// over the registry when no target asked to be reseeded.
	defaultPollInterval = 5 * time.Second
)

// State represents the lifecycle state of a coordinator.
type State uint32

// A coordinator is Idle when no worker is running, Running while the worker
// loop is active and Failed once the worker observed an unrecoverable error.
const (
	Idle State = iota
	Running
	Failed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("unknown state (%d)", uint32(s))
}

// Target is implemented by generators that can be reseeded by a coordinator.
// All methods must be safe for concurrent access and must not call back into
// the coordinator while holding locks the coordinator may wait on.
type Target interface {
	// NewSeedLength returns the number of seed bytes to supply on reseed.
	NewSeedLength() int

	// NeedsReseed returns whether the target wants to be reseeded now.
	NeedsReseed() bool

	// Reseed supplies new seed material.  The seed slice is reused by the
	// coordinator after the call returns.
	Reseed(seed []byte) error

	// SeedingChanged is invoked when the coordinator stops or fails so
	// targets waiting on a reseed can re-evaluate.
	SeedingChanged()
}

// Ref resolves a registered target.  It returns nil once the target no longer
// exists, which removes its registry entry.
type Ref func() Target

// StrongRef returns a Ref that always resolves to t.  A target registered with
// a strong reference stays alive until it is detached.
func StrongRef(t Target) Ref {
	return func() Target { return t }
}

// Handle identifies a registry entry.  The zero value identifies nothing.
type Handle struct {
	index uint32
	gen   uint32
}

// IsValid returns whether the handle was issued by Attach.  A valid handle may
// still refer to an entry that has since been removed.
func (h Handle) IsValid() bool {
	return h.gen != 0
}

// slot is one entry of the registry arena.  A slot is reused after removal
// with an incremented generation so stale handles never match.
type slot struct {
	gen   uint32
	inUse bool
	ref   Ref

	// scratch is the per-target seed buffer.  Its backing array is only
	// accessed by the worker goroutine while a pass is in progress.
	scratch []byte
}

// workItem is a target resolved from the registry for one pass.
type workItem struct {
	handle  Handle
	target  Target
	scratch []byte
}

// Config holds the configuration options of a coordinator.
type Config struct {
	// Source provides seed material.  It is required.
	Source seedsource.Source

	// IdleTimeout is the duration the worker keeps running with an empty
	// registry before it exits.  Defaults to 1 minute.
	IdleTimeout time.Duration

	// PollInterval bounds the wait between passes when no reseed was
	// needed.  Defaults to 5s.
	PollInterval time.Duration
}

// Coordinator reseeds registered targets from a single seed source in a
// background goroutine.  It is safe for concurrent access.
type Coordinator struct {
	// cfg specifies the configuration of the coordinator and is set at
	// creation time and treated as immutable after that.
	cfg Config

	// added and drained are the distinct wake signals of the worker: a new
	// registration and a request for reseeding respectively.
	added   chan struct{}
	drained chan struct{}

	// The following fields are protected by mu.
	mu     sync.Mutex
	state  State
	err    error
	slots  []slot
	free   []uint32
	live   int
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a new idle coordinator.  The worker starts on the first call to
// Attach or RequestReseed.
func New(cfg *Config) (*Coordinator, error) {
	if cfg.Source == nil {
		return nil, makeError(ErrNilSource, "coordinator requires a seed "+
			"source")
	}
	c := &Coordinator{
		cfg:     *cfg,
		added:   make(chan struct{}, 1),
		drained: make(chan struct{}, 1),
	}
	if c.cfg.IdleTimeout <= 0 {
		c.cfg.IdleTimeout = defaultIdleTimeout
	}
	if c.cfg.PollInterval <= 0 {
		c.cfg.PollInterval = defaultPollInterval
	}
	return c, nil
}

// notify performs a non-blocking send on a wake channel.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Source returns the seed source of the coordinator.
func (c *Coordinator) Source() seedsource.Source {
	return c.cfg.Source
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that caused the coordinator to fail, or nil.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// failedErrorLocked returns the error reported to callers of a failed
// coordinator.
//
// This function MUST be called with the mutex held.
func (c *Coordinator) failedErrorLocked() error {
	str := fmt.Sprintf("reseed coordinator for %v failed: %v",
		sourceName(c.cfg.Source), c.err)
	return makeError(ErrCoordinatorFailed, str)
}

// startLocked starts the worker unless it is already running.
//
// This function MUST be called with the mutex held.
func (c *Coordinator) startLocked() {
	if c.state != Idle {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.state = Running
	c.cancel = cancel
	c.done = done
	log.Debugf("Starting reseed coordinator for %v", sourceName(c.cfg.Source))
	go c.run(ctx, done)
}

// Attach registers a target and starts the worker if needed.
func (c *Coordinator) Attach(ref Ref) (Handle, error) {
	if ref == nil {
		return Handle{}, makeError(ErrInvalidRef, "nil target reference")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Failed {
		return Handle{}, c.failedErrorLocked()
	}

	var index uint32
	if n := len(c.free); n > 0 {
		index = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		index = uint32(len(c.slots))
		c.slots = append(c.slots, slot{})
	}
	s := &c.slots[index]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.inUse = true
	s.ref = ref
	s.scratch = nil
	c.live++

	c.startLocked()
	notify(c.added)
	return Handle{index: index, gen: s.gen}, nil
}

// removeLocked removes the entry identified by the handle and returns whether
// it existed.
//
// This function MUST be called with the mutex held.
func (c *Coordinator) removeLocked(h Handle) bool {
	if !h.IsValid() || int(h.index) >= len(c.slots) {
		return false
	}
	s := &c.slots[h.index]
	if !s.inUse || s.gen != h.gen {
		return false
	}
	s.inUse = false
	s.ref = nil
	s.scratch = nil
	c.free = append(c.free, h.index)
	c.live--
	return true
}

// Detach removes the entry identified by the handle and returns whether it
// was still registered.  Detaching a stale handle is a no-op.
func (c *Coordinator) Detach(h Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(h)
}

// IsEmpty returns whether no targets are registered.
func (c *Coordinator) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live == 0
}

// Len returns the number of registered targets, including entries whose
// target was collected but not yet noticed by the worker.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// RequestReseed signals the worker that a target needs seed material,
// starting it if it is idle.  It returns an error with kind
// ErrCoordinatorFailed when the coordinator has failed.
func (c *Coordinator) RequestReseed() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Failed {
		return c.failedErrorLocked()
	}
	c.startLocked()
	notify(c.drained)
	return nil
}

// Wake is RequestReseed for callers that do not wait for the result.
func (c *Coordinator) Wake() {
	c.RequestReseed()
}

// Stop interrupts the worker and blocks until it exits.  The coordinator is
// left idle unless it had failed, and attached targets are notified.  A
// reseed that is already in flight completes.
//
// Stop does not outlast attached targets that still need seed material: a
// generator with a blocked draw calls RequestReseed when notified, which
// starts a new worker.  Detach such targets first to keep the coordinator
// idle.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	if c.state == Running {
		c.state = Idle
	}
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.notifyTargets()
}

// StopIfEmpty stops the worker when no targets are registered and returns
// whether it did.
func (c *Coordinator) StopIfEmpty() bool {
	c.mu.Lock()
	empty := c.live == 0
	c.mu.Unlock()
	if !empty {
		return false
	}
	c.Stop()
	return true
}

// snapshot appends the live targets to working, dropping entries whose target
// no longer exists.
func (c *Coordinator) snapshot(working []workItem) []workItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.slots {
		s := &c.slots[i]
		if !s.inUse {
			continue
		}
		h := Handle{index: uint32(i), gen: s.gen}
		t := s.ref()
		if t == nil {
			log.Tracef("Dropping collected target (slot %d)", i)
			c.removeLocked(h)
			continue
		}
		working = append(working, workItem{
			handle:  h,
			target:  t,
			scratch: s.scratch,
		})
	}
	return working
}

// saveScratch stores the possibly grown scratch buffers back into slots that
// still belong to the same targets.
func (c *Coordinator) saveScratch(working []workItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range working {
		w := &working[i]
		s := &c.slots[w.handle.index]
		if s.inUse && s.gen == w.handle.gen {
			s.scratch = w.scratch
		}
	}
}

// idleIfEmpty moves the coordinator to Idle and returns true when the registry
// is empty and the worker identified by done is still the current one.
func (c *Coordinator) idleIfEmpty(done chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.live != 0 || c.done != done {
		return false
	}
	c.state = Idle
	c.cancel()
	c.cancel, c.done = nil, nil
	return true
}

// fail moves the coordinator to Failed and notifies the targets.  A worker
// that was stopped while the error occurred only logs it since the
// coordinator may already be served by a newer worker.
func (c *Coordinator) fail(err error, done chan struct{}) {
	src := sourceName(c.cfg.Source)

	c.mu.Lock()
	current := c.done == done
	if current {
		c.state = Failed
		c.err = err
		c.cancel()
		c.cancel, c.done = nil, nil
	}
	c.mu.Unlock()

	if !current {
		log.Warnf("Stopped reseed worker for %v exited with error: %v", src,
			err)
		return
	}
	log.Errorf("Reseed coordinator for %v failed: %v", src, err)
	c.notifyTargets()
}

// notifyTargets invokes SeedingChanged on every live target without holding
// the mutex.
func (c *Coordinator) notifyTargets() {
	working := c.snapshot(nil)
	for _, w := range working {
		w.target.SeedingChanged()
	}
}

// reseedPass reseeds every target in the working set that needs it and returns
// whether at least one target was reseeded.
func (c *Coordinator) reseedPass(working []workItem) (bool, error) {
	var reseeded bool
	for i := range working {
		w := &working[i]
		if !w.target.NeedsReseed() {
			continue
		}

		n := w.target.NewSeedLength()
		seed, err := c.cfg.Source.Generate(n)
		if err != nil {
			str := fmt.Sprintf("unable to generate %d byte seed: %v", n, err)
			return reseeded, makeError(ErrSeedFailed, str)
		}
		if len(seed) != n {
			str := fmt.Sprintf("seed source returned %d bytes instead "+
				"of %d", len(seed), n)
			return reseeded, makeError(ErrSeedFailed, str)
		}
		w.scratch = append(w.scratch[:0], seed...)
		clear(seed)

		err = w.target.Reseed(w.scratch)
		clear(w.scratch)
		if err != nil {
			str := fmt.Sprintf("target rejected %d byte seed: %v", n, err)
			return reseeded, makeError(ErrTargetFailed, str)
		}
		reseeded = true
	}
	return reseeded, nil
}

// run is the worker loop.  It must be run as a goroutine.  The done channel
// is closed when it returns.
func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	src := sourceName(c.cfg.Source)
	var working []workItem
	for {
		working = c.snapshot(working[:0])
		if len(working) == 0 {
			select {
			case <-c.added:
			case <-time.After(c.cfg.IdleTimeout):
				if c.idleIfEmpty(done) {
					log.Debugf("Reseed coordinator for %v idle", src)
					return
				}
			case <-ctx.Done():
				return
			}
			continue
		}

		var reseeded bool
		if c.cfg.Source.IsWorthTrying() {
			var err error
			reseeded, err = c.reseedPass(working)
			c.saveScratch(working)
			if err != nil {
				clear(working)
				c.fail(err, done)
				return
			}
		} else {
			log.Tracef("Seed source %v not worth trying", src)
		}

		// Drop the strong references resolved for this pass so the
		// registry does not keep targets alive while waiting.
		clear(working)

		if !reseeded {
			select {
			case <-c.drained:
			case <-c.added:
			case <-time.After(c.cfg.PollInterval):
			case <-ctx.Done():
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// sourceName returns a printable name for a seed source.
func sourceName(src seedsource.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}

var (
	registryMtx  sync.Mutex
	coordinators = make(map[seedsource.Source]*Coordinator)
)

// ForSource returns the shared coordinator for the given seed source using the
// default timeouts, creating it if necessary.  A shared coordinator that has
// failed is replaced by a new one.  The source's dynamic type must be
// comparable.
func ForSource(src seedsource.Source) (*Coordinator, error) {
	if src == nil {
		return nil, makeError(ErrNilSource, "coordinator requires a seed "+
			"source")
	}

	registryMtx.Lock()
	defer registryMtx.Unlock()

	if c, ok := coordinators[src]; ok && c.State() != Failed {
		return c, nil
	}
	c, err := New(&Config{Source: src})
	if err != nil {
		return nil, err
	}
	coordinators[src] = c
	return c, nil
}

var (
	defaultSourceOnce sync.Once
	defaultSource     seedsource.Source
)

// Default returns the shared coordinator for the default seed source chain.
func Default() (*Coordinator, error) {
	defaultSourceOnce.Do(func() {
		defaultSource = seedsource.Default()
	})
	return ForSource(defaultSource)
}
