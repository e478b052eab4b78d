// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seedsource

import (
	"errors"
	"fmt"
	"strings"
)

// Chain is a Source that asks each of its sources in order and returns the
// first successful result.  Sources that report they are not worth trying are
// skipped.
type Chain struct {
	sources []Source
}

// NewChain returns a Chain over the given sources in priority order.
func NewChain(sources ...Source) (*Chain, error) {
	if len(sources) == 0 {
		return nil, makeError(ErrNoSources, "chain requires at least one "+
			"source")
	}
	return &Chain{sources: append([]Source(nil), sources...)}, nil
}

// Default returns the default chain: the platform entropy device, then the
// operating system CSPRNG and finally the userspace CSPRNG.
func Default() *Chain {
	c, _ := NewChain(NewDevice(DefaultDevicePath()), OS, PRNG)
	return c
}

// Generate returns n bytes from the first source that succeeds.  When every
// source fails or is skipped, the returned error has kind ErrSeedUnavailable
// and wraps the individual failures.
func (c *Chain) Generate(n int) ([]byte, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}

	var errs []error
	for i, src := range c.sources {
		if !src.IsWorthTrying() {
			log.Tracef("Skipping seed source %v", sourceName(src, i))
			continue
		}
		b, err := src.Generate(n)
		if err == nil {
			return b, nil
		}
		log.Debugf("Seed source %v failed: %v", sourceName(src, i), err)
		errs = append(errs, err)
	}

	str := fmt.Sprintf("all %d seed sources failed or were skipped",
		len(c.sources))
	if len(errs) > 0 {
		str = fmt.Sprintf("%s: %v", str, errors.Join(errs...))
	}
	return nil, makeError(ErrSeedUnavailable, str)
}

// IsWorthTrying returns true when at least one of the sources is worth
// trying.
func (c *Chain) IsWorthTrying() bool {
	for _, src := range c.sources {
		if src.IsWorthTrying() {
			return true
		}
	}
	return false
}

// String returns the names of the sources in order.
func (c *Chain) String() string {
	names := make([]string, 0, len(c.sources))
	for i, src := range c.sources {
		names = append(names, sourceName(src, i))
	}
	return "chain(" + strings.Join(names, ", ") + ")"
}

// sourceName returns a printable name for the source at the given position.
func sourceName(src Source, i int) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("#%d", i)
}
