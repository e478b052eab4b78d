// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seedsource

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle wraps a Source that is expensive or slow to fail, such as a remote
// service, and limits how often it is retried after a failure.  While the
// underlying source is healthy, calls pass straight through.
type Throttle struct {
	src Source

	mu      sync.Mutex
	failing bool
	limiter *rate.Limiter
}

// NewThrottle returns a Source which, after a failure of src, permits at most
// one retry per interval until a call succeeds again.
func NewThrottle(src Source, interval time.Duration) *Throttle {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	return &Throttle{src: src, limiter: limiter}
}

// Generate returns n bytes from the underlying source unless it is failing and
// the retry interval has not yet elapsed.
func (t *Throttle) Generate(n int) ([]byte, error) {
	t.mu.Lock()
	if t.failing && !t.limiter.Allow() {
		t.mu.Unlock()
		str := fmt.Sprintf("%v: retry throttled after failure",
			sourceName(t.src, 0))
		return nil, makeError(ErrSeedUnavailable, str)
	}
	t.mu.Unlock()

	b, err := t.src.Generate(n)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		if !t.failing {
			// Consume the burst so the next retry waits a full
			// interval.
			t.failing = true
			t.limiter.Allow()
		}
		return nil, err
	}
	t.failing = false
	return b, nil
}

// IsWorthTrying returns false while the underlying source is failing and no
// retry is permitted yet, or when the underlying source itself says so.
func (t *Throttle) IsWorthTrying() bool {
	t.mu.Lock()
	throttled := t.failing && t.limiter.Tokens() < 1
	t.mu.Unlock()

	return !throttled && t.src.IsWorthTrying()
}

// String returns the name of the wrapped source.
func (t *Throttle) String() string {
	return "throttle(" + sourceName(t.src, 0) + ")"
}
