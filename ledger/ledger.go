// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger provides an entropy ledger: a lock-free count of the seed bits
// a generator has not yet spent.
//
// The ledger is pure bookkeeping.  It never blocks; callers that need to wait
// for the balance to recover layer that on top.  Debits may drive the balance
// negative, which expresses a deficit that a reseed must cover.
package ledger

import (
	"sync/atomic"
)

// Ledger tracks the number of unspent entropy bits of a single generator.  It
// is safe for concurrent access.
type Ledger struct {
	bits atomic.Int64
	max  int64
}

// New returns a ledger that starts with the given balance (clamped to max) and
// never credits more than max bits.
func New(initial, max int64) *Ledger {
	l := &Ledger{max: max}
	l.bits.Store(min(initial, max))
	return l
}

// Max returns the largest balance the ledger will record.
func (l *Ledger) Max() int64 {
	return l.max
}

// Current returns the current balance.
func (l *Ledger) Current() int64 {
	return l.bits.Load()
}

// Debit atomically subtracts the given number of bits and returns the new
// balance.
func (l *Ledger) Debit(bits int64) int64 {
	return l.bits.Add(-bits)
}

// CreditIfHigher atomically raises the balance to min(bits, Max()) if that is
// higher than the current balance and returns the resulting balance.  A
// credit never lowers the balance.
func (l *Ledger) CreditIfHigher(bits int64) int64 {
	bits = min(bits, l.max)
	for {
		cur := l.bits.Load()
		if cur >= bits {
			return cur
		}
		if l.bits.CompareAndSwap(cur, bits) {
			return bits
		}
	}
}

// Reset unconditionally sets the balance to min(bits, Max()).  It is intended
// for initial seeding, where the previous balance is meaningless.
func (l *Ledger) Reset(bits int64) {
	l.bits.Store(min(bits, l.max))
}
