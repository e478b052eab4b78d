// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sync"
	"testing"
)

// TestLedger ensures debits and credits update the balance as expected.
func TestLedger(t *testing.T) {
	tests := []struct {
		name    string
		initial int64
		max     int64
		debit   int64
		credit  int64
		after   int64 // balance after the debit
		want    int64 // balance after the credit
	}{{
		name:    "initial clamped to max",
		initial: 512,
		max:     384,
		debit:   0,
		credit:  0,
		after:   384,
		want:    384,
	}, {
		name:    "debit below zero then credit",
		initial: 128,
		max:     384,
		debit:   192,
		credit:  256,
		after:   -64,
		want:    256,
	}, {
		name:    "credit lower than balance is ignored",
		initial: 300,
		max:     384,
		debit:   8,
		credit:  128,
		after:   292,
		want:    292,
	}, {
		name:    "credit clamped to max",
		initial: 0,
		max:     256,
		debit:   1,
		credit:  1000,
		after:   -1,
		want:    256,
	}}

	for _, test := range tests {
		l := New(test.initial, test.max)
		if got := l.Debit(test.debit); got != test.after {
			t.Errorf("%s: debit: got %d, want %d", test.name, got, test.after)
			continue
		}
		if got := l.CreditIfHigher(test.credit); got != test.want {
			t.Errorf("%s: credit: got %d, want %d", test.name, got, test.want)
			continue
		}
		if got := l.Current(); got != test.want {
			t.Errorf("%s: current: got %d, want %d", test.name, got, test.want)
		}
	}
}

// TestLedgerConcurrentDebit ensures concurrent debits are not lost.
func TestLedgerConcurrentDebit(t *testing.T) {
	const workers, perWorker = 8, 1000
	l := New(0, 1<<20)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				l.Debit(8)
			}
		}()
	}
	wg.Wait()

	if got, want := l.Current(), int64(-8*workers*perWorker); got != want {
		t.Fatalf("balance: got %d, want %d", got, want)
	}
}

// TestLedgerReset ensures a reset may lower the balance but still honors the
// maximum.
func TestLedgerReset(t *testing.T) {
	l := New(256, 256)
	l.Reset(8)
	if got := l.Current(); got != 8 {
		t.Fatalf("reset low: got %d, want 8", got)
	}
	l.Reset(4096)
	if got := l.Current(); got != 256 {
		t.Fatalf("reset high: got %d, want 256", got)
	}
}
