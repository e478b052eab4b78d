// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build linux

package seedsource

import "testing"

// TestNonBlockingRandom ensures kernel release strings are classified
// correctly.
func TestNonBlockingRandom(t *testing.T) {
	tests := []struct {
		release string
		want    bool
	}{
		{"4.19.0-18-amd64", false},
		{"5.4.0", false},
		{"5.6", true},
		{"5.10.102.1-microsoft-standard-WSL2", true},
		{"6.1.0-rc1", true},
		{"10.0", true},
		{"garbage", false},
		{"5.x", false},
	}

	for _, test := range tests {
		got := nonBlockingRandom([]byte(test.release))
		if got != test.want {
			t.Errorf("%q: got %v, want %v", test.release, got, test.want)
		}
	}
}
