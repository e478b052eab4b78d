// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !linux

package seedsource

// DefaultDevicePath returns the preferred entropy device.
func DefaultDevicePath() string {
	return "/dev/urandom"
}
