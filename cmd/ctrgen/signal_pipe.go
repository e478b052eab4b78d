// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
//
//go:build aix || android || darwin || dragonfly || freebsd || hurd || illumos || ios || linux || netbsd || openbsd || solaris

package main

import (
	"syscall"
)

// Output is commonly piped into a consumer that exits once it has read enough,
// such as head.  Catching SIGPIPE turns the resulting write failure into an
// orderly shutdown.
func init() {
	interruptSignals = append(interruptSignals, syscall.SIGPIPE)
}
