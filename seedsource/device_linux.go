// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build linux

package seedsource

import (
	"bytes"
	"strconv"

	"golang.org/x/sys/unix"
)

// DefaultDevicePath returns the preferred entropy device.  Linux 5.6 and newer
// only block /dev/random until the pool is initialized, so it is preferred
// there.  Older kernels may block it indefinitely, so /dev/urandom is used.
func DefaultDevicePath() string {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return "/dev/urandom"
	}
	if nonBlockingRandom(utsname.Release[:]) {
		return "/dev/random"
	}
	return "/dev/urandom"
}

// nonBlockingRandom returns whether the kernel release string identifies a
// kernel where /dev/random no longer blocks once initialized.
func nonBlockingRandom(kernelVersion []byte) bool {
	var v = kernelVersion

	dot := bytes.IndexByte(v, '.')
	if dot == -1 {
		return false
	}
	maj, err := strconv.Atoi(string(v[:dot]))
	if err != nil {
		return false
	}
	v = v[dot+1:]
	end := bytes.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(v)
	}
	min, err := strconv.Atoi(string(v[:end]))
	if err != nil {
		return false
	}

	return maj > 5 || (maj == 5 && min >= 6)
}
