// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seedsource

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// deviceRetryInterval is how long a device that failed to open or read is
// reported as not worth trying.
var deviceRetryInterval = 10 * time.Second

// Device is a Source that reads seed material from an entropy device such as
// /dev/random.  The device is opened lazily and kept open between calls.
type Device struct {
	path string

	mu         sync.Mutex
	f          *os.File
	retryAfter time.Time
}

// NewDevice returns a Source reading from the device at path.  Use
// DefaultDevicePath for the platform's preferred entropy device.
func NewDevice(path string) *Device {
	return &Device{path: path}
}

// Generate returns n bytes read from the device.  A failure closes the device
// and marks the source as not worth trying for a while.
func (d *Device) Generate(n int) ([]byte, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		f, err := os.Open(d.path)
		if err != nil {
			d.retryAfter = time.Now().Add(deviceRetryInterval)
			log.Warnf("Unable to open entropy device %s: %v", d.path, err)
			str := fmt.Sprintf("%s: unable to open: %v", d.path, err)
			return nil, makeError(ErrSeedUnavailable, str)
		}
		d.f = f
	}

	b := make([]byte, n)
	read, err := io.ReadFull(d.f, b)
	if err != nil {
		d.f.Close()
		d.f = nil
		d.retryAfter = time.Now().Add(deviceRetryInterval)
		log.Warnf("Read %d of %d bytes from entropy device %s: %v", read, n,
			d.path, err)
		kind := ErrSeedUnavailable
		if read > 0 {
			kind = ErrShortSeed
		}
		str := fmt.Sprintf("%s: read %d of %d bytes: %v", d.path, read, n, err)
		return nil, makeError(kind, str)
	}
	return b, nil
}

// IsWorthTrying returns false for a short while after the device failed.
func (d *Device) IsWorthTrying() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return !time.Now().Before(d.retryAfter)
}

// Close closes the device if it is open.  The device is reopened by the next
// call to Generate.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// String returns the path of the device.
func (d *Device) String() string {
	return d.path
}
