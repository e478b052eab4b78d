// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package reseeder implements a background coordinator that keeps a set of
generators supplied with fresh seed material from a single seed source.

Generators register themselves with Attach and receive a Handle.  The
coordinator only holds the reference function it was given, which for real
generators resolves a weak pointer, so the registry is never the reason a
generator stays alive.  Entries whose reference resolves to nil are dropped the
next time the worker looks at the registry.

The worker goroutine is started lazily by Attach or RequestReseed and moves
through the following states:

	Idle --attach/request--> Running --registry empty for IdleTimeout--> Idle
	                         Running --seed source or target error-----> Failed

A failed coordinator is never restarted; every attached target is notified via
SeedingChanged so callers blocked waiting for a reseed can fall back to another
source.  Stop interrupts the worker at its next wait point and leaves the
coordinator Idle, so a later request starts it again.

Each pass over the registry reseeds every target that reports NeedsReseed.  A
pass that reseeds nothing is followed by a wait for either a drained signal
(Wake/RequestReseed), a registration, or the poll interval.
*/
package reseeder
