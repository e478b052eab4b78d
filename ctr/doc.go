// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package ctr implements cryptographic counter mode pseudorandom generators built
on any block cipher, with entropy accounting and background reseeding.

An Engine encrypts successive values of a 128-bit counter and hands out the
resulting blocks.  A Generator wraps an Engine with a mutex and an entropy
ledger that is debited for every draw and credited on every reseed.  Three
algorithms are provided: AES, Twofish and the ChaCha20 block function.

# Entropy Accounting

Draws debit the ledger by the following conventional amounts, which are not
measured guarantees: 8 bits per byte read, 32 bits for 32-bit integers, 64
bits for 64-bit integers, 1 bit for a boolean, 24 bits for a float32, 53 bits
for a float64 and the bit length of n-1 for a draw bounded by n.

A reseed credits the number of reseed bits that survive in the new key, never
lowering the balance and never exceeding the bits of a maximum length seed.

# Reseeding

A generator attached to a reseeder.Coordinator asks it for a reseed whenever
its balance drops to zero or below.  The coordinator only holds a weak
reference, so attaching never keeps a generator alive.

With Config.Blocking set, a draw that would take the balance below
Config.MinimumEntropy instead waits for the coordinator to reseed the
generator, reseeds inline from Config.Fallback when there is no working
coordinator, and otherwise fails with ErrOutOfEntropy.  Large reads are
debited in chunks no larger than one full reseed so every chunk can be
satisfied.

# Errors

Errors returned by this package are of type Error and wrap an ErrorKind so
they can be matched with errors.Is.  ErrGeneratorFault is permanent: a
generator whose cipher failed returns it from every subsequent call.
*/
package ctr
