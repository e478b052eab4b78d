// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctr_test

import (
	"errors"
	"fmt"

	"github.com/decred/ctrrand/ctr"
	"github.com/decred/ctrrand/reseeder"
	"github.com/decred/ctrrand/seedsource"
)

// This example demonstrates creating a blocking AES generator that is
// reseeded in the background by the shared default coordinator and falls back
// to the operating system entropy source when the coordinator fails.
func ExampleNewAES() {
	coord, err := reseeder.Default()
	if err != nil {
		fmt.Println(err)
		return
	}
	g, err := ctr.NewAES(&ctr.Config{
		Coordinator: coord,
		Fallback:    seedsource.OS,
		Blocking:    true,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer g.DetachCoordinator()

	roll, err := g.IntN(6)
	if errors.Is(err, ctr.ErrOutOfEntropy) {
		fmt.Println("no entropy available")
		return
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("rolled", roll+1)
}
