// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vm defines the pluggable transaction-execution interface IG
// depends on. The VM is the only external collaborator in the hot path;
// everything else in this module only ever calls through this interface.
package vm

import "github.com/movementlabsxyz/hyperplane/types"

// View is a read-only snapshot of a chain's key/value store, as seen by
// Simulate. Implementations must not mutate store state reachable through
// View; Simulate's purity is the invariant the whole speculative-execution
// design in ig rests on.
type View interface {
	Get(key types.Key) ([]byte, bool)
}

// Mutator is the read-write surface Execute is given. Only Execute may
// write through it; folding Execute's effects into Simulate would break
// the simulate/execute split.
type Mutator interface {
	View
	Set(key types.Key, value []byte)
}

// VM is the pluggable transaction engine. It knows nothing about CATs,
// locking, or chains other than the one it is asked to simulate against.
type VM interface {
	// Simulate reports whether payload would succeed against view, and the
	// full set of keys it reads or writes. It must be a pure function: no
	// mutation, and calling it twice with the same (view, payload) must
	// return the same answer.
	Simulate(view View, payload []byte) (outcome types.Outcome, keys []types.Key)

	// Execute applies the writes of the most recent successful Simulate for
	// payload. IG only calls Execute immediately after a Simulate that
	// returned Success against the same store state.
	Execute(store Mutator, payload []byte)
}
