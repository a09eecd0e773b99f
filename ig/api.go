// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ig

import "github.com/movementlabsxyz/hyperplane/types"

// GetStatus returns txID's outcome and whether it has been observed at all.
func (g *IG) GetStatus(txID types.TxID) (types.Outcome, bool) {
	out := make(chan getStatusResult, 1)
	if !g.send(getStatusCmd{txID: txID, out: out}) {
		return types.Pending, false
	}
	res := <-out
	return res.outcome, res.known
}

// GetPendingCount returns the number of transactions currently pending on
// this chain.
func (g *IG) GetPendingCount() int {
	out := make(chan int, 1)
	if !g.send(getPendingCountCmd{out: out}) {
		return 0
	}
	return <-out
}

// SetAllowCATPendingDependencies updates the runtime-mutable policy flag
// governing whether a CAT constituent may become pending when it depends on
// another still-pending transaction's locked keys, or must fail immediately
// instead. It blocks until the new value is in effect for subsequently
// admitted transactions.
func (g *IG) SetAllowCATPendingDependencies(allow bool) {
	done := make(chan struct{})
	if !g.send(setAllowCATPendingDepsCmd{allow: allow, done: done}) {
		return
	}
	<-done
}

// GetValue is a read-only accessor for this chain's committed store,
// intended for tests (mirrors cl.GetSubBlock's testing accessor).
func (g *IG) GetValue(key types.Key) ([]byte, bool) {
	out := make(chan getValueResult, 1)
	if !g.send(getValueCmd{key: key, out: out}) {
		return nil, false
	}
	res := <-out
	return res.value, res.found
}
