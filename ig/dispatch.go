// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ig

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/movementlabsxyz/hyperplane/internal/collections"
	"github.com/movementlabsxyz/hyperplane/types"
)

// admitTx runs a freshly observed transaction's simulation and routes it to
// immediate finalization, a CAT proposal, or a pending lock, depending on
// its kind, the simulated outcome, and whether any key it touches is
// already locked by an earlier pending transaction.
func (g *IG) admitTx(height uint64, tx types.Transaction) {
	if _, seen := g.status[tx.ID]; seen {
		g.log.Warn("duplicate transaction id, discarding", zap.Error(ErrDuplicateTx), zap.Stringer("tx", tx.ID))
		return
	}

	g.txSeq[tx.ID] = g.nextSeq
	g.nextSeq++

	outcome, keys := g.vm.Simulate(g, tx.Payload)
	blockers := g.blockersFor(tx.ID, keys)

	switch {
	case tx.IsCat() && outcome == types.Failure:
		g.txByID[tx.ID] = tx
		g.finalize(tx.ID, types.Failure)
		g.proposeCat(tx, types.Failure)

	case tx.IsCat() && len(blockers) == 0:
		g.lockAndPend(height, tx, keys, nil)
		g.proposeCat(tx, types.Success)

	case tx.IsCat():
		if g.allowCATPendingDeps {
			g.lockAndPend(height, tx, keys, blockers)
			g.proposeCat(tx, types.Success)
		} else {
			g.txByID[tx.ID] = tx
			g.finalize(tx.ID, types.Failure)
			g.proposeCat(tx, types.Failure)
		}

	case len(blockers) == 0:
		g.executeAndFinalize(tx, outcome)

	default:
		g.lockAndPend(height, tx, keys, blockers)
	}
}

// blockersFor returns the distinct top-lockers of keys that are strictly
// earlier admissions than self and still pending. A key's current top
// locker may by now be a *later* onion layer stacked on top of self (one of
// self's own consumers, transitively) rather than an ancestor; comparing
// admission sequence numbers tells the two apart and keeps the dependency
// graph acyclic.
func (g *IG) blockersFor(self types.TxID, keys []types.Key) []types.TxID {
	if len(keys) == 0 {
		return nil
	}
	selfSeq := g.txSeq[self]
	seen := collections.NewSet[types.TxID](len(keys))
	var blockers []types.TxID
	for _, k := range keys {
		locker, ok := g.keyTopLocker[k]
		if !ok || locker == self || !g.pending.Contains(locker) {
			continue
		}
		if g.txSeq[locker] >= selfSeq {
			continue
		}
		if !seen.Contains(locker) {
			seen.Add(locker)
			blockers = append(blockers, locker)
		}
	}
	return blockers
}

// lockAndPend marks tx Pending, becomes the new top-locker for every key it
// touches (the onion model: the prior locker, if any, is left untouched in
// its own owner's tx_locked_keys), and records blockers/consumers.
func (g *IG) lockAndPend(height uint64, tx types.Transaction, keys []types.Key, blockers []types.TxID) {
	g.status[tx.ID] = types.Pending
	g.pending.Add(tx.ID)
	g.txByID[tx.ID] = tx

	keySet := collections.Of(keys...)
	g.txLockedKeys[tx.ID] = keySet
	for k := range keySet {
		g.keyTopLocker[k] = tx.ID
	}

	if len(blockers) > 0 {
		g.txWaitsOn[tx.ID] = collections.Of(blockers...)
		for _, b := range blockers {
			g.consumersOf(b).Put(tx.ID, struct{}{})
		}
	}

	if tx.IsCat() {
		g.catDeadline[tx.CatID] = height + g.catLifetimeBlocks
		g.catToTx[tx.CatID] = tx.ID
	}

	g.metrics.Pending.Set(float64(g.pending.Len()))
}

func (g *IG) consumersOf(txID types.TxID) *collections.Hashmap[types.TxID, struct{}] {
	m, ok := g.txConsumers[txID]
	if !ok {
		m = collections.NewHashmap[types.TxID, struct{}]()
		g.txConsumers[txID] = m
	}
	return m
}

// executeAndFinalize runs Execute (if the outcome is Success) and finalizes
// a Regular transaction with no blockers.
func (g *IG) executeAndFinalize(tx types.Transaction, outcome types.Outcome) {
	g.txByID[tx.ID] = tx
	if outcome == types.Success {
		g.vm.Execute(g, tx.Payload)
	}
	g.finalize(tx.ID, outcome)
}

// finalize assigns txID's terminal status, releases its locks, and cascades
// to anything that was waiting on it.
func (g *IG) finalize(txID types.TxID, outcome types.Outcome) {
	g.status[txID] = outcome
	g.pending.Remove(txID)
	g.releaseLocks(txID)
	delete(g.txSeq, txID)
	g.metrics.TxFinalized.Inc()
	g.metrics.Pending.Set(float64(g.pending.Len()))
	g.cascade(txID)
}

// releaseLocks drops txID's onion layer from every key it holds, clearing
// key_top_locker only where txID is still the current top (a newer layer
// may already have superseded it).
func (g *IG) releaseLocks(txID types.TxID) {
	keys, ok := g.txLockedKeys[txID]
	if !ok {
		return
	}
	for k := range keys {
		if g.keyTopLocker[k] == txID {
			delete(g.keyTopLocker, k)
		}
	}
	delete(g.txLockedKeys, txID)
}

// proposeCat sends this chain's outcome for a CAT constituent to the
// Scheduler. SCH treats all but the first proposal per (cat, chain) pair as
// an idempotent no-op, so IG does not need to track whether it already
// proposed.
func (g *IG) proposeCat(tx types.Transaction, outcome types.Outcome) {
	g.metrics.CatsProposed.Inc()
	g.out <- types.Proposal{
		CatID:        tx.CatID,
		ChainID:      g.chainID,
		Outcome:      outcome,
		Participants: tx.Participants,
	}
}

// cascade walks t's consumers in recorded order — a newer onion layer must
// never unblock before its immediate predecessor — clearing the dependency
// and re-simulating any Regular consumer that becomes fully unblocked. A CAT
// consumer that unblocks stays pending: its own proposal was already sent
// at admission, and a cascaded re-simulation never emits a second one; it
// waits for its own verdict regardless of what a re-simulation would now
// say.
func (g *IG) cascade(finalized types.TxID) {
	consumers, ok := g.txConsumers[finalized]
	delete(g.txConsumers, finalized)
	if !ok {
		return
	}
	consumers.Iterate(func(c types.TxID, _ struct{}) bool {
		waits, ok := g.txWaitsOn[c]
		if !ok {
			return true
		}
		waits.Remove(finalized)
		if waits.Len() > 0 {
			return true
		}
		delete(g.txWaitsOn, c)

		if !g.pending.Contains(c) {
			return true
		}
		tx, ok := g.txByID[c]
		if !ok {
			return true
		}
		if tx.IsCat() {
			return true
		}
		g.reprocessRegular(tx)
		return true
	})
}

// reprocessRegular re-simulates a Regular transaction whose known blockers
// have all finalized. It either finalizes (possibly cascading further) or
// re-registers against a freshly observed blocker set.
func (g *IG) reprocessRegular(tx types.Transaction) {
	outcome, keys := g.vm.Simulate(g, tx.Payload)
	blockers := g.blockersFor(tx.ID, keys)
	if len(blockers) == 0 {
		g.executeAndFinalize(tx, outcome)
		return
	}
	g.txWaitsOn[tx.ID] = collections.Of(blockers...)
	for _, b := range blockers {
		g.consumersOf(b).Put(tx.ID, struct{}{})
	}
}

// applyVerdict applies the Scheduler's final outcome for one of this
// chain's CAT constituents: executing its writes on Success (or discarding
// them on Failure), releasing its locks, and cascading to anything that was
// waiting on it.
func (g *IG) applyVerdict(v types.Verdict) {
	txID, ok := g.catToTx[v.CatID]
	if !ok {
		// Already finalized (failed at admission, or its verdict was already
		// applied), or never a constituent here.
		return
	}
	tx := g.txByID[txID]

	delete(g.catDeadline, v.CatID)
	delete(g.catToTx, v.CatID)
	g.timedOut.Remove(v.CatID)

	if v.Outcome == types.Success {
		outcome, _ := g.vm.Simulate(g, tx.Payload)
		if outcome != types.Success {
			panic(fmt.Sprintf("protocol violation: cat %s verdict Success but re-simulation now reports Failure", v.CatID))
		}
		g.vm.Execute(g, tx.Payload)
	}

	g.metrics.VerdictsApplied.Inc()
	g.finalize(txID, v.Outcome)
}

// scanTimeouts proposes Failure, exactly once per CAT, for every locally
// pending constituent whose deadline has passed without a verdict. The CAT
// stays locally pending; only applyVerdict finalizes it, so this chain
// never unilaterally commits a timed-out CAT.
func (g *IG) scanTimeouts(height uint64) {
	for catID, deadline := range g.catDeadline {
		if deadline > height || g.timedOut.Contains(catID) {
			continue
		}
		txID, ok := g.catToTx[catID]
		if !ok {
			continue
		}
		tx := g.txByID[txID]

		g.timedOut.Add(catID)
		g.metrics.CatsTimedOut.Inc()
		g.log.Debug("cat constituent timed out, proposing failure",
			zap.Stringer("cat", catID), zap.Uint64("deadline", deadline), zap.Uint64("height", height))

		g.out <- types.Proposal{
			CatID:        catID,
			ChainID:      g.chainID,
			Outcome:      types.Failure,
			Participants: tx.Participants,
		}
	}
}
