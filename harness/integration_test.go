// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package harness

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/movementlabsxyz/hyperplane/config"
	"github.com/movementlabsxyz/hyperplane/types"
	"github.com/movementlabsxyz/hyperplane/vm/vmtest"
)

func newTestHarness(t *testing.T, cfg config.Config) *Harness {
	t.Helper()
	h, err := New(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(h.Shutdown)
	return h
}

func decodeBalance(raw []byte) int64 {
	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}
	return int64(v)
}

func waitForValue(t *testing.T, get func() ([]byte, bool)) int64 {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for store value")
		default:
		}
		if raw, ok := get(); ok {
			return decodeBalance(raw)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitForStatus(t *testing.T, get func() (types.Outcome, bool), want types.Outcome) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		if outcome, known := get(); known && outcome == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// TestTwoChainCatSuccess covers a two-chain CAT where both constituents
// succeed: both chains commit the write.
func TestTwoChainCatSuccess(t *testing.T) {
	require := require.New(t)
	h := newTestHarness(t, config.Fast())

	chainA, chainB := ids.GenerateTestID(), ids.GenerateTestID()
	gA, err := h.AddChain(chainA, &vmtest.VM{})
	require.NoError(err)
	gB, err := h.AddChain(chainB, &vmtest.VM{})
	require.NoError(err)
	h.Start()

	require.NoError(h.CL.Submit(types.NewRegularGroup(chainA, types.Transaction{ID: ids.GenerateTestID(), Payload: vmtest.Credit("kA", 10)})))
	require.NoError(h.CL.Submit(types.NewRegularGroup(chainB, types.Transaction{ID: ids.GenerateTestID(), Payload: vmtest.Credit("kB", 10)})))
	require.EqualValues(10, waitForValue(t, func() ([]byte, bool) { return gA.GetValue("kA") }))
	require.EqualValues(10, waitForValue(t, func() ([]byte, bool) { return gB.GetValue("kB") }))

	catID := ids.GenerateTestID()
	participants := []types.ChainID{chainA, chainB}
	txA, txB := ids.GenerateTestID(), ids.GenerateTestID()
	group := types.NewCatGroup(catID, participants, map[types.ChainID]types.Transaction{
		chainA: {ID: txA, Payload: vmtest.Credit("kA", 1)},
		chainB: {ID: txB, Payload: vmtest.Credit("kB", 1)},
	})
	require.NoError(h.CL.Submit(group))

	waitForStatus(t, func() (types.Outcome, bool) { return gA.GetStatus(txA) }, types.Success)
	waitForStatus(t, func() (types.Outcome, bool) { return gB.GetStatus(txB) }, types.Success)
	require.EqualValues(11, waitForValue(t, func() ([]byte, bool) { return gA.GetValue("kA") }))
	require.EqualValues(11, waitForValue(t, func() ([]byte, bool) { return gB.GetValue("kB") }))
	require.Equal(0, gA.GetPendingCount())
	require.Equal(0, gB.GetPendingCount())
}

// TestTwoChainCatFailsOnOneChain covers a two-chain CAT where one
// constituent would overdraw its chain: the whole CAT fails and neither
// chain's store changes.
func TestTwoChainCatFailsOnOneChain(t *testing.T) {
	require := require.New(t)
	h := newTestHarness(t, config.Fast())

	chainA, chainB := ids.GenerateTestID(), ids.GenerateTestID()
	gA, err := h.AddChain(chainA, &vmtest.VM{})
	require.NoError(err)
	gB, err := h.AddChain(chainB, &vmtest.VM{})
	require.NoError(err)
	h.Start()

	require.NoError(h.CL.Submit(types.NewRegularGroup(chainA, types.Transaction{ID: ids.GenerateTestID(), Payload: vmtest.Credit("kA", 10)})))
	require.NoError(h.CL.Submit(types.NewRegularGroup(chainB, types.Transaction{ID: ids.GenerateTestID(), Payload: vmtest.Credit("kB", 0)})))
	require.EqualValues(10, waitForValue(t, func() ([]byte, bool) { return gA.GetValue("kA") }))
	require.EqualValues(0, waitForValue(t, func() ([]byte, bool) { return gB.GetValue("kB") }))

	catID := ids.GenerateTestID()
	participants := []types.ChainID{chainA, chainB}
	txA, txB := ids.GenerateTestID(), ids.GenerateTestID()
	group := types.NewCatGroup(catID, participants, map[types.ChainID]types.Transaction{
		chainA: {ID: txA, Payload: vmtest.Debit("kA", 5)},
		chainB: {ID: txB, Payload: vmtest.Debit("kB", 5)},
	})
	require.NoError(h.CL.Submit(group))

	waitForStatus(t, func() (types.Outcome, bool) { return gA.GetStatus(txA) }, types.Failure)
	waitForStatus(t, func() (types.Outcome, bool) { return gB.GetStatus(txB) }, types.Failure)
	require.EqualValues(10, waitForValue(t, func() ([]byte, bool) { return gA.GetValue("kA") }))
	require.EqualValues(0, waitForValue(t, func() ([]byte, bool) { return gB.GetValue("kB") }))
	require.Equal(0, gA.GetPendingCount())
	require.Equal(0, gB.GetPendingCount())
}

// TestRestartYieldsFreshEmptyNodes covers shutdown followed by
// reconstruction: prior ids are unknown on the fresh node and new
// submissions still work.
func TestRestartYieldsFreshEmptyNodes(t *testing.T) {
	require := require.New(t)
	h := newTestHarness(t, config.Fast())

	chainA := ids.GenerateTestID()
	gA, err := h.AddChain(chainA, &vmtest.VM{})
	require.NoError(err)
	h.Start()

	oldTx := ids.GenerateTestID()
	require.NoError(h.CL.Submit(types.NewRegularGroup(chainA, types.Transaction{ID: oldTx, Payload: vmtest.Credit("k1", 5)})))
	require.EqualValues(5, waitForValue(t, func() ([]byte, bool) { return gA.GetValue("k1") }))

	h.Shutdown()

	h2 := newTestHarness(t, config.Fast())
	gA2, err := h2.AddChain(chainA, &vmtest.VM{})
	require.NoError(err)
	h2.Start()

	_, known := gA2.GetStatus(oldTx)
	require.False(known)
	_, found := gA2.GetValue("k1")
	require.False(found)

	newTx := ids.GenerateTestID()
	require.NoError(h2.CL.Submit(types.NewRegularGroup(chainA, types.Transaction{ID: newTx, Payload: vmtest.Credit("k1", 3)})))
	require.EqualValues(3, waitForValue(t, func() ([]byte, bool) { return gA2.GetValue("k1") }))
}

// TestDelayedSubmitterWaitsForTargetHeight exercises the orchestrator-level
// submission delay helper: the delay is enforced outside the core, which
// only ever sees monotone heights.
func TestDelayedSubmitterWaitsForTargetHeight(t *testing.T) {
	require := require.New(t)
	h := newTestHarness(t, config.Fast())
	chainA := ids.GenerateTestID()
	gA, err := h.AddChain(chainA, &vmtest.VM{})
	require.NoError(err)
	h.Start()

	submitter := NewDelayedSubmitter(h, map[types.ChainID]uint64{chainA: 3})
	start := h.CL.GetCurrentBlock(chainA)

	txID := ids.GenerateTestID()
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(submitter.Submit(types.NewRegularGroup(chainA, types.Transaction{ID: txID, Payload: vmtest.Credit("k1", 1)})))
	}()

	select {
	case <-done:
		t.Fatal("delayed submit returned before the configured delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	<-done
	require.GreaterOrEqual(h.CL.GetCurrentBlock(chainA), start+3)
	waitForStatus(t, func() (types.Outcome, bool) { return gA.GetStatus(txID) }, types.Success)
}

// TestDelayedSubmitterFromConfig covers building a DelayedSubmitter
// straight out of a Config's SubmissionDelayBlocks, parsing each chain id's
// string form back into a types.ChainID.
func TestDelayedSubmitterFromConfig(t *testing.T) {
	require := require.New(t)
	h := newTestHarness(t, config.Fast())
	chainA := ids.GenerateTestID()
	gA, err := h.AddChain(chainA, &vmtest.VM{})
	require.NoError(err)
	h.Start()

	cfg := config.Fast()
	cfg.SubmissionDelayBlocks = map[string]uint64{chainA.String(): 3}
	submitter, err := NewDelayedSubmitterFromConfig(h, cfg.SubmissionDelayBlocks)
	require.NoError(err)
	start := h.CL.GetCurrentBlock(chainA)

	txID := ids.GenerateTestID()
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(submitter.Submit(types.NewRegularGroup(chainA, types.Transaction{ID: txID, Payload: vmtest.Credit("k1", 1)})))
	}()

	select {
	case <-done:
		t.Fatal("delayed submit returned before the configured delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	<-done
	require.GreaterOrEqual(h.CL.GetCurrentBlock(chainA), start+3)
	waitForStatus(t, func() (types.Outcome, bool) { return gA.GetStatus(txID) }, types.Success)
}

// TestDelayedSubmitterFromConfigRejectsBadChainID covers the parse-error
// path when SubmissionDelayBlocks names a malformed chain id.
func TestDelayedSubmitterFromConfigRejectsBadChainID(t *testing.T) {
	require := require.New(t)
	h := newTestHarness(t, config.Fast())

	_, err := NewDelayedSubmitterFromConfig(h, map[string]uint64{"not-a-valid-id": 1})
	require.Error(err)
}
