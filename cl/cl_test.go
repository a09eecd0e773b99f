// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package cl

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/movementlabsxyz/hyperplane/types"
)

func newTestCL(t *testing.T) *CL {
	t.Helper()
	c, err := New(10*time.Millisecond, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	c.Start()
	t.Cleanup(c.Shutdown)
	return c
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	_, err := New(0, nil, prometheus.NewRegistry())
	require.ErrorIs(t, err, ErrInvalidBlockInterval)
}

func TestRegisterChainRejectsDuplicate(t *testing.T) {
	require := require.New(t)
	c := newTestCL(t)
	chainID := ids.GenerateTestID()

	require.NoError(c.RegisterChain(chainID))
	require.ErrorIs(c.RegisterChain(chainID), ErrChainAlreadyRegistered)
}

func TestSubmitRejectsUnregisteredChain(t *testing.T) {
	require := require.New(t)
	c := newTestCL(t)
	chainID := ids.GenerateTestID()

	tx := types.Transaction{ID: ids.GenerateTestID()}
	err := c.Submit(types.NewRegularGroup(chainID, tx))
	require.ErrorIs(err, ErrChainNotRegistered)
}

func TestTickAdvancesHeightAndDeliversSubBlock(t *testing.T) {
	require := require.New(t)
	c := newTestCL(t)
	chainID := ids.GenerateTestID()
	require.NoError(c.RegisterChain(chainID))

	out, err := c.ChannelFor(chainID)
	require.NoError(err)

	select {
	case sb := <-out:
		require.Equal(chainID, sb.ChainID)
		require.Equal(uint64(1), sb.Height)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sub-block")
	}
	require.Equal(uint64(1), c.GetCurrentBlock(chainID))
}

func TestSubmittedTransactionAppearsInNextSubBlock(t *testing.T) {
	require := require.New(t)
	c := newTestCL(t)
	chainID := ids.GenerateTestID()
	require.NoError(c.RegisterChain(chainID))
	out, err := c.ChannelFor(chainID)
	require.NoError(err)

	// Drain the empty sub-block produced by whatever tick is already in
	// flight before the submission lands.
	<-out

	tx := types.Transaction{ID: ids.GenerateTestID(), Payload: []byte("hi")}
	require.NoError(c.Submit(types.NewRegularGroup(chainID, tx)))

	var sb types.SubBlock
	for {
		select {
		case sb = <-out:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for submitted tx to surface")
		}
		if len(sb.Items) > 0 {
			break
		}
	}
	require.Len(sb.Items, 1)
	require.Equal(types.ItemTx, sb.Items[0].Kind)
	require.Equal(tx.ID, sb.Items[0].Tx.ID)
}

func TestCatSubmissionLandsOnEveryParticipant(t *testing.T) {
	require := require.New(t)
	c := newTestCL(t)
	chainA, chainB := ids.GenerateTestID(), ids.GenerateTestID()
	require.NoError(c.RegisterChain(chainA))
	require.NoError(c.RegisterChain(chainB))
	outA, err := c.ChannelFor(chainA)
	require.NoError(err)
	outB, err := c.ChannelFor(chainB)
	require.NoError(err)
	<-outA
	<-outB

	catID := ids.GenerateTestID()
	participants := []types.ChainID{chainA, chainB}
	group := types.NewCatGroup(catID, participants, map[types.ChainID]types.Transaction{
		chainA: {ID: ids.GenerateTestID()},
		chainB: {ID: ids.GenerateTestID()},
	})
	require.NoError(c.Submit(group))

	for _, out := range []<-chan types.SubBlock{outA, outB} {
		var sb types.SubBlock
		for {
			select {
			case sb = <-out:
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for cat constituent")
			}
			if len(sb.Items) > 0 {
				break
			}
		}
		require.Len(sb.Items, 1)
		require.Equal(types.CatConstituent, sb.Items[0].Tx.Kind)
		require.Equal(catID, sb.Items[0].Tx.CatID)
	}
}

func TestVerdictSubmissionQueuesOnEachParticipant(t *testing.T) {
	require := require.New(t)
	c := newTestCL(t)
	chainA, chainB := ids.GenerateTestID(), ids.GenerateTestID()
	require.NoError(c.RegisterChain(chainA))
	require.NoError(c.RegisterChain(chainB))
	outA, err := c.ChannelFor(chainA)
	require.NoError(err)
	outB, err := c.ChannelFor(chainB)
	require.NoError(err)
	<-outA
	<-outB

	catID := ids.GenerateTestID()
	c.VerdictInbox() <- types.VerdictSubmission{
		Verdict:      types.Verdict{CatID: catID, Outcome: types.Success},
		Participants: []types.ChainID{chainA, chainB},
	}

	for _, out := range []<-chan types.SubBlock{outA, outB} {
		var sb types.SubBlock
		for {
			select {
			case sb = <-out:
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for verdict item")
			}
			if len(sb.Items) > 0 {
				break
			}
		}
		require.Len(sb.Items, 1)
		require.Equal(types.ItemVerdict, sb.Items[0].Kind)
		require.Equal(catID, sb.Items[0].V.CatID)
		require.Equal(types.Success, sb.Items[0].V.Outcome)
	}
}

func TestGetSubBlockReturnsHistoricalBlocks(t *testing.T) {
	require := require.New(t)
	c := newTestCL(t)
	chainID := ids.GenerateTestID()
	require.NoError(c.RegisterChain(chainID))
	out, err := c.ChannelFor(chainID)
	require.NoError(err)

	sb := <-out
	got, err := c.GetSubBlock(chainID, sb.Height)
	require.NoError(err)
	require.Equal(sb, got)

	_, err = c.GetSubBlock(chainID, sb.Height+1000)
	require.ErrorIs(err, ErrNoSuchBlock)
}

func TestChannelForUnregisteredChainErrors(t *testing.T) {
	c := newTestCL(t)
	_, err := c.ChannelFor(ids.GenerateTestID())
	require.ErrorIs(t, err, ErrChainNotRegistered)
}

func TestIdempotentShutdown(t *testing.T) {
	require := require.New(t)
	c, err := New(10*time.Millisecond, nil, prometheus.NewRegistry())
	require.NoError(err)
	c.Start()
	c.Shutdown()
	require.NotPanics(c.Shutdown)
}

func TestOperationsAfterShutdownReturnShutdownError(t *testing.T) {
	require := require.New(t)
	c, err := New(10*time.Millisecond, nil, prometheus.NewRegistry())
	require.NoError(err)
	c.Start()
	c.Shutdown()

	require.ErrorIs(c.RegisterChain(ids.GenerateTestID()), ErrShutdown)
	require.Equal(uint64(0), c.GetCurrentBlock(ids.GenerateTestID()))
}
