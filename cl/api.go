// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package cl

import "github.com/movementlabsxyz/hyperplane/types"

// send delivers cmd to run() and reports whether CL is running. Safe to
// call concurrently from any number of goroutines: each call gets its own
// reply channel.
func (c *CL) send(cmd command) bool {
	c.lifecycle.Lock()
	running := c.started
	closed := c.closedCh
	c.lifecycle.Unlock()
	if !running {
		return false
	}
	select {
	case c.cmds <- cmd:
		return true
	case <-closed:
		return false
	}
}

// RegisterChain establishes chainID's queue and sets its height to 0.
// Re-registering an already known chain id is rejected.
func (c *CL) RegisterChain(chainID types.ChainID) error {
	out := make(chan error, 1)
	if !c.send(registerChainCmd{chainID: chainID, out: out}) {
		return ErrShutdown
	}
	return <-out
}

// Submit enqueues group atomically: a single Regular transaction for one
// chain, or one CatConstituent per participant chain. Rejected if any
// target chain is unregistered.
func (c *CL) Submit(group types.Group) error {
	out := make(chan error, 1)
	if !c.send(submitCmd{group: group, out: out}) {
		return ErrShutdown
	}
	return <-out
}

// GetCurrentBlock returns chainID's current height (0 if unregistered).
func (c *CL) GetCurrentBlock(chainID types.ChainID) uint64 {
	out := make(chan uint64, 1)
	if !c.send(getCurrentBlockCmd{chainID: chainID, out: out}) {
		return 0
	}
	return <-out
}

// GetSubBlock is a read-only accessor for the sub-block CL produced for
// chainID at height, primarily for tests.
func (c *CL) GetSubBlock(chainID types.ChainID, height uint64) (types.SubBlock, error) {
	out := make(chan getSubBlockResult, 1)
	if !c.send(getSubBlockCmd{chainID: chainID, height: height, out: out}) {
		return types.SubBlock{}, ErrShutdown
	}
	res := <-out
	return res.block, res.err
}

// ChannelFor returns the read-only CL→IG channel for chainID. Intended to
// be called once, by the orchestrator, to wire an IG's inbound channel at
// construction time.
func (c *CL) ChannelFor(chainID types.ChainID) (<-chan types.SubBlock, error) {
	out := make(chan channelForResult, 1)
	if !c.send(channelForCmd{chainID: chainID, out: out}) {
		return nil, ErrShutdown
	}
	res := <-out
	return res.ch, res.err
}
