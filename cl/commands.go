// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package cl

import (
	"go.uber.org/zap"

	"github.com/movementlabsxyz/hyperplane/types"
)

// command is the sum type of control-plane requests serviced by run(). Each
// variant carries its own reply channel so the caller blocks on exactly the
// answer it asked for; external callers read CL state through query
// messages like these, never by reaching into CL's state directly.
type command interface {
	reply()
}

type registerChainCmd struct {
	chainID types.ChainID
	out     chan error
}

func (c registerChainCmd) reply() {}

type submitCmd struct {
	group types.Group
	out   chan error
}

func (c submitCmd) reply() {}

type getCurrentBlockCmd struct {
	chainID types.ChainID
	out     chan uint64
}

func (c getCurrentBlockCmd) reply() {}

type getSubBlockCmd struct {
	chainID types.ChainID
	height  uint64
	out     chan getSubBlockResult
}

func (c getSubBlockCmd) reply() {}

type getSubBlockResult struct {
	block types.SubBlock
	err   error
}

type channelForCmd struct {
	chainID types.ChainID
	out     chan channelForResult
}

func (c channelForCmd) reply() {}

type channelForResult struct {
	ch  <-chan types.SubBlock
	err error
}

func (c *CL) handle(cmd command) {
	switch cmd := cmd.(type) {
	case registerChainCmd:
		cmd.out <- c.registerChain(cmd.chainID)
	case submitCmd:
		cmd.out <- c.submit(cmd.group)
	case getCurrentBlockCmd:
		cmd.out <- c.height[cmd.chainID]
	case getSubBlockCmd:
		cmd.out <- c.getSubBlock(cmd.chainID, cmd.height)
	case channelForCmd:
		cmd.out <- c.channelFor(cmd.chainID)
	}
}

// replyShutdown answers a command with the shutdown error instead of
// executing it, used only during the post-cancel drain window.
func (c *CL) replyShutdown(cmd command) {
	switch cmd := cmd.(type) {
	case registerChainCmd:
		cmd.out <- ErrShutdown
	case submitCmd:
		cmd.out <- ErrShutdown
	case getCurrentBlockCmd:
		cmd.out <- 0
	case getSubBlockCmd:
		cmd.out <- getSubBlockResult{err: ErrShutdown}
	case channelForCmd:
		cmd.out <- channelForResult{err: ErrShutdown}
	}
}

func (c *CL) registerChain(chainID types.ChainID) error {
	if _, ok := c.registered[chainID]; ok {
		return ErrChainAlreadyRegistered
	}
	c.registered[chainID] = struct{}{}
	c.height[chainID] = 0
	c.queue[chainID] = nil
	c.out[chainID] = make(chan types.SubBlock, subBlockChanCap)
	c.history[chainID] = make(map[uint64]types.SubBlock)
	c.log.Info("chain registered", zap.Stringer("chain", chainID))
	return nil
}

func (c *CL) submit(group types.Group) error {
	for _, chainID := range group.Chains() {
		if _, ok := c.registered[chainID]; !ok {
			return ErrChainNotRegistered
		}
	}

	switch {
	case group.Regular != nil:
		c.queue[group.Regular.ChainID] = append(c.queue[group.Regular.ChainID], types.TxItem(group.Regular.Tx))
		c.metrics.QueueDepth.WithLabelValues(group.Regular.ChainID.String()).Set(float64(len(c.queue[group.Regular.ChainID])))
	case group.Cat != nil:
		for _, chainID := range group.Cat.Participants {
			tx, ok := group.Cat.Constituents[chainID]
			if !ok {
				continue
			}
			c.queue[chainID] = append(c.queue[chainID], types.TxItem(tx))
			c.metrics.QueueDepth.WithLabelValues(chainID.String()).Set(float64(len(c.queue[chainID])))
		}
	}
	c.metrics.Submitted.Inc()
	return nil
}

func (c *CL) getSubBlock(chainID types.ChainID, height uint64) getSubBlockResult {
	chainHistory, ok := c.history[chainID]
	if !ok {
		return getSubBlockResult{err: ErrChainNotRegistered}
	}
	sb, ok := chainHistory[height]
	if !ok {
		return getSubBlockResult{err: ErrNoSuchBlock}
	}
	return getSubBlockResult{block: sb}
}

func (c *CL) channelFor(chainID types.ChainID) channelForResult {
	ch, ok := c.out[chainID]
	if !ok {
		return channelForResult{err: ErrChainNotRegistered}
	}
	return channelForResult{ch: ch}
}
