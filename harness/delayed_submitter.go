// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package harness

import (
	"fmt"
	"time"

	"github.com/luxfi/ids"

	"github.com/movementlabsxyz/hyperplane/types"
)

// DelayedSubmitter holds submissions back by a per-chain number of blocks
// before forwarding them to CL: the core itself only ever needs monotone
// heights out of CL, so the delay is applied here, by the orchestrator,
// rather than inside CL. A submission is held back until the target
// chain's height has advanced by at least `delay` blocks past the height
// observed when Submit was called.
type DelayedSubmitter struct {
	h     *Harness
	delay map[types.ChainID]uint64
	poll  time.Duration
}

// NewDelayedSubmitter wraps h, delaying submissions addressed to chains
// named in delay by that many blocks.
func NewDelayedSubmitter(h *Harness, delay map[types.ChainID]uint64) *DelayedSubmitter {
	cp := make(map[types.ChainID]uint64, len(delay))
	for k, v := range delay {
		cp[k] = v
	}
	return &DelayedSubmitter{h: h, delay: cp, poll: time.Millisecond}
}

// NewDelayedSubmitterFromConfig builds a DelayedSubmitter out of a
// Config's SubmissionDelayBlocks, parsing each string chain id into the
// types.ChainID the core uses.
func NewDelayedSubmitterFromConfig(h *Harness, delayByChainString map[string]uint64) (*DelayedSubmitter, error) {
	delay := make(map[types.ChainID]uint64, len(delayByChainString))
	for raw, blocks := range delayByChainString {
		chainID, err := ids.FromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse chain id %q: %w", raw, err)
		}
		delay[chainID] = blocks
	}
	return NewDelayedSubmitter(h, delay), nil
}

// Submit blocks until every chain targeted by group has advanced past its
// configured delay (measured from the moment Submit is called), then
// forwards to CL.Submit.
func (d *DelayedSubmitter) Submit(group types.Group) error {
	target := make(map[types.ChainID]uint64)
	for _, chainID := range group.Chains() {
		blocks, ok := d.delay[chainID]
		if !ok || blocks == 0 {
			continue
		}
		target[chainID] = d.h.CL.GetCurrentBlock(chainID) + blocks
	}
	for chainID, height := range target {
		for d.h.CL.GetCurrentBlock(chainID) < height {
			time.Sleep(d.poll)
		}
	}
	return d.h.CL.Submit(group)
}
