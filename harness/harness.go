// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package harness is the minimal reference orchestrator assumed to live
// outside the core: it wires one CL, one SCH and one IG per chain together
// over channels, and starts/stops them as a unit. Grounded on the reference
// codebase's cmd/*/main.go and
// example/simple/main.go wiring style: construct every component, hand each
// one the channels it needs, Start them in dependency order, Shutdown in
// reverse.
package harness

import (
	"fmt"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/movementlabsxyz/hyperplane/cl"
	"github.com/movementlabsxyz/hyperplane/config"
	"github.com/movementlabsxyz/hyperplane/ig"
	"github.com/movementlabsxyz/hyperplane/sch"
	"github.com/movementlabsxyz/hyperplane/types"
	"github.com/movementlabsxyz/hyperplane/vm"
)

// proposalChanCap bounds the shared IG to SCH proposal channel every IG in
// the harness writes to. Multiple producers, one consumer: natively safe
// over a plain Go channel, so there is no per-chain fan-in to manage; SCH
// only ever needs a single inbound channel.
const proposalChanCap = 256

// Harness owns one CL, one SCH, and one IG per registered chain.
type Harness struct {
	CL  *cl.CL
	SCH *sch.SCH

	igs map[types.ChainID]*ig.IG

	proposals chan types.Proposal
	log       log.Logger
	reg       prometheus.Registerer
	cfg       config.Config
}

// New builds the CL and SCH halves of a harness from cfg. Chains are added
// with AddChain before Start.
func New(cfg config.Config, logger log.Logger, reg prometheus.Registerer) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	confirmationLayer, err := cl.New(cfg.BlockInterval, logger, reg)
	if err != nil {
		return nil, fmt.Errorf("new cl: %w", err)
	}
	proposals := make(chan types.Proposal, proposalChanCap)
	scheduler, err := sch.New(proposals, confirmationLayer.VerdictInbox(), logger, reg)
	if err != nil {
		return nil, fmt.Errorf("new sch: %w", err)
	}
	return &Harness{
		CL:        confirmationLayer,
		SCH:       scheduler,
		igs:       make(map[types.ChainID]*ig.IG),
		proposals: proposals,
		log:       logger,
		reg:       reg,
		cfg:       cfg,
	}, nil
}

// AddChain registers chainID with CL and constructs its IG, wired to CL's
// per-chain sub-block channel and the harness's shared proposal channel.
// Must be called before Start.
func (h *Harness) AddChain(chainID types.ChainID, machine vm.VM) (*ig.IG, error) {
	if err := h.CL.RegisterChain(chainID); err != nil {
		return nil, fmt.Errorf("register chain %s: %w", chainID, err)
	}
	subBlocks, err := h.CL.ChannelFor(chainID)
	if err != nil {
		return nil, fmt.Errorf("channel for chain %s: %w", chainID, err)
	}
	gateway, err := ig.New(chainID, machine, h.cfg.CATLifetimeBlocks, h.cfg.AllowCATPendingDependencies,
		subBlocks, h.proposals, h.log, h.reg)
	if err != nil {
		return nil, fmt.Errorf("new ig for chain %s: %w", chainID, err)
	}
	h.igs[chainID] = gateway
	return gateway, nil
}

// IG returns the Information Gateway registered for chainID, if any.
func (h *Harness) IG(chainID types.ChainID) (*ig.IG, bool) {
	g, ok := h.igs[chainID]
	return g, ok
}

// Start begins SCH's aggregation loop, every registered IG's consumption
// loop, and CL's ticker, in that order. CL is started last, so every
// consumer is already running when the first sub-block is produced.
func (h *Harness) Start() {
	h.SCH.Start()
	for _, g := range h.igs {
		g.Start()
	}
	h.CL.Start()
}

// Shutdown stops every component. Order is the reverse of Start: the CL
// ticker stops first, so no new sub-blocks reach the IGs while they stop.
func (h *Harness) Shutdown() {
	h.CL.Shutdown()
	for _, g := range h.igs {
		g.Shutdown()
	}
	h.SCH.Shutdown()
}
