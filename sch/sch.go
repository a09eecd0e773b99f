// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sch implements the Scheduler: the single global instance that
// joins per-chain CAT proposals by CAT id against the declared participant
// set and emits one verdict per CAT. Its aggregation table
// is the same shape as the reference codebase's protocol/prism.Set —
// an oldest-first ordered table of per-request outstanding state, registered
// against a prometheus.Registerer the same way — generalized from per-poll
// vote tallies to per-CAT Success/Failure aggregation.
package sch

import (
	"context"
	"sync"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/movementlabsxyz/hyperplane/internal/collections"
	"github.com/movementlabsxyz/hyperplane/metrics"
	"github.com/movementlabsxyz/hyperplane/types"
)

// aggregation is the per-CAT state accumulated until resolution: the
// declared participant set and the outcome reported by each chain so far.
type aggregation struct {
	participants collections.Set[types.ChainID]
	proposals    map[types.ChainID]types.Outcome
}

// SCH is the Scheduler. Construct with New, then Start it.
type SCH struct {
	in  <-chan types.Proposal
	out chan<- types.VerdictSubmission

	log     log.Logger
	metrics *metrics.SCH

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	running   sync.WaitGroup
	started   bool
	closedCh  chan struct{}

	cmds chan command

	// state, owned exclusively by run().
	aggregations *collections.Hashmap[types.CatID, *aggregation]
	resolved     collections.Set[types.CatID]
}

// New returns a Scheduler that reads proposals from in and writes verdicts
// to out.
func New(in <-chan types.Proposal, out chan<- types.VerdictSubmission, logger log.Logger, reg prometheus.Registerer) (*SCH, error) {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	m, err := metrics.NewSCH(reg)
	if err != nil {
		return nil, err
	}
	return &SCH{
		in:           in,
		out:          out,
		log:          logger,
		metrics:      m,
		cmds:         make(chan command),
		aggregations: collections.NewHashmap[types.CatID, *aggregation](),
		resolved:     collections.NewSet[types.CatID](0),
	}, nil
}

// Start begins consuming proposals. Idempotent.
func (s *SCH) Start() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.started {
		return
	}
	s.started = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.closedCh = make(chan struct{})
	s.running.Add(1)
	go s.run(ctx)
	s.log.Info("scheduler started")
}

// Shutdown stops consuming proposals. Idempotent.
func (s *SCH) Shutdown() {
	s.lifecycle.Lock()
	if !s.started {
		s.lifecycle.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.lifecycle.Unlock()

	cancel()
	s.running.Wait()
	s.log.Info("scheduler stopped")
}

func (s *SCH) run(ctx context.Context) {
	defer s.running.Done()
	defer close(s.closedCh)

	for {
		select {
		case <-ctx.Done():
			return
		case p := <-s.in:
			s.propose(p)
		case cmd := <-s.cmds:
			s.handle(cmd)
		}
	}
}

// propose joins p into its CAT's aggregation and, once the CAT has a
// Failure from any chain or a Success from every participant, resolves it
// and submits the verdict.
func (s *SCH) propose(p types.Proposal) {
	if s.resolved.Contains(p.CatID) {
		s.metrics.Discarded.Inc()
		return
	}

	agg, exists := s.aggregations.Get(p.CatID)
	if !exists {
		agg = &aggregation{
			participants: collections.Of(p.Participants...),
			proposals:    make(map[types.ChainID]types.Outcome),
		}
		s.aggregations.Put(p.CatID, agg)
		s.metrics.Outstanding.Set(float64(s.aggregations.Len()))
	} else if !agg.participants.Equals(collections.Of(p.Participants...)) {
		s.log.Warn("discarding proposal with inconsistent participant set",
			zap.Error(ErrParticipantMismatch), zap.Stringer("cat", p.CatID), zap.Stringer("chain", p.ChainID))
		s.metrics.Discarded.Inc()
		return
	}

	if !agg.participants.Contains(p.ChainID) {
		s.log.Warn("discarding proposal from non-participant chain",
			zap.Error(ErrUnknownParticipant), zap.Stringer("cat", p.CatID), zap.Stringer("chain", p.ChainID))
		s.metrics.Discarded.Inc()
		return
	}

	if _, already := agg.proposals[p.ChainID]; already {
		// First write wins; duplicates (e.g. from a timeout re-proposal)
		// are idempotent no-ops.
		return
	}
	agg.proposals[p.ChainID] = p.Outcome

	verdict, ready := s.resolve(agg)
	if !ready {
		return
	}

	s.aggregations.Delete(p.CatID)
	s.resolved.Add(p.CatID)
	s.metrics.Outstanding.Set(float64(s.aggregations.Len()))
	s.metrics.Resolved.Inc()

	s.log.Debug("cat resolved", zap.Stringer("cat", p.CatID), zap.Stringer("verdict", verdict))

	s.out <- types.VerdictSubmission{
		Verdict:      types.Verdict{CatID: p.CatID, Outcome: verdict},
		Participants: agg.participants.List(),
	}
}

// resolve reports the verdict for agg and whether it is ready: any Failure
// resolves immediately, otherwise every participant must have reported
// Success.
func (s *SCH) resolve(agg *aggregation) (types.Outcome, bool) {
	for _, outcome := range agg.proposals {
		if outcome == types.Failure {
			return types.Failure, true
		}
	}
	if len(agg.proposals) < agg.participants.Len() {
		return types.Pending, false
	}
	return types.Success, true
}
