// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ig implements the Information Gateway: the per-chain actor that
// consumes ordered sub-blocks, speculatively executes transactions against
// its local store, enforces key-level locking with onion-layered
// dependency chains, emits CAT proposals to the Scheduler, and applies the
// Scheduler's verdicts. Like cl and sch it owns its state in a single
// background goroutine reached only through channels, the same shape as
// the reference codebase's networking/handler.NotificationForwarder.
package ig

import (
	"context"
	"sync"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/movementlabsxyz/hyperplane/internal/collections"
	"github.com/movementlabsxyz/hyperplane/metrics"
	"github.com/movementlabsxyz/hyperplane/types"
	"github.com/movementlabsxyz/hyperplane/vm"
)

// IG is the Information Gateway for exactly one chain. Construct with New,
// then Start it.
type IG struct {
	chainID           types.ChainID
	vm                vm.VM
	catLifetimeBlocks uint64

	in  <-chan types.SubBlock
	out chan<- types.Proposal

	log     log.Logger
	metrics *metrics.IG

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	running   sync.WaitGroup
	started   bool
	closedCh  chan struct{}

	cmds chan command

	// state, owned exclusively by run(): accessed from no other goroutine,
	// including via the View/Mutator methods below.
	allowCATPendingDeps bool
	store               map[types.Key][]byte
	status              map[types.TxID]types.Outcome
	pending             collections.Set[types.TxID]
	txByID              map[types.TxID]types.Transaction
	keyTopLocker        map[types.Key]types.TxID
	txLockedKeys        map[types.TxID]collections.Set[types.Key]
	txConsumers         map[types.TxID]*collections.Hashmap[types.TxID, struct{}]
	txWaitsOn           map[types.TxID]collections.Set[types.TxID]
	catDeadline         map[types.CatID]uint64
	catToTx             map[types.CatID]types.TxID
	timedOut            collections.Set[types.CatID]

	// txSeq records each transaction's admission order. Dependencies only
	// ever point at strictly earlier admissions; cascade
	// re-simulation uses this to tell an actual ancestor blocker apart from
	// a later onion layer that happens to sit on the same key (which is a
	// descendant, not a blocker, of the transaction being reprocessed).
	txSeq   map[types.TxID]uint64
	nextSeq uint64
}

// New returns an Information Gateway for chainID. clIn is this chain's
// CL→IG sub-block channel; schOut is the shared IG→SCH proposal channel.
func New(
	chainID types.ChainID,
	machine vm.VM,
	catLifetimeBlocks uint64,
	allowCATPendingDeps bool,
	clIn <-chan types.SubBlock,
	schOut chan<- types.Proposal,
	logger log.Logger,
	reg prometheus.Registerer,
) (*IG, error) {
	if catLifetimeBlocks == 0 {
		return nil, ErrInvalidLifetime
	}
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	m, err := metrics.NewIG(reg, chainID.String())
	if err != nil {
		return nil, err
	}
	return &IG{
		chainID:             chainID,
		vm:                  machine,
		catLifetimeBlocks:   catLifetimeBlocks,
		allowCATPendingDeps: allowCATPendingDeps,
		in:                  clIn,
		out:                 schOut,
		log:                 logger,
		metrics:             m,
		cmds:                make(chan command),
		store:               make(map[types.Key][]byte),
		status:              make(map[types.TxID]types.Outcome),
		pending:             collections.NewSet[types.TxID](0),
		txByID:              make(map[types.TxID]types.Transaction),
		keyTopLocker:        make(map[types.Key]types.TxID),
		txLockedKeys:        make(map[types.TxID]collections.Set[types.Key]),
		txConsumers:         make(map[types.TxID]*collections.Hashmap[types.TxID, struct{}]),
		txWaitsOn:           make(map[types.TxID]collections.Set[types.TxID]),
		catDeadline:         make(map[types.CatID]uint64),
		catToTx:             make(map[types.CatID]types.TxID),
		timedOut:            collections.NewSet[types.CatID](0),
		txSeq:               make(map[types.TxID]uint64),
	}, nil
}

// Get implements vm.View. Only ever called from within run(), so no locking
// is needed.
func (g *IG) Get(key types.Key) ([]byte, bool) {
	v, ok := g.store[key]
	return v, ok
}

// Set implements vm.Mutator.
func (g *IG) Set(key types.Key, value []byte) {
	g.store[key] = value
}

// Start begins consuming sub-blocks. Idempotent.
func (g *IG) Start() {
	g.lifecycle.Lock()
	defer g.lifecycle.Unlock()
	if g.started {
		return
	}
	g.started = true
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.closedCh = make(chan struct{})
	g.running.Add(1)
	go g.run(ctx)
	g.log.Info("information gateway started", zap.Stringer("chain", g.chainID))
}

// Shutdown stops consuming sub-blocks and drops all in-memory state.
// Idempotent.
func (g *IG) Shutdown() {
	g.lifecycle.Lock()
	if !g.started {
		g.lifecycle.Unlock()
		return
	}
	g.started = false
	cancel := g.cancel
	g.lifecycle.Unlock()

	cancel()
	g.running.Wait()

	// run() has exited, so the state can be replaced without racing it.
	g.store = make(map[types.Key][]byte)
	g.status = make(map[types.TxID]types.Outcome)
	g.pending = collections.NewSet[types.TxID](0)
	g.txByID = make(map[types.TxID]types.Transaction)
	g.keyTopLocker = make(map[types.Key]types.TxID)
	g.txLockedKeys = make(map[types.TxID]collections.Set[types.Key])
	g.txConsumers = make(map[types.TxID]*collections.Hashmap[types.TxID, struct{}])
	g.txWaitsOn = make(map[types.TxID]collections.Set[types.TxID])
	g.catDeadline = make(map[types.CatID]uint64)
	g.catToTx = make(map[types.CatID]types.TxID)
	g.timedOut = collections.NewSet[types.CatID](0)
	g.txSeq = make(map[types.TxID]uint64)
	g.nextSeq = 0
	g.log.Info("information gateway stopped", zap.Stringer("chain", g.chainID))
}

func (g *IG) run(ctx context.Context) {
	defer g.running.Done()
	defer close(g.closedCh)

	for {
		select {
		case <-ctx.Done():
			g.drain()
			return
		case sb := <-g.in:
			g.processSubBlock(sb)
		case cmd := <-g.cmds:
			g.handle(cmd)
		}
	}
}

// drain services any commands already in flight so callers blocked on a
// synchronous request get an answer instead of hanging past shutdown.
func (g *IG) drain() {
	for {
		select {
		case cmd := <-g.cmds:
			g.replyShutdown(cmd)
		default:
			return
		}
	}
}

func (g *IG) processSubBlock(sb types.SubBlock) {
	if sb.ChainID != g.chainID {
		g.log.Warn("sub-block addressed to a different chain, discarding",
			zap.Error(ErrWrongChain), zap.Stringer("want", g.chainID), zap.Stringer("got", sb.ChainID))
		return
	}
	for _, item := range sb.Items {
		switch item.Kind {
		case types.ItemTx:
			g.admitTx(sb.Height, item.Tx)
		case types.ItemVerdict:
			g.applyVerdict(item.V)
		}
	}
	g.scanTimeouts(sb.Height)
}
