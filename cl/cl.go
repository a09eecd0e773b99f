// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cl implements the Confirmation Layer: the system's common clock
// and total-order oracle. CL owns its state in a single
// background goroutine, reached only through channels and synchronous
// request/reply calls, the way the reference codebase's
// networking/handler.NotificationForwarder drives a single run loop behind
// a started/cancel/WaitGroup guard.
package cl

import (
	"context"
	"sync"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/movementlabsxyz/hyperplane/metrics"
	"github.com/movementlabsxyz/hyperplane/types"
)

// subBlockChanCap bounds the CL to IG channel; a stalled IG backpressures
// CL's own tick loop once it fills.
const subBlockChanCap = 16

// verdictChanCap bounds the SCH→CL submission channel.
const verdictChanCap = 64

// CL is the Confirmation Layer. Construct with New, then Start it.
type CL struct {
	interval time.Duration
	log      log.Logger
	metrics  *metrics.CL

	// verdictIn is the SCH to CL submission channel: the single point-to-point
	// channel the Scheduler writes verdicts to.
	verdictIn chan types.VerdictSubmission

	cmds chan command

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	running   sync.WaitGroup
	started   bool
	// closedCh is closed once run() has fully exited (including its
	// drain window), so send() never blocks forever racing a shutdown.
	closedCh chan struct{}

	// state, owned exclusively by run(): never touched from another
	// goroutine.
	height     map[types.ChainID]uint64
	queue      map[types.ChainID][]types.Item
	registered map[types.ChainID]struct{}
	out        map[types.ChainID]chan types.SubBlock
	history    map[types.ChainID]map[uint64]types.SubBlock
}

// New returns a CL ticking every interval. interval must be positive.
func New(interval time.Duration, logger log.Logger, reg prometheus.Registerer) (*CL, error) {
	if interval <= 0 {
		return nil, ErrInvalidBlockInterval
	}
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	m, err := metrics.NewCL(reg)
	if err != nil {
		return nil, err
	}
	return &CL{
		interval:   interval,
		log:        logger,
		metrics:    m,
		verdictIn:  make(chan types.VerdictSubmission, verdictChanCap),
		cmds:       make(chan command),
		height:     make(map[types.ChainID]uint64),
		queue:      make(map[types.ChainID][]types.Item),
		registered: make(map[types.ChainID]struct{}),
		out:        make(map[types.ChainID]chan types.SubBlock),
		history:    make(map[types.ChainID]map[uint64]types.SubBlock),
	}, nil
}

// Start begins the block ticker. Idempotent.
func (c *CL) Start() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.started {
		return
	}
	c.started = true
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.closedCh = make(chan struct{})
	c.running.Add(1)
	go c.run(ctx)
	c.log.Info("confirmation layer started", zap.Duration("interval", c.interval))
}

// Shutdown stops the ticker and drains in-flight work. Idempotent.
func (c *CL) Shutdown() {
	c.lifecycle.Lock()
	if !c.started {
		c.lifecycle.Unlock()
		return
	}
	c.started = false
	cancel := c.cancel
	c.lifecycle.Unlock()

	cancel()
	c.running.Wait()
	c.log.Info("confirmation layer stopped")
}

// VerdictInbox returns the write end of the SCH→CL submission channel.
func (c *CL) VerdictInbox() chan<- types.VerdictSubmission {
	return c.verdictIn
}

func (c *CL) run(ctx context.Context) {
	defer c.running.Done()
	defer close(c.closedCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.drain()
			return
		case <-ticker.C:
			c.tick()
		case v := <-c.verdictIn:
			c.admitVerdict(v)
		case cmd := <-c.cmds:
			c.handle(cmd)
		}
	}
}

// drain services any commands already queued so callers blocked on a
// synchronous request get an answer instead of hanging past shutdown.
func (c *CL) drain() {
	grace := time.NewTimer(50 * time.Millisecond)
	defer grace.Stop()
	for {
		select {
		case cmd := <-c.cmds:
			c.replyShutdown(cmd)
		case <-grace.C:
			return
		}
	}
}

func (c *CL) tick() {
	for chainID := range c.registered {
		c.height[chainID]++
		h := c.height[chainID]
		items := c.queue[chainID]
		c.queue[chainID] = nil
		for i := range items {
			if items[i].Kind == types.ItemTx {
				items[i].Tx.SubmittedInBlock = h
			}
		}

		sb := types.SubBlock{ChainID: chainID, Height: h, Items: items}
		if c.history[chainID] == nil {
			c.history[chainID] = make(map[uint64]types.SubBlock)
		}
		c.history[chainID][h] = sb

		c.metrics.Height.WithLabelValues(chainID.String()).Set(float64(h))
		c.metrics.QueueDepth.WithLabelValues(chainID.String()).Set(0)

		// A full out channel means the registered IG is stalled. Block rather
		// than drop the sub-block; that backpressures CL itself.
		c.out[chainID] <- sb
	}
}

func (c *CL) admitVerdict(v types.VerdictSubmission) {
	for _, chainID := range v.Participants {
		if _, ok := c.registered[chainID]; !ok {
			c.log.Warn("verdict submission names unregistered chain",
				zap.Stringer("chain", chainID), zap.Stringer("cat", v.Verdict.CatID))
			continue
		}
		c.queue[chainID] = append(c.queue[chainID], types.VerdictItem(v.Verdict))
		c.metrics.QueueDepth.WithLabelValues(chainID.String()).Set(float64(len(c.queue[chainID])))
	}
}
