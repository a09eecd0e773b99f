// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics registers the small set of prometheus gauges/counters ig,
// sch and cl each expose, the way the reference codebase's
// protocol/prism.NewSet registers a "prisms" gauge and a "poll_duration"
// averager against a caller-supplied prometheus.Registerer.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// IG is the metric set one Information Gateway registers.
type IG struct {
	Pending        prometheus.Gauge
	TxFinalized    prometheus.Counter
	CatsProposed   prometheus.Counter
	CatsTimedOut   prometheus.Counter
	VerdictsApplied prometheus.Counter
}

// NewIG registers and returns an IG metric set, namespaced by chain.
func NewIG(reg prometheus.Registerer, chain string) (*IG, error) {
	m := &IG{
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hyperplane_ig_pending",
			Help:        "Number of pending transactions on this chain.",
			ConstLabels: prometheus.Labels{"chain": chain},
		}),
		TxFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hyperplane_ig_tx_finalized_total",
			Help:        "Total transactions finalized (Success or Failure) on this chain.",
			ConstLabels: prometheus.Labels{"chain": chain},
		}),
		CatsProposed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hyperplane_ig_cats_proposed_total",
			Help:        "Total CAT proposals sent to the scheduler.",
			ConstLabels: prometheus.Labels{"chain": chain},
		}),
		CatsTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hyperplane_ig_cats_timed_out_total",
			Help:        "Total CAT constituents that hit their deadline before a verdict arrived.",
			ConstLabels: prometheus.Labels{"chain": chain},
		}),
		VerdictsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hyperplane_ig_verdicts_applied_total",
			Help:        "Total verdicts applied to local CAT constituents.",
			ConstLabels: prometheus.Labels{"chain": chain},
		}),
	}
	for _, c := range []prometheus.Collector{m.Pending, m.TxFinalized, m.CatsProposed, m.CatsTimedOut, m.VerdictsApplied} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register ig metric: %w", err)
		}
	}
	return m, nil
}

// SCH is the metric set the Scheduler registers.
type SCH struct {
	Outstanding prometheus.Gauge
	Resolved    prometheus.Counter
	Discarded   prometheus.Counter
}

// NewSCH registers and returns a SCH metric set.
func NewSCH(reg prometheus.Registerer) (*SCH, error) {
	m := &SCH{
		Outstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hyperplane_sch_outstanding_cats",
			Help: "Number of CATs with at least one proposal but no verdict yet.",
		}),
		Resolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hyperplane_sch_resolved_total",
			Help: "Total CATs resolved to a verdict.",
		}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hyperplane_sch_discarded_proposals_total",
			Help: "Total proposals discarded as protocol violations or stale duplicates.",
		}),
	}
	for _, c := range []prometheus.Collector{m.Outstanding, m.Resolved, m.Discarded} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register sch metric: %w", err)
		}
	}
	return m, nil
}

// CL is the metric set the Confirmation Layer registers.
type CL struct {
	Height     *prometheus.GaugeVec
	QueueDepth *prometheus.GaugeVec
	Submitted  prometheus.Counter
}

// NewCL registers and returns a CL metric set.
func NewCL(reg prometheus.Registerer) (*CL, error) {
	m := &CL{
		Height: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hyperplane_cl_height",
			Help: "Current block height, by chain.",
		}, []string{"chain"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hyperplane_cl_queue_depth",
			Help: "Number of items queued awaiting the next tick, by chain.",
		}, []string{"chain"}),
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hyperplane_cl_submitted_total",
			Help: "Total submission groups accepted.",
		}),
	}
	for _, c := range []prometheus.Collector{m.Height, m.QueueDepth, m.Submitted} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register cl metric: %w", err)
		}
	}
	return m, nil
}
