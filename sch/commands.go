// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package sch

import "github.com/movementlabsxyz/hyperplane/types"

// command is the control-plane request type; SCH's only inbound protocol
// channel is `in` (see sch.go), so test/diagnostic queries like Outstanding
// go through this small side channel instead of sharing `in`'s type.
type command interface {
	isCommand()
}

type outstandingCmd struct {
	out chan int
}

func (outstandingCmd) isCommand() {}

type isResolvedCmd struct {
	catID types.CatID
	out   chan bool
}

func (isResolvedCmd) isCommand() {}

func (s *SCH) handle(cmd command) {
	switch cmd := cmd.(type) {
	case outstandingCmd:
		cmd.out <- s.aggregations.Len()
	case isResolvedCmd:
		cmd.out <- s.resolved.Contains(cmd.catID)
	}
}

func (s *SCH) send(cmd command) bool {
	s.lifecycle.Lock()
	running := s.started
	closed := s.closedCh
	s.lifecycle.Unlock()
	if !running {
		return false
	}
	select {
	case s.cmds <- cmd:
		return true
	case <-closed:
		return false
	}
}

// Outstanding returns the number of CATs with at least one proposal but no
// verdict yet. Intended for tests.
func (s *SCH) Outstanding() int {
	out := make(chan int, 1)
	if !s.send(outstandingCmd{out: out}) {
		return 0
	}
	return <-out
}

// IsResolved reports whether catID has already had a verdict emitted.
// Intended for tests.
func (s *SCH) IsResolved(catID types.CatID) bool {
	out := make(chan bool, 1)
	if !s.send(isResolvedCmd{catID: catID, out: out}) {
		return false
	}
	return <-out
}
