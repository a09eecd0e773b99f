// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ig

import "github.com/movementlabsxyz/hyperplane/types"

// command is the control-plane request type serviced by run() alongside the
// sub-block stream, the same request/reply pattern cl and sch use.
type command interface {
	isCommand()
}

type getStatusCmd struct {
	txID types.TxID
	out  chan getStatusResult
}

func (getStatusCmd) isCommand() {}

type getStatusResult struct {
	outcome types.Outcome
	known   bool
}

type getPendingCountCmd struct {
	out chan int
}

func (getPendingCountCmd) isCommand() {}

type setAllowCATPendingDepsCmd struct {
	allow bool
	done  chan struct{}
}

func (setAllowCATPendingDepsCmd) isCommand() {}

type getValueCmd struct {
	key types.Key
	out chan getValueResult
}

func (getValueCmd) isCommand() {}

type getValueResult struct {
	value []byte
	found bool
}

func (g *IG) handle(cmd command) {
	switch cmd := cmd.(type) {
	case getStatusCmd:
		outcome, known := g.status[cmd.txID]
		cmd.out <- getStatusResult{outcome: outcome, known: known}
	case getPendingCountCmd:
		cmd.out <- g.pending.Len()
	case setAllowCATPendingDepsCmd:
		g.allowCATPendingDeps = cmd.allow
		close(cmd.done)
	case getValueCmd:
		v, ok := g.store[cmd.key]
		cmd.out <- getValueResult{value: v, found: ok}
	}
}

// replyShutdown answers a command with the shutdown sentinel instead of
// executing it, used only during the post-cancel drain window.
func (g *IG) replyShutdown(cmd command) {
	switch cmd := cmd.(type) {
	case getStatusCmd:
		cmd.out <- getStatusResult{}
	case getPendingCountCmd:
		cmd.out <- 0
	case setAllowCATPendingDepsCmd:
		close(cmd.done)
	case getValueCmd:
		cmd.out <- getValueResult{}
	}
}

func (g *IG) send(cmd command) bool {
	g.lifecycle.Lock()
	running := g.started
	closed := g.closedCh
	g.lifecycle.Unlock()
	if !running {
		return false
	}
	select {
	case g.cmds <- cmd:
		return true
	case <-closed:
		return false
	}
}
