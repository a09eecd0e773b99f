// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vmtest provides a scriptable fake VM for tests, in the style of
// the reference codebase's engine/chain/chaintest test VM: a struct of
// overridable function fields with sane defaults, rather than a full mock.
package vmtest

import (
	"github.com/movementlabsxyz/hyperplane/types"
	"github.com/movementlabsxyz/hyperplane/vm"
)

// VM is a fake implementing vm.VM. Payloads are interpreted by the default
// behavior as credit/debit instructions encoded by Instruction (an 8-byte
// big-endian delta followed by the key bytes), but any test can override
// SimulateF/ExecuteF entirely.
type VM struct {
	SimulateF func(view vm.View, payload []byte) (types.Outcome, []types.Key)
	ExecuteF  func(store vm.Mutator, payload []byte)
}

// Simulate delegates to SimulateF if set, else decodes payload as an
// Instruction and reports Success with the touched key, Failure if the
// instruction would drive the balance negative.
func (v *VM) Simulate(view vm.View, payload []byte) (types.Outcome, []types.Key) {
	if v.SimulateF != nil {
		return v.SimulateF(view, payload)
	}
	instr := Decode(payload)
	if instr.balance(view)+instr.Delta < 0 {
		return types.Failure, []types.Key{instr.Key}
	}
	return types.Success, []types.Key{instr.Key}
}

// Execute delegates to ExecuteF if set, else applies the decoded
// Instruction's delta to its key.
func (v *VM) Execute(store vm.Mutator, payload []byte) {
	if v.ExecuteF != nil {
		v.ExecuteF(store, payload)
		return
	}
	instr := Decode(payload)
	instr.apply(store, instr.balance(store))
}
