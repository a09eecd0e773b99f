// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vmtest

import (
	"encoding/binary"

	"github.com/movementlabsxyz/hyperplane/types"
	"github.com/movementlabsxyz/hyperplane/vm"
)

// Instruction is the default payload decoded by VM: credit or debit Delta
// against Key, failing if the result would go negative. Tests build
// payloads with Credit/Debit rather than hand-rolling bytes.
type Instruction struct {
	Key   types.Key
	Delta int64
}

// Credit encodes an instruction that adds amount to key.
func Credit(key types.Key, amount int64) []byte {
	return Instruction{Key: key, Delta: amount}.Encode()
}

// Debit encodes an instruction that subtracts amount from key.
func Debit(key types.Key, amount int64) []byte {
	return Instruction{Key: key, Delta: -amount}.Encode()
}

// Encode serializes the instruction as a fixed-layout payload.
func (i Instruction) Encode() []byte {
	buf := make([]byte, 8+len(i.Key))
	binary.BigEndian.PutUint64(buf[:8], uint64(i.Delta))
	copy(buf[8:], i.Key)
	return buf
}

// Decode parses a payload produced by Encode.
func Decode(payload []byte) Instruction {
	if len(payload) < 8 {
		return Instruction{}
	}
	delta := int64(binary.BigEndian.Uint64(payload[:8]))
	return Instruction{Key: types.Key(payload[8:]), Delta: delta}
}

func (i Instruction) balance(view vm.View) int64 {
	raw, ok := view.Get(i.Key)
	if !ok || len(raw) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(raw))
}

func (i Instruction) apply(store vm.Mutator, balance int64) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(balance+i.Delta))
	store.Set(i.Key, buf)
}
