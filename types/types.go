// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types holds the wire and data-model vocabulary shared by cl, ig
// and sch: chain/transaction/CAT identifiers, transactions, sub-blocks and
// verdicts.
package types

import (
	"fmt"

	"github.com/luxfi/ids"
)

// ChainID identifies a registered chain. Opaque and interned per spec.
type ChainID = ids.ID

// TxID globally identifies a transaction.
type TxID = ids.ID

// CatID identifies a cross-chain atomic transaction.
type CatID = ids.ID

// Key names a state slot within a single chain's store. Treated as an
// opaque byte string; represented as string so it is directly usable as a
// map key without a wrapper.
type Key string

// Outcome is the result the VM (or a timeout) assigns to a transaction or a
// CAT.
type Outcome uint8

const (
	// Pending means no terminal outcome has been assigned yet.
	Pending Outcome = iota
	Success
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	default:
		return "Pending"
	}
}

// Kind distinguishes a plain single-chain transaction from one constituent
// of a cross-chain atomic transaction.
type Kind uint8

const (
	Regular Kind = iota
	CatConstituent
)

func (k Kind) String() string {
	if k == CatConstituent {
		return "CatConstituent"
	}
	return "Regular"
}

// Transaction is one item CL admits into a chain's queue.
type Transaction struct {
	ID      TxID
	Payload []byte // VM-opaque

	Kind Kind

	// Populated only when Kind == CatConstituent.
	CatID        CatID
	Participants []ChainID

	// SubmittedInBlock is assigned by CL when the transaction is drained
	// into a sub-block.
	SubmittedInBlock uint64
}

// IsCat reports whether t is a CAT constituent.
func (t Transaction) IsCat() bool {
	return t.Kind == CatConstituent
}

// Verdict is the Scheduler's final decision for a CAT, addressed to every
// participant chain via the CL-ordered stream.
type Verdict struct {
	CatID   CatID
	Outcome Outcome // Success or Failure; never Pending
}

func (v Verdict) String() string {
	return fmt.Sprintf("Verdict{cat=%s outcome=%s}", v.CatID, v.Outcome)
}

// ItemKind distinguishes the two payloads a sub-block can carry.
type ItemKind uint8

const (
	ItemTx ItemKind = iota
	ItemVerdict
)

// Item is one entry of a SubBlock: either a transaction or a verdict,
// processed in list order by the receiving IG.
type Item struct {
	Kind ItemKind
	Tx   Transaction
	V    Verdict
}

// TxItem wraps a transaction as a sub-block item.
func TxItem(tx Transaction) Item {
	return Item{Kind: ItemTx, Tx: tx}
}

// VerdictItem wraps a verdict as a sub-block item.
func VerdictItem(v Verdict) Item {
	return Item{Kind: ItemVerdict, V: v}
}

// SubBlock is the per-chain portion of a global block: an ordered list of
// items stamped with the chain's height at the time CL drained its queue.
type SubBlock struct {
	ChainID ChainID
	Height  uint64
	Items   []Item
}

func (s SubBlock) String() string {
	return fmt.Sprintf("SubBlock{chain=%s height=%d items=%d}", s.ChainID, s.Height, len(s.Items))
}

// Group is what CL.Submit accepts: either a single Regular transaction for
// one chain, or one CatConstituent transaction per participant chain,
// admitted atomically (all constituents land at the same height on their
// respective chains).
type Group struct {
	Regular *regularSubmission
	Cat     *catSubmission
}

type regularSubmission struct {
	ChainID ChainID
	Tx      Transaction
}

type catSubmission struct {
	CatID        CatID
	Participants []ChainID
	// Constituents maps each participant chain to its constituent
	// transaction; Kind, CatID and Participants on each are normalized by
	// NewCatGroup.
	Constituents map[ChainID]Transaction
}

// NewRegularGroup builds a submission group for a single-chain transaction.
func NewRegularGroup(chainID ChainID, tx Transaction) Group {
	tx.Kind = Regular
	return Group{Regular: &regularSubmission{ChainID: chainID, Tx: tx}}
}

// NewCatGroup builds a submission group for a cross-chain atomic
// transaction out of one constituent transaction per participant chain.
// catID and participants are stamped onto every constituent.
func NewCatGroup(catID CatID, participants []ChainID, constituents map[ChainID]Transaction) Group {
	normalized := make(map[ChainID]Transaction, len(constituents))
	for chainID, tx := range constituents {
		tx.Kind = CatConstituent
		tx.CatID = catID
		tx.Participants = participants
		normalized[chainID] = tx
	}
	return Group{Cat: &catSubmission{CatID: catID, Participants: participants, Constituents: normalized}}
}

// Proposal is what an IG sends SCH over its IG→SCH channel: this chain's
// outcome for one CAT constituent, along with the participant set it
// learned the CAT was declared with.
type Proposal struct {
	CatID        CatID
	ChainID      ChainID
	Outcome      Outcome // Success or Failure; never Pending
	Participants []ChainID
}

// VerdictSubmission is what SCH sends CL over the SCH→CL submission
// channel: a verdict addressed to every participant chain, admitted
// atomically so it lands at the same height on each.
type VerdictSubmission struct {
	Verdict      Verdict
	Participants []ChainID
}

// Chains returns the set of chains a group targets, in the order CL should
// validate registration for.
func (g Group) Chains() []ChainID {
	if g.Regular != nil {
		return []ChainID{g.Regular.ChainID}
	}
	chains := make([]ChainID, 0, len(g.Cat.Constituents))
	for _, c := range g.Cat.Participants {
		if _, ok := g.Cat.Constituents[c]; ok {
			chains = append(chains, c)
		}
	}
	return chains
}
