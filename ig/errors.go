// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ig

import "errors"

var (
	ErrShutdown        = errors.New("information gateway is shut down")
	ErrInvalidLifetime = errors.New("cat lifetime blocks must be > 0")
	ErrWrongChain      = errors.New("sub-block addressed to a different chain")
	ErrDuplicateTx     = errors.New("transaction id already admitted on this chain")
)
