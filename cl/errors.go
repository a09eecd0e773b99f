// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package cl

import "errors"

var (
	ErrChainAlreadyRegistered = errors.New("chain already registered")
	ErrChainNotRegistered     = errors.New("chain not registered")
	ErrInvalidBlockInterval   = errors.New("block interval must be > 0")
	ErrShutdown               = errors.New("confirmation layer is shut down")
	ErrNoSuchBlock            = errors.New("no sub-block at that height")
)
