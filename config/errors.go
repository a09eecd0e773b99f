// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	ErrInvalidBlockInterval = errors.New("block interval must be > 0")
	ErrInvalidCATLifetime   = errors.New("cat lifetime blocks must be > 0")
	ErrUnknownPreset        = errors.New("unknown config preset")
)
