// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package sch

import "errors"

var (
	ErrUnknownParticipant  = errors.New("chain is not a declared participant of this cat")
	ErrParticipantMismatch = errors.New("participant set does not match the cat's first proposal")
	ErrShutdown            = errors.New("scheduler is shut down")
)
