// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "time"

// Builder provides a fluent interface for constructing a Config, mirroring
// the reference codebase's config.Builder.
type Builder struct {
	config Config
	err    error
}

// NewBuilder returns a Builder seeded with Default's values.
func NewBuilder() *Builder {
	return &Builder{config: Default()}
}

// WithBlockInterval sets the CL tick period.
func (b *Builder) WithBlockInterval(d time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if d <= 0 {
		b.err = ErrInvalidBlockInterval
		return b
	}
	b.config.BlockInterval = d
	return b
}

// WithCATLifetime sets the number of blocks an IG waits before proposing
// Failure on a still-pending CAT constituent.
func (b *Builder) WithCATLifetime(blocks uint64) *Builder {
	if b.err != nil {
		return b
	}
	if blocks == 0 {
		b.err = ErrInvalidCATLifetime
		return b
	}
	b.config.CATLifetimeBlocks = blocks
	return b
}

// WithAllowCATPendingDependencies sets the dependency policy.
func (b *Builder) WithAllowCATPendingDependencies(allow bool) *Builder {
	if b.err != nil {
		return b
	}
	b.config.AllowCATPendingDependencies = allow
	return b
}

// WithSubmissionDelay records an orchestrator-side submission delay for
// chainID, in blocks.
func (b *Builder) WithSubmissionDelay(chainID string, blocks uint64) *Builder {
	if b.err != nil {
		return b
	}
	if b.config.SubmissionDelayBlocks == nil {
		b.config.SubmissionDelayBlocks = make(map[string]uint64)
	}
	b.config.SubmissionDelayBlocks[chainID] = blocks
	return b
}

// Build returns the assembled Config, or the first error encountered while
// building it.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	if err := b.config.Validate(); err != nil {
		return Config{}, err
	}
	return b.config, nil
}
