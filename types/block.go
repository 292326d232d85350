// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package types

import "time"

// BlockInfo is a chain's current head height and average block time, as
// observed by that chain's Block subscriber. It is updated only by that
// subscriber; the block cache does not enforce height monotonicity
// (forks/reorgs may briefly move it backwards).
type BlockInfo struct {
	Height        uint64
	AverageBlock  time.Duration
	lastUpdatedAt time.Time
}

// Advance records a new observed height at observedAt, recomputing
// AverageBlock as a simple exponential moving average over the gap
// since the last observation. The very first Advance on a zero-value
// BlockInfo just records height with no meaningful average yet.
func (b BlockInfo) Advance(height uint64, observedAt time.Time) BlockInfo {
	if !b.lastUpdatedAt.IsZero() && observedAt.After(b.lastUpdatedAt) {
		gap := observedAt.Sub(b.lastUpdatedAt)
		if b.AverageBlock == 0 {
			b.AverageBlock = gap
		} else {
			b.AverageBlock = (b.AverageBlock + gap) / 2
		}
	}
	b.Height = height
	b.lastUpdatedAt = observedAt
	return b
}

// LastUpdatedAt reports when this BlockInfo was last advanced.
func (b BlockInfo) LastUpdatedAt() time.Time { return b.lastUpdatedAt }
