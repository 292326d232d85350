// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package dal is the node's persistence boundary, specified only at
// its interface. TaskStore is that interface; nodecontext saves every
// newly observed task into it and hydrates each chain's task-queue
// cache from it at start-up, and the ready-to-handle subscriber
// records claims in it, so
// a restarted node can recover which tasks it had already claimed
// without re-scanning the chain from genesis. The concrete
// implementation in sqlite.go is the only file in this package (or the
// node) that imports database/sql or touches SQL directly.
package dal

import (
	"context"

	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/types"
)

var logger = log.NewModuleLogger(log.DAL)

// TaskStore persists per-chain task records across restarts. All
// methods are scoped by chainID since a node's task-queue cache (and
// its table) is per-chain.
type TaskStore interface {
	// SaveTask upserts task's current state under chainID.
	SaveTask(ctx context.Context, chainID uint64, task types.Task) error
	// MarkClaimed records that id has transitioned to Claimed.
	MarkClaimed(ctx context.Context, chainID uint64, id types.RequestID) error
	// Tasks returns every task this node has recorded for chainID, in
	// no particular order — callers reconstruct cache ordering
	// themselves (AssignmentHeight is part of the record).
	Tasks(ctx context.Context, chainID uint64) ([]types.Task, error)
}
