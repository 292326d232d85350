package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// RandomnessSignatureAggregation polls each interval: if this node is
// a committer for the current group, it drains every ready-to-commit
// signature cache entry (threshold reached, still NotCommitted) whose
// task type is randomness-shaped, and publishes the batch for
// fulfillment.
//
// A group only commits the instant threshold is reached when it is the
// task's originally assigned group. A group that picked the task up as
// a fallback (entry.GroupIndex differs from entry.Task.GroupIndex,
// meaning ReadyToHandleRandomnessTask only handed it over once the
// exclusive window had already elapsed) re-checks the window here
// too, rather than trusting that upstream filter alone.
type RandomnessSignatureAggregation struct {
	ChainID         uint64
	GroupIndex      int
	SelfAddr        types.Address
	ExclusiveWindow uint64
	Groups          *cache.GroupCache
	Signatures      *cache.SignatureCache
	Blocks          *cache.BlockCache
	Bus             *eventbus.Bus
}

func (r *RandomnessSignatureAggregation) Attempt(ctx context.Context) error {
	if !r.Groups.IsCommitter(r.GroupIndex, r.SelfAddr) {
		return nil
	}

	current := r.Blocks.Get().Height

	var ready []types.PartialSignatureCacheEntry
	for _, entry := range r.Signatures.ReadyToCommit() {
		if entry.Task.Type == types.TaskGroupRelay {
			continue // handled by GroupRelayConfirmationSignatureAggregation instead
		}
		assigned := entry.GroupIndex == entry.Task.GroupIndex
		if !assigned && current <= entry.Task.AssignmentHeight+r.ExclusiveWindow {
			continue
		}
		ready = append(ready, entry)
	}
	if len(ready) == 0 {
		return nil
	}

	publish(r.Bus, eventbus.NewReadyToFulfillRandomnessTaskEvent(r.ChainID, ready))
	return nil
}
