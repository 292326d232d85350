package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// ReadyToHandleRandomnessTask polls each interval: once the group is
// Ready, it reads every task from the queue that is either assigned to
// the current group or has crossed its exclusive window, re-verifies
// each is still pending on-chain, and publishes the resulting batch.
type ReadyToHandleRandomnessTask struct {
	ChainID         uint64
	GroupIndex      int
	ExclusiveWindow uint64
	Adapter         contract.Adapter
	Groups          *cache.GroupCache
	Blocks          *cache.BlockCache
	Tasks           *cache.TaskQueueCache
	Bus             *eventbus.Bus
}

func (r *ReadyToHandleRandomnessTask) Attempt(ctx context.Context) error {
	g, ok := r.Groups.Get(r.GroupIndex)
	if !ok || !g.Ready {
		return nil
	}

	current := r.Blocks.Get().Height
	var available []types.Task
	for _, t := range r.Tasks.Pending() {
		assignedToUs := t.GroupIndex == r.GroupIndex
		pastExclusiveWindow := current > t.AssignmentHeight+r.ExclusiveWindow
		if !assignedToUs && !pastExclusiveWindow {
			continue
		}

		pending, err := r.Adapter.IsTaskPending(ctx, t.RequestID)
		if err != nil {
			return err
		}
		if !pending {
			continue
		}
		available = append(available, t)
	}

	if len(available) == 0 {
		return nil
	}

	publish(r.Bus, eventbus.NewReadyToHandleRandomnessTaskEvent(r.ChainID, available))
	return nil
}
