package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// PreGrouping subscribes to the controller's DKG-task stream; for each
// task where this node is a member and its (GroupIndex, Epoch) is new
// relative to the group cache, it publishes NewDKGTask.
type PreGrouping struct {
	ChainID    uint64
	SelfAddr   types.Address
	Controller contract.Controller
	Groups     *cache.GroupCache
	Bus        *eventbus.Bus
}

func (p *PreGrouping) Attempt(ctx context.Context) error {
	tasks, err := p.Controller.SubscribeDKGTask(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-tasks:
			if !ok {
				return nil
			}
			p.handle(task)
		}
	}
}

func (p *PreGrouping) handle(task types.DKGTask) {
	selfIndex := -1
	for i, addr := range task.Members {
		if addr == p.SelfAddr {
			selfIndex = i
			break
		}
	}
	if selfIndex < 0 {
		return // not a member of this group
	}

	if epoch, ok := p.Groups.Epoch(task.GroupIndex); ok && epoch == task.Epoch {
		return // already known, idempotent no-op
	}

	publish(p.Bus, eventbus.NewNewDKGTaskEvent(p.ChainID, task, selfIndex))
}
