package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// NewGroupRelayTask subscribes to the controller's group-relay task
// stream (main chain only): for each request not already in the
// task-queue cache, it inserts the task and publishes
// NewGroupRelayTask.
type NewGroupRelayTask struct {
	ChainID    uint64
	Controller contract.Controller
	Tasks      *cache.TaskQueueCache
	Bus        *eventbus.Bus
}

// GroupRelayTasks is the subset of Controller streams this listener
// reads from; kept narrow so the common Controller interface does not
// need a group-relay-specific method used nowhere else.
type GroupRelayTasks interface {
	SubscribeNewGroupRelayTask(ctx context.Context) (<-chan types.Task, error)
}

func (n *NewGroupRelayTask) Attempt(ctx context.Context) error {
	source, ok := n.Controller.(GroupRelayTasks)
	if !ok {
		return nil // this controller implementation does not emit group relay tasks
	}
	stream, err := source.SubscribeNewGroupRelayTask(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-stream:
			if !ok {
				return nil
			}
			n.handle(task)
		}
	}
}

func (n *NewGroupRelayTask) handle(task types.Task) {
	if n.Tasks.Contains(task.RequestID) {
		return
	}
	if err := n.Tasks.Insert(task); err != nil {
		logger.Error("failed to insert newly observed group relay task", "chainId", n.ChainID, "requestId", task.RequestID, "err", err)
		return
	}
	publish(n.Bus, eventbus.NewNewGroupRelayTaskEvent(n.ChainID, task))
}

// GroupRelayConfirmationSignatureAggregation mirrors
// RandomnessSignatureAggregation but only drains GroupRelay-typed
// entries, so its downstream subscriber can call the controller-relayer
// instead of the adapter.
type GroupRelayConfirmationSignatureAggregation struct {
	ChainID    uint64
	GroupIndex int
	SelfAddr   types.Address
	Groups     *cache.GroupCache
	Signatures *cache.SignatureCache
	Bus        *eventbus.Bus
}

func (g *GroupRelayConfirmationSignatureAggregation) Attempt(ctx context.Context) error {
	if !g.Groups.IsCommitter(g.GroupIndex, g.SelfAddr) {
		return nil
	}

	var ready []types.PartialSignatureCacheEntry
	for _, entry := range g.Signatures.ReadyToCommit() {
		if entry.Task.Type != types.TaskGroupRelay {
			continue
		}
		ready = append(ready, entry)
	}
	if len(ready) == 0 {
		return nil
	}

	publish(g.Bus, eventbus.NewReadyToFulfillGroupRelayTaskEvent(g.ChainID, ready))
	return nil
}
