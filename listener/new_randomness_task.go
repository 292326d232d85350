package listener

import (
	"context"
	"strconv"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/types"
)

// NewRandomnessTask subscribes to the adapter's randomness-request
// stream; for each request not already in the task-queue cache, it
// inserts the task and publishes NewRandomnessTask.
type NewRandomnessTask struct {
	ChainID uint64
	Adapter contract.Adapter
	Tasks   *cache.TaskQueueCache
	Bus     *eventbus.Bus
}

func (n *NewRandomnessTask) Attempt(ctx context.Context) error {
	stream, err := n.Adapter.SubscribeNewRandomnessTask(ctx)
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

func (n *NewRandomnessTask) handle(task types.Task) {
	if n.Tasks.Contains(task.RequestID) {
		return
	}
	if err := n.Tasks.Insert(task); err != nil {
		logger.Error("failed to insert newly observed task", "chainId", n.ChainID, "requestId", task.RequestID, "err", err)
		return
	}
	metrics.TasksObserved.WithLabelValues(strconv.FormatUint(n.ChainID, 10), task.Type.String()).Inc()
	publish(n.Bus, eventbus.NewNewRandomnessTaskEvent(n.ChainID, task))
}
