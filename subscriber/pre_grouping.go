package subscriber

import (
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// PreGrouping handles NewDKGTask: it saves the task's membership and
// threshold into the group cache (if not already known) and attempts
// the atomic None->InPhase transition. Only on a successful transition
// does it publish RunDKG — duplicate deliveries of the same (index,
// epoch) are no-ops.
type PreGrouping struct {
	ChainID uint64
	Groups  *cache.GroupCache
	Bus     *eventbus.Bus
}

func (p *PreGrouping) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.NewDKGTaskEvent)
	if !ok {
		return nil
	}
	task := e.Task

	if _, ok := p.Groups.Get(task.GroupIndex); !ok {
		p.Groups.Set(newGroupStateFromTask(task))
	}

	advanced, err := p.Groups.AdvanceDKGStatus(task.GroupIndex, types.DKGStatusInPhase)
	if err != nil {
		logger.Error("failed to advance DKG status", "groupIndex", task.GroupIndex, "epoch", task.Epoch, "err", err)
		return err
	}
	if !advanced {
		logger.Debug("duplicate DKG task ignored", "groupIndex", task.GroupIndex, "epoch", task.Epoch)
		return nil
	}

	p.Bus.Publish(eventbus.NewRunDKGEvent(p.ChainID, task, e.SelfIndex))
	return nil
}

func newGroupStateFromTask(task types.DKGTask) types.GroupState {
	members := make(map[types.Address]types.Member, len(task.Members))
	for i, addr := range task.Members {
		members[addr] = types.Member{Index: i, Address: addr}
	}
	return types.GroupState{
		Index:          task.GroupIndex,
		Epoch:          task.Epoch,
		Size:           task.Size,
		Threshold:      task.Threshold,
		Members:        members,
		DKGStartHeight: task.AssignmentHeight,
	}
}
