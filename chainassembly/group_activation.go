package chainassembly

import (
	"fmt"
	"sync"
	"time"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/listener"
	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/scheduler"
	"github.com/arpa-network/randcast-node/subscriber"
)

// groupActivator spawns the GroupIndex-scoped listeners and subscribers
// the first time this node discovers it belongs to a given group.
// types.NodeIdentity carries no group membership field of its own, so
// this is the only point group assignment becomes concrete enough to
// register per-group components against. On the main chain, NewDKGTask
// is that discovery signal (DKG starts there first); on a relayed
// chain, group state is relayed from the main chain rather than formed
// locally, so NewRandomnessTask — the first event that actually names
// a GroupIndex on that chain — serves the same role instead.
type groupActivator struct {
	p Params

	mu        sync.Mutex
	activated map[int]bool
}

func registerGroupActivator(p Params) {
	a := &groupActivator{p: p, activated: make(map[int]bool)}
	if p.IsMainChain {
		p.Bus.Subscribe(eventbus.NewDKGTask, a)
	} else {
		p.Bus.Subscribe(eventbus.NewRandomnessTask, a)
	}
}

func (a *groupActivator) Handle(event eventbus.Event) error {
	var groupIndex int
	switch e := event.(type) {
	case eventbus.NewDKGTaskEvent:
		groupIndex = e.Task.GroupIndex
	case eventbus.NewRandomnessTaskEvent:
		groupIndex = e.Task.GroupIndex
	default:
		return nil
	}

	a.mu.Lock()
	if a.activated[groupIndex] {
		a.mu.Unlock()
		return nil
	}
	a.activated[groupIndex] = true
	a.mu.Unlock()

	if err := a.activate(groupIndex); err != nil {
		logger.Error("failed to activate group-scoped components", "groupIndex", groupIndex, "err", err)
		return err
	}
	return nil
}

func (a *groupActivator) activate(groupIndex int) error {
	p := a.p

	// DKG-phase listeners: absent on relayed chains, which never form
	// or commit groups locally — group state arrives relayed from the
	// main chain instead.
	if p.IsMainChain {
		postCommit := &listener.PostCommitGrouping{
			ChainID:    p.ChainID,
			GroupIndex: groupIndex,
			Controller: p.Controller,
			Groups:     p.Groups,
			Bus:        p.Bus,
		}
		if err := a.addGroupLoop(groupIndex, "PostCommitGrouping", p.PostGroupingInterval, postCommit.Attempt); err != nil {
			return err
		}

		postGrouping := &listener.PostGrouping{
			ChainID:          p.ChainID,
			GroupIndex:       groupIndex,
			DKGTimeoutBlocks: p.DKGTimeoutBlocks,
			Groups:           p.Groups,
			Blocks:           p.Blocks,
			Bus:              p.Bus,
		}
		if err := a.addGroupLoop(groupIndex, "PostGrouping", p.PostGroupingInterval, postGrouping.Attempt); err != nil {
			return err
		}
	}

	aggregation := &listener.RandomnessSignatureAggregation{
		ChainID:         p.ChainID,
		GroupIndex:      groupIndex,
		SelfAddr:        p.SelfAddr,
		ExclusiveWindow: p.ExclusiveWindow,
		Groups:          p.Groups,
		Signatures:      p.Signatures,
		Blocks:          p.Blocks,
		Bus:             p.Bus,
	}
	if err := a.addGroupLoop(groupIndex, "RandomnessSignatureAggregation", p.AggregationInterval, aggregation.Attempt); err != nil {
		return err
	}

	if p.Adapter != nil {
		readyToHandle := &listener.ReadyToHandleRandomnessTask{
			ChainID:         p.ChainID,
			GroupIndex:      groupIndex,
			ExclusiveWindow: p.ExclusiveWindow,
			Adapter:         p.Adapter,
			Groups:          p.Groups,
			Blocks:          p.Blocks,
			Tasks:           p.Tasks,
			Bus:             p.Bus,
		}
		if err := a.addGroupLoop(groupIndex, "ReadyToHandleRandomnessTask", p.ReadyToHandleInterval, readyToHandle.Attempt); err != nil {
			return err
		}

		p.Bus.Subscribe(eventbus.ReadyToHandleRandomnessTask, &subscriber.ReadyToHandleRandomnessTask{
			ChainID:    p.ChainID,
			GroupIndex: groupIndex,
			SelfAddr:   p.SelfAddr,
			Groups:     p.Groups,
			Signatures: p.Signatures,
			Tasks:      p.Tasks,
			Store:      p.Store,
			Committer:  p.CommitterClient,
			Retry:      p.Retry,
		})
	}

	if p.IsMainChain {
		groupRelayAggregation := &listener.GroupRelayConfirmationSignatureAggregation{
			ChainID:    p.ChainID,
			GroupIndex: groupIndex,
			SelfAddr:   p.SelfAddr,
			Groups:     p.Groups,
			Signatures: p.Signatures,
			Bus:        p.Bus,
		}
		if err := a.addGroupLoop(groupIndex, "GroupRelayConfirmationSignatureAggregation", p.AggregationInterval, groupRelayAggregation.Attempt); err != nil {
			return err
		}
	}

	logger.Info("group-scoped components activated", "chainId", p.ChainID, "groupIndex", groupIndex)
	return nil
}

// addGroupLoop mirrors addLoop, but keys on groupIndex too since the
// same variant recurs once per group; TaskAlreadyExisted is treated as
// an idempotent no-op so re-delivery of the same NewDKGTask (or a race
// between two activate calls) never aborts the whole activation.
func (a *groupActivator) addGroupLoop(groupIndex int, variant scheduler.Variant, interval time.Duration, attempt listener.Attempt) error {
	p := a.p
	key := scheduler.TaskKey{
		ChainID: p.ChainID,
		Kind:    scheduler.Listener,
		Variant: scheduler.Variant(fmt.Sprintf("%s:%d", variant, groupIndex)),
	}
	loop := listener.Loop{
		ChainID:   p.ChainID,
		Name:      string(key.Variant),
		Interval:  interval,
		UseJitter: p.UseJitter,
		Retry:     p.Retry,
		Attempt:   attempt,
	}
	fields := log.Fields{"chainId": p.ChainID, "groupIndex": groupIndex, "listener": string(variant)}

	err := p.Fixed.Add(key, loop.Run, fields)
	if errs.Is(err, errs.TaskAlreadyExisted) {
		return nil
	}
	return err
}
