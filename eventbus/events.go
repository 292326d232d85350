// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package eventbus

import "github.com/arpa-network/randcast-node/types"

// Event is implemented by exactly one struct per Topic: a single
// enum-shaped family instead of ad-hoc downcasting. ChainID namespaces
// per-chain topics; it is zero for
// topics that are not chain-scoped (there are none currently, but the
// field keeps every event shape uniform for bus.Publish's dispatch key).
type Event interface {
	Topic() Topic
	ChainID() uint64
}

type base struct {
	chainID uint64
}

func (b base) ChainID() uint64 { return b.chainID }

// NewBlockEvent fires on every new chain head observed by the Block
// listener.
type NewBlockEvent struct {
	base
	Height uint64
}

func NewNewBlockEvent(chainID uint64, height uint64) NewBlockEvent {
	return NewBlockEvent{base{chainID}, height}
}
func (NewBlockEvent) Topic() Topic { return NewBlock }

// NewRandomnessTaskEvent fires once per newly observed randomness
// request, after it has been inserted into the task-queue cache.
type NewRandomnessTaskEvent struct {
	base
	Task types.Task
}

func NewNewRandomnessTaskEvent(chainID uint64, task types.Task) NewRandomnessTaskEvent {
	return NewRandomnessTaskEvent{base{chainID}, task}
}
func (NewRandomnessTaskEvent) Topic() Topic { return NewRandomnessTask }

// NewDKGTaskEvent fires when this node discovers it is a member of a
// freshly posted DKG task whose (GroupIndex, Epoch) is new to it.
type NewDKGTaskEvent struct {
	base
	Task      types.DKGTask
	SelfIndex int
}

func NewNewDKGTaskEvent(chainID uint64, task types.DKGTask, selfIndex int) NewDKGTaskEvent {
	return NewDKGTaskEvent{base{chainID}, task, selfIndex}
}
func (NewDKGTaskEvent) Topic() Topic { return NewDKGTask }

// RunDKGEvent fires once PreGroupingSubscriber has atomically moved the
// group's DKGStatus None -> InPhase for this task.
type RunDKGEvent struct {
	base
	Task      types.DKGTask
	SelfIndex int
}

func NewRunDKGEvent(chainID uint64, task types.DKGTask, selfIndex int) RunDKGEvent {
	return RunDKGEvent{base{chainID}, task, selfIndex}
}
func (RunDKGEvent) Topic() Topic { return RunDKG }

// DKGSuccessEvent fires when PostCommitGrouping observes the on-chain
// coordinator/controller reporting this group as ready, following a
// local CommitSuccess.
type DKGSuccessEvent struct {
	base
	GroupIndex int
	Epoch      int
}

func NewDKGSuccessEvent(chainID uint64, groupIndex, epoch int) DKGSuccessEvent {
	return DKGSuccessEvent{base{chainID}, groupIndex, epoch}
}
func (DKGSuccessEvent) Topic() Topic { return DKGSuccess }

// DKGPostProcessEvent fires once a group has sat in InPhase,
// CommitSuccess or WaitForPostProcess (where a successful run waits)
// for longer than the DKG timeout, to close the epoch out; the
// subscriber's reset to None stops further firing for that epoch.
type DKGPostProcessEvent struct {
	base
	GroupIndex int
	Epoch      int
}

func NewDKGPostProcessEvent(chainID uint64, groupIndex, epoch int) DKGPostProcessEvent {
	return DKGPostProcessEvent{base{chainID}, groupIndex, epoch}
}
func (DKGPostProcessEvent) Topic() Topic { return DKGPostProcess }

// ReadyToHandleRandomnessTaskEvent carries the batch of tasks this
// node's group may now attempt, as determined by the availability rule
// the ReadyToHandleRandomnessTask listener applies.
type ReadyToHandleRandomnessTaskEvent struct {
	base
	Tasks []types.Task
}

func NewReadyToHandleRandomnessTaskEvent(chainID uint64, tasks []types.Task) ReadyToHandleRandomnessTaskEvent {
	return ReadyToHandleRandomnessTaskEvent{base{chainID}, tasks}
}
func (ReadyToHandleRandomnessTaskEvent) Topic() Topic { return ReadyToHandleRandomnessTask }

// ReadyToFulfillRandomnessTaskEvent carries the batch of signature
// cache entries a committer has drained (threshold reached, exclusive
// window elapsed) and must now submit fulfillment transactions for.
type ReadyToFulfillRandomnessTaskEvent struct {
	base
	Entries []types.PartialSignatureCacheEntry
}

func NewReadyToFulfillRandomnessTaskEvent(chainID uint64, entries []types.PartialSignatureCacheEntry) ReadyToFulfillRandomnessTaskEvent {
	return ReadyToFulfillRandomnessTaskEvent{base{chainID}, entries}
}
func (ReadyToFulfillRandomnessTaskEvent) Topic() Topic { return ReadyToFulfillRandomnessTask }

// NewGroupRelayTaskEvent and ReadyToFulfillGroupRelayTaskEvent mirror
// the randomness pair above for the group-relay task type. Main chain
// only.
type NewGroupRelayTaskEvent struct {
	base
	Task types.Task
}

func NewNewGroupRelayTaskEvent(chainID uint64, task types.Task) NewGroupRelayTaskEvent {
	return NewGroupRelayTaskEvent{base{chainID}, task}
}
func (NewGroupRelayTaskEvent) Topic() Topic { return NewGroupRelayTask }

type ReadyToFulfillGroupRelayTaskEvent struct {
	base
	Entries []types.PartialSignatureCacheEntry
}

func NewReadyToFulfillGroupRelayTaskEvent(chainID uint64, entries []types.PartialSignatureCacheEntry) ReadyToFulfillGroupRelayTaskEvent {
	return ReadyToFulfillGroupRelayTaskEvent{base{chainID}, entries}
}
func (ReadyToFulfillGroupRelayTaskEvent) Topic() Topic { return ReadyToFulfillGroupRelayTask }

// NodeActivationEvent fires once, on the main chain, when this node is
// registered but not yet active.
type NodeActivationEvent struct {
	base
}

func NewNodeActivationEvent(chainID uint64) NodeActivationEvent {
	return NodeActivationEvent{base{chainID}}
}
func (NodeActivationEvent) Topic() Topic { return NodeActivation }
