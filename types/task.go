// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package types

import (
	"encoding/binary"
	"math/big"
)

// TaskType distinguishes the on-chain request shapes the node signs
// over. GroupRelay carries a group's public
// key to a relayed chain instead of a randomness output, but reuses the
// same partial-signing, aggregation and committer machinery.
type TaskType int

const (
	TaskRandomness TaskType = iota
	TaskRandomWords
	TaskShuffling
	TaskGroupRelay
)

func (t TaskType) String() string {
	switch t {
	case TaskRandomness:
		return "randomness"
	case TaskRandomWords:
		return "random_words"
	case TaskShuffling:
		return "shuffling"
	case TaskGroupRelay:
		return "group_relay"
	default:
		return "unknown"
	}
}

// TaskState is the lifecycle of a Task in the node's local queue: it
// starts pending and transitions to claimed at most once, the moment
// this node (or its group) begins signing it.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskClaimed
)

// RequestID identifies a task uniquely across its lifetime. It is
// opaque on-chain request identifier bytes (not reinterpreted by the
// node beyond use as a cache/map key).
type RequestID string

func NewRequestID(b []byte) RequestID { return RequestID(b) }

func (r RequestID) Bytes() []byte { return []byte(r) }

// Task is a randomness (or random-words/shuffling/group-relay) request
// assigned to a group. Unique by RequestID; State
// transitions monotonically Pending -> Claimed at most once.
type Task struct {
	RequestID        RequestID
	SubscriptionID   uint64
	GroupIndex       int
	Type             TaskType
	Params           []byte
	Requester        Address
	Seed             [32]byte
	ConfirmationDepth uint32
	CallbackGasLimit uint64
	MaxGasPrice      *big.Int
	AssignmentHeight uint64

	State TaskState

	// GroupRelay-only fields, populated iff Type == TaskGroupRelay.
	RelayedChainID       uint64
	RelayedGroupPubKey   []byte
	RelayedGroupEpoch    int
}

// SigningMessage derives the exact byte message every partial (and the
// final aggregated signature) signs over. For a GroupRelay task this is
// the relay confirmation's (relayed_chain_id, group_index, group_epoch,
// relayed_group_public_key) tuple instead of the randomness seed;
// every other task type signs over (request_id, subscription_id, group_index, seed).
func (t Task) SigningMessage() []byte {
	if t.Type == TaskGroupRelay {
		buf := make([]byte, 0, 8+8+4+len(t.RelayedGroupPubKey))
		buf = appendUint64(buf, t.RelayedChainID)
		buf = appendUint64(buf, uint64(t.GroupIndex))
		buf = appendUint64(buf, uint64(t.RelayedGroupEpoch))
		buf = append(buf, t.RelayedGroupPubKey...)
		return buf
	}

	buf := make([]byte, 0, len(t.RequestID)+8+4+len(t.Seed))
	buf = append(buf, t.RequestID.Bytes()...)
	buf = appendUint64(buf, t.SubscriptionID)
	buf = appendUint64(buf, uint64(t.GroupIndex))
	buf = append(buf, t.Seed[:]...)
	return buf
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// Claim transitions a pending task to claimed. It is a no-op error to
// claim an already-claimed task; callers (the task-queue cache) must
// hold their own write lock around this call since Task itself carries
// no synchronization.
func (t *Task) Claim() bool {
	if t.State == TaskClaimed {
		return false
	}
	t.State = TaskClaimed
	return true
}
