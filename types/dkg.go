// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package types

// DKGTask is the input a Listener publishes and a DKG run consumes
// exactly once per (GroupIndex, Epoch).
type DKGTask struct {
	GroupIndex         int
	Epoch              int
	Size               int
	Threshold          int
	Members            []Address // ordered; index in this slice is the DKG node index
	AssignmentHeight   uint64
	CoordinatorAddress Address
}

// DKGOutput is the Phase2 (or Phase3) result of a completed run: the
// group public key, this node's share of the group private key, and
// the set of nodes disqualified during the protocol.
type DKGOutput struct {
	GroupPublicKey    []byte
	Share             []byte
	PartialPublicKey  []byte
	Disqualified      map[Address]struct{}
}
