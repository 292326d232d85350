// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package eventbus

// Topic is the closed set of subjects the bus dispatches on. Topics
// are not chain-scoped: each configured chain gets its own Bus
// (nodecontext), and every Event carries its ChainID.
type Topic int

const (
	NewBlock Topic = iota
	NewRandomnessTask
	NewDKGTask
	RunDKG
	DKGSuccess
	DKGPostProcess
	ReadyToHandleRandomnessTask
	ReadyToFulfillRandomnessTask
	NewGroupRelayTask
	ReadyToFulfillGroupRelayTask
	NodeActivation
)

func (t Topic) String() string {
	switch t {
	case NewBlock:
		return "NewBlock"
	case NewRandomnessTask:
		return "NewRandomnessTask"
	case NewDKGTask:
		return "NewDKGTask"
	case RunDKG:
		return "RunDKG"
	case DKGSuccess:
		return "DKGSuccess"
	case DKGPostProcess:
		return "DKGPostProcess"
	case ReadyToHandleRandomnessTask:
		return "ReadyToHandleRandomnessTask"
	case ReadyToFulfillRandomnessTask:
		return "ReadyToFulfillRandomnessTask"
	case NewGroupRelayTask:
		return "NewGroupRelayTask"
	case ReadyToFulfillGroupRelayTask:
		return "ReadyToFulfillGroupRelayTask"
	case NodeActivation:
		return "NodeActivation"
	default:
		return "Unknown"
	}
}
