// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package scheduler

import "fmt"

// Kind distinguishes the fixed task families: long-lived listeners,
// subscriber callbacks (registered once at chain-assembly time, not
// per-event), and RPC servers.
type Kind int

const (
	Listener Kind = iota
	SubscriberRegistration
	RPCServer
)

func (k Kind) String() string {
	switch k {
	case Listener:
		return "listener"
	case SubscriberRegistration:
		return "subscriber"
	case RPCServer:
		return "rpc_server"
	default:
		return "unknown"
	}
}

// Variant names a specific listener/subscriber/server within its Kind,
// e.g. "Block", "PreGrouping", "Committer".
type Variant string

// TaskKey is the fixed scheduler's map key: (chain, kind, variant).
type TaskKey struct {
	ChainID uint64
	Kind    Kind
	Variant Variant
}

func (k TaskKey) String() string {
	return fmt.Sprintf("chain=%d/%s/%s", k.ChainID, k.Kind, k.Variant)
}
