// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package chainassembly wires one chain's listeners, subscribers, and
// caches together: the main chain gets the full set
// (including node activation and the group-relay/controller-relayer
// pair), a relayed chain
// gets only the randomness-fulfillment subset. GroupIndex-scoped
// components (the listener half of post-commit-grouping, post-grouping,
// and signature aggregation) cannot be registered until this node
// discovers which group it belongs to, so they are spawned lazily by
// groupActivator the first time an event names a GroupIndex: a
// NewDKGTask on the main chain, a NewRandomnessTask on a relayed chain.
package chainassembly

import "github.com/arpa-network/randcast-node/log"

var logger = log.NewModuleLogger(log.ChainContext)
