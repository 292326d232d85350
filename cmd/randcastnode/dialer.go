// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package main

import (
	"github.com/arpa-network/randcast-node/config"
	"github.com/arpa-network/randcast-node/nodecontext"
)

// NewDialer is the extension point a production build wires its own
// chain-RPC client package into: nodecontext.Dialer establishes the
// Controller/Adapter/Board/NodeRegistry/ControllerRelayer clients for
// one configured chain, and the wire encoding those clients speak is
// explicitly out of scope for this repository (contract/*.go package
// doc). Left nil, run refuses to start rather than silently no-op'ing
// against a chain that was never actually dialed.
var NewDialer func(cfg *config.Config) nodecontext.Dialer
