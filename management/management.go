// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package management is the node's local operator surface: a health
// endpoint a process supervisor polls, and an authenticated
// ListFixedTasks RPC an operator uses to inspect which listeners,
// subscriber registrations, and RPC servers are currently running.
// Routed with github.com/julienschmidt/httprouter, a lightweight
// dependency for exactly this kind of minimal HTTP surface.
package management

import "github.com/arpa-network/randcast-node/log"

var logger = log.NewModuleLogger(log.Management)
