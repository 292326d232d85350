// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package subscriber holds every eventbus.Subscriber this node runs:
// the handlers downstream of the listener/bus pair that mutate
// caches, spawn dynamic DKG workers, and submit the node's outbound
// transactions (commit_dkg, post_process_dkg, fulfill_randomness,
// relay_group_confirmation, node activation). Each subscriber is a
// narrow struct over exactly the caches and contract clients it needs,
// following the per-handler struct shape of
// consensus/istanbul/backend/handler.go rather than one god object.
package subscriber

import "github.com/arpa-network/randcast-node/log"

var logger = log.NewModuleLogger(log.Subscriber)
