// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package cache holds the five per-chain caches this node keeps:
// node identity, group state, block info, the pending task queue, and
// the partial-signature aggregation cache. Each is its own type behind
// its own sync.RWMutex — no cache ever reaches into another's lock, and
// no cache is ever held across a network call. These four hold small,
// unbounded-by-design state (group/task/block counts track network
// size, not request volume); the signature cache's per-request message
// bytes instead go through VictoriaMetrics/fastcache, which is shaped
// for exactly that (fixed small values, no per-entry struct overhead).
package cache

import "github.com/arpa-network/randcast-node/log"

var logger = log.NewModuleLogger(log.Cache)
