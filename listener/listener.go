// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package listener holds the common polling loop every listener
// variant shares: run one attempt, on failure
// log and invoke a bounded interruption handler, then sleep
// interval_millis (with optional jitter) and repeat. Each variant
// publishes onto the shared eventbus.Bus; chain_id() identifies the
// owning chain for diagnostics, following the shape of per-subsystem
// polling loops like consensus/istanbul/backend/backend.go's event loop.
package listener

import (
	"context"
	"math/rand"
	"time"

	"github.com/arpa-network/randcast-node/chain"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/log"
)

var logger = log.NewModuleLogger(log.Listener)

// Attempt is one listener's unit of work: perform one poll/subscribe
// cycle, returning an error iff the cycle itself failed (not iff it
// found nothing to do).
type Attempt func(ctx context.Context) error

// Interrupt is invoked, under its own retry budget, when an Attempt
// fails. None of the listeners chainassembly registers installs one.
type Interrupt func(ctx context.Context) error

// Loop runs a listener's common shape: attempt, and on failure,
// interrupt under retry; then sleep interval (plus jitter if enabled)
// and repeat, until ctx is canceled.
type Loop struct {
	ChainID    uint64
	Name       string
	Interval   time.Duration
	UseJitter  bool
	Retry      chain.Retry
	Attempt    Attempt
	Interrupt  Interrupt // optional; nil means failures are only logged
}

// Run blocks until ctx is canceled. It is the function scheduler.Fixed
// runs under a TaskKey for each registered listener.
func (l Loop) Run(ctx context.Context) {
	for {
		if err := l.Attempt(ctx); err != nil {
			logger.Error("listener attempt failed", "chainId", l.ChainID, "listener", l.Name, "err", err)
			if l.Interrupt != nil {
				if ierr := l.Retry.Do(ctx, l.Interrupt); ierr != nil {
					logger.Error("listener interruption handler exhausted retries", "chainId", l.ChainID, "listener", l.Name, "err", ierr)
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.sleepDuration()):
		}
	}
}

func (l Loop) sleepDuration() time.Duration {
	if !l.UseJitter || l.Interval <= 0 {
		return l.Interval
	}
	jitter := time.Duration(rand.Int63n(int64(l.Interval) / 2))
	return l.Interval + jitter
}

// publish is a tiny helper every variant uses so publishing reads the
// same everywhere: synchronous, in registration order, per
// eventbus.Bus.Publish.
func publish(bus *eventbus.Bus, event eventbus.Event) {
	bus.Publish(event)
}
